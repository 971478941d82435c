package catalog

import (
	"sort"
	"strings"
)

// DefaultPrefixSep is the token separator used for table-name prefix
// grouping.
const DefaultPrefixSep = "_"

// DefaultPrefixMinCount is the minimum number of tables a prefix must cover
// to form a group.
const DefaultPrefixMinCount = 2

// PrefixFolder is one synthetic grouping of tables sharing a name prefix.
// ParentPrefix is empty for top-level groups.
type PrefixFolder struct {
	Prefix       string
	ParentPrefix string
}

// PrefixFolders discovers name-prefix groups in a flat list of table names.
// A candidate prefix is any leading token sequence of a table name; it
// survives when at least minCount tables start with prefix+sep and not every
// table does (a universal prefix carries no discriminative value). Surviving
// prefixes nest under their longest surviving strict ancestor and are
// emitted parents-first, so callers can assign folder IDs in one pass.
func PrefixFolders(tables []string, sep string, minCount int) []PrefixFolder {
	if sep == "" {
		sep = DefaultPrefixSep
	}
	if minCount <= 0 {
		minCount = DefaultPrefixMinCount
	}
	if len(tables) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, t := range tables {
		tokens := strings.Split(t, sep)
		for i := 1; i <= len(tokens); i++ {
			prefix := strings.Join(tokens[:i], sep)
			counts[prefix] = 0 // candidate; counted below
		}
	}
	for prefix := range counts {
		for _, t := range tables {
			if strings.HasPrefix(t, prefix+sep) {
				counts[prefix]++
			}
		}
	}

	var surviving []string
	for prefix, n := range counts {
		if n >= minCount && n < len(tables) {
			surviving = append(surviving, prefix)
		}
	}
	if len(surviving) == 0 {
		return nil
	}

	// Parents before children: shorter token sequences first.
	sort.Slice(surviving, func(i, j int) bool {
		ti := strings.Count(surviving[i], sep)
		tj := strings.Count(surviving[j], sep)
		if ti != tj {
			return ti < tj
		}
		return surviving[i] < surviving[j]
	})

	valid := make(map[string]bool, len(surviving))
	for _, p := range surviving {
		valid[p] = true
	}

	out := make([]PrefixFolder, 0, len(surviving))
	for _, p := range surviving {
		out = append(out, PrefixFolder{
			Prefix:       p,
			ParentPrefix: longestAncestor(p, valid, sep),
		})
	}
	return out
}

// TablePrefix returns the longest prefix in valid that matches the table
// name (name starts with prefix+sep), or "" when none matches. Longest-match
// resolution files a table under its most specific group.
func TablePrefix(table string, valid map[string]bool, sep string) string {
	if sep == "" {
		sep = DefaultPrefixSep
	}
	tokens := strings.Split(table, sep)
	for i := len(tokens) - 1; i >= 1; i-- {
		prefix := strings.Join(tokens[:i], sep)
		if valid[prefix] {
			return prefix
		}
	}
	return ""
}

// longestAncestor returns the longest strict leading-token ancestor of
// prefix present in valid.
func longestAncestor(prefix string, valid map[string]bool, sep string) string {
	tokens := strings.Split(prefix, sep)
	for i := len(tokens) - 1; i >= 1; i-- {
		candidate := strings.Join(tokens[:i], sep)
		if valid[candidate] {
			return candidate
		}
	}
	return ""
}
