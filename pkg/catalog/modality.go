package catalog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// ModalityFolderID is the sentinel folder owning every modality. It is
// created lazily the first time a modality is needed.
const ModalityFolderID = "_modalities"

const (
	modalityNameMaxValues = 3
	modalityValueMaxLen   = 15
	modalityValueCutLen   = 12
)

// ComputeModalityHash returns the stable 10-character content hash of a set
// of categorical values. The hash is computed over a length-prefixed encoding
// of the sorted distinct values, so two different sets whose naive
// concatenations coincide still hash differently.
func ComputeModalityHash(values []string) string {
	distinct := distinctSorted(values)
	h := sha256.New()
	var lenBuf [8]byte
	for _, v := range distinct {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(v)))
		h.Write(lenBuf[:])
		h.Write([]byte(v))
	}
	return hex.EncodeToString(h.Sum(nil))[:10]
}

// BuildModalityName builds the human-readable summary of a value set:
// values sorted case-insensitively, long values truncated, at most three
// shown with a "+n" marker for the rest.
func BuildModalityName(values []string) string {
	sorted := sortedCaseInsensitive(distinctSorted(values))

	shown := sorted
	extra := 0
	if len(sorted) > modalityNameMaxValues {
		shown = sorted[:modalityNameMaxValues]
		extra = len(sorted) - modalityNameMaxValues
	}

	parts := make([]string, len(shown))
	for i, v := range shown {
		parts[i] = truncateValue(v)
	}

	name := strings.Join(parts, ", ")
	if extra > 0 {
		name += "... (+" + strconv.Itoa(extra) + ")"
	}
	return name
}

func truncateValue(v string) string {
	runes := []rune(v)
	if len(runes) <= modalityValueMaxLen {
		return v
	}
	return string(runes[:modalityValueCutLen]) + "..."
}

// modalityIndex deduplicates modalities by value-set signature.
type modalityIndex struct {
	bySignature map[string]string // signature -> modality ID
}

func newModalityIndex() *modalityIndex {
	return &modalityIndex{bySignature: make(map[string]string)}
}

// signature builds the set-equality key for a value set. It uses the same
// length-prefixed encoding as the hash, so signature equality is exactly
// set equality.
func signature(distinct []string) string {
	var b strings.Builder
	var lenBuf [8]byte
	for _, v := range distinct {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(v)))
		b.Write(lenBuf[:])
		b.WriteString(v)
	}
	return b.String()
}

// getOrCreate returns the modality ID for a value set, creating the modality,
// its values, and the sentinel folder on first sight of the set.
func (c *Catalog) getOrCreateModality(values []string) string {
	distinct := distinctSorted(values)
	sig := signature(distinct)
	if id, ok := c.modalities.bySignature[sig]; ok {
		return id
	}

	c.ensureModalityFolder()

	id := MakeID(ModalityFolderID, "mod_"+ComputeModalityHash(distinct))
	c.Modalities = append(c.Modalities, &Modality{
		ID:       id,
		FolderID: ModalityFolderID,
		Name:     BuildModalityName(distinct),
	})
	for _, v := range distinct {
		c.Values = append(c.Values, &Value{ModalityID: id, Value: v})
	}
	c.modalities.bySignature[sig] = id
	return id
}

func (c *Catalog) ensureModalityFolder() {
	for _, f := range c.Folders {
		if f.ID == ModalityFolderID {
			return
		}
	}
	c.Folders = append(c.Folders, &Folder{
		ID:   ModalityFolderID,
		Name: "Modalities",
		Type: "modality",
	})
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func sortedCaseInsensitive(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
