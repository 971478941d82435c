package catalog

import (
	"strings"
	"unicode"
)

// IDSeparator joins the components of hierarchical identifiers
// (folder---subfolder, dataset---variable). Downstream consumers split on it
// to recover the hierarchy, so it must never change.
const IDSeparator = "---"

// SanitizeID replaces every character outside {letters, digits, underscore,
// comma, hyphen, space} with an underscore. Unicode letters and digits pass
// through untouched. Idempotent.
func SanitizeID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '_' || r == ',' || r == '-' || r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// MakeID joins already-sanitized parts with IDSeparator. Parts are not
// re-sanitized here: a single conceptual name may legally contain the
// separator and callers must sanitize each component on its own.
func MakeID(parts ...string) string {
	return strings.Join(parts, IDSeparator)
}

// DatasetID builds a dataset identifier under a folder.
// An empty folderID yields the bare sanitized name.
func DatasetID(folderID, name string) string {
	if folderID == "" {
		return SanitizeID(name)
	}
	return MakeID(folderID, SanitizeID(name))
}

// VariableID builds a variable identifier under a dataset.
func VariableID(datasetID, name string) string {
	return MakeID(datasetID, SanitizeID(name))
}
