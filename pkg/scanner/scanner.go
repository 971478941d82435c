// Package scanner extracts metadata from data files: column schemas, exact
// row counts, distinct/missing statistics, and value-frequency tables.
// All heavy lifting is delegated to an embedded DuckDB instance.
package scanner

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the delivery format of a scanned source.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatExcel   Format = "excel"
	FormatParquet Format = "parquet"
	FormatDelta   Format = "delta"
	FormatHive    Format = "hive"
	FormatIceberg Format = "iceberg"
	FormatSAS     Format = "sas"
	FormatSPSS    Format = "spss"
	FormatStata   Format = "stata"
)

// formatByExtension maps file extensions to delivery formats.
var formatByExtension = map[string]Format{
	".csv":      FormatCSV,
	".xlsx":     FormatExcel,
	".xls":      FormatExcel,
	".parquet":  FormatParquet,
	".pq":       FormatParquet,
	".sas7bdat": FormatSAS,
	".sav":      FormatSPSS,
	".dta":      FormatStata,
}

// DefaultExtensions are the extensions picked up by a folder walk when no
// include patterns are given.
var DefaultExtensions = map[string]bool{
	".csv":     true,
	".xlsx":    true,
	".xls":     true,
	".parquet": true,
	".pq":      true,
}

// FormatForPath returns the delivery format for a file path based on its
// extension.
func FormatForPath(path string) (Format, bool) {
	f, ok := formatByExtension[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Column is one scanned column with its normalized type and optional
// statistics. Nil counts mean "not computed".
type Column struct {
	Name        string
	Type        string
	Description string
	NbDistinct  *int64
	NbDuplicate *int64
	NbMissing   *int64
}

// FreqRow is one (variable, value, count) row of a frequency table. The
// variable reference is the provisional column name until the catalog
// finalizes it. A nil Value records the null group.
type FreqRow struct {
	VariableID string
	Value      *string
	Freq       int64
}

// Metadata carries descriptive information extracted from the source itself
// (Parquet key-value metadata, Delta commit log, Iceberg table metadata).
type Metadata struct {
	Name        string
	Description string
}

// Result is the outcome of scanning one source unit.
type Result struct {
	Columns  []Column
	RowCount int64
	Freq     []FreqRow
	Meta     Metadata
}

// Options controls a scan.
type Options struct {
	// InferStats computes distinct/duplicate/missing counts per column.
	InferStats bool

	// FreqThreshold bounds which columns get a frequency table: only columns
	// with at most this many distinct values qualify. Zero disables
	// frequency tables entirely.
	FreqThreshold int

	// Encoding is a priority text encoding for CSV sources (e.g. "CP1252").
	Encoding string
}

// FeatureUnavailableError reports a format whose reader is not available in
// this build. It is raised when the format is encountered, never earlier.
type FeatureUnavailableError struct {
	Format Format
	Reason string
}

func (e *FeatureUnavailableError) Error() string {
	return fmt.Sprintf("format %q is not available: %s", e.Format, e.Reason)
}
