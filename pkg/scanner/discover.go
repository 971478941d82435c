package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

// DirKind classifies a directory that may be one logical dataset rather than
// a plain folder of files.
type DirKind int

const (
	// DirUnknown means the directory matches no recognized table format.
	DirUnknown DirKind = iota
	// DirDelta is a Delta Lake table (transaction log).
	DirDelta
	// DirIceberg is an Apache Iceberg table (versioned metadata).
	DirIceberg
	// DirHive is a Hive-style partitioned Parquet directory.
	DirHive
)

// Format returns the delivery format a directory kind scans as.
func (k DirKind) Format() Format {
	switch k {
	case DirDelta:
		return FormatDelta
	case DirIceberg:
		return FormatIceberg
	case DirHive:
		return FormatHive
	default:
		return ""
	}
}

// ClassifyDir decides whether a directory is itself one logical dataset.
// Detection is structural: a _delta_log directory marks a Delta table, a
// metadata directory with *.metadata.json files marks an Iceberg table, and
// key=value partition directories holding parquet files mark a Hive layout.
func ClassifyDir(path string) DirKind {
	if isDir(filepath.Join(path, "_delta_log")) {
		return DirDelta
	}
	if hasIcebergMetadata(path) {
		return DirIceberg
	}
	if hasHivePartitions(path) {
		return DirHive
	}
	return DirUnknown
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func hasIcebergMetadata(path string) bool {
	entries, err := os.ReadDir(filepath.Join(path, "metadata"))
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".metadata.json") {
			return true
		}
	}
	return false
}

// hasHivePartitions reports whether the directory contains at least one
// key=value partition directory with a parquet file somewhere beneath it.
func hasHivePartitions(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.Contains(entry.Name(), "=") {
			if containsParquet(filepath.Join(path, entry.Name())) {
				return true
			}
		}
	}
	return false
}

func containsParquet(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			ext := strings.ToLower(filepath.Ext(p))
			if ext == ".parquet" || ext == ".pq" {
				found = true
				return filepath.SkipAll
			}
		}
		return nil
	})
	return found
}
