package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for caller-input failures. They are never retried and
// propagate unmodified through the walkers.
var (
	// ErrNotFound is returned when a source path does not exist.
	ErrNotFound = errors.New("path not found")

	// ErrNotDirectory is returned when a folder scan targets a non-directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrAmbiguousFolder is returned when both a Folder object and a
	// folder-id reference are supplied for the same dataset.
	ErrAmbiguousFolder = errors.New("cannot specify both folder and folder_id")
)

// UnsupportedFormatError is returned when a file extension maps to no known
// delivery format.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Path)
}

// UnknownDirFormatError is returned when a directory handed to the
// single-dataset walker matches no recognized multi-file table format.
type UnknownDirFormatError struct {
	Path string
}

func (e *UnknownDirFormatError) Error() string {
	return fmt.Sprintf("%s is not a recognized table format directory (expected Delta, Hive partitioned, or Iceberg)", e.Path)
}
