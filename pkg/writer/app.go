package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/datannur/datannur-go/pkg/catalog"
)

// ErrAppNotFound is returned when the visualization app directory does not
// exist at the given path.
var ErrAppNotFound = errors.New("datannur app not found")

// ExportApp copies the visualization app from appDir into dir and writes
// the catalog database under dir/data/db. Any existing data/db content is
// replaced so stale tables never shadow the new export; app files merge
// over what is already there.
func ExportApp(cat *catalog.Catalog, dir, appDir string, opts Options) error {
	info, err := os.Stat(appDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrAppNotFound, appDir)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrAppNotFound, appDir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := copyMerge(dir, appDir); err != nil {
		return fmt.Errorf("copying app: %w", err)
	}

	dbDir := filepath.Join(dir, "data", "db")
	if err := os.RemoveAll(dbDir); err != nil {
		return fmt.Errorf("clearing database directory: %w", err)
	}
	return ExportDB(cat, dbDir, opts)
}

// copyMerge copies src's entries into dst. A directory entry replaces any
// existing directory of the same name; plain files are overwritten.
func copyMerge(dst, src string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		target := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := os.RemoveAll(target); err != nil {
				return err
			}
			if err := os.CopyFS(target, os.DirFS(filepath.Join(src, entry.Name()))); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(target, filepath.Join(src, entry.Name()), entry); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(dst, src string, entry fs.DirEntry) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	mode := fs.FileMode(0o644)
	if info, err := entry.Info(); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(dst, data, mode)
}
