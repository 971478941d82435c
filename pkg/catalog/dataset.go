package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/datannur/datannur-go/pkg/scanner"
)

// DatasetOptions controls a single-dataset scan. Explicit metadata always
// wins over values extracted from the source file.
type DatasetOptions struct {
	// Folder registers (or reuses, by ID) a folder owning the dataset.
	Folder *Folder

	// FolderID links the dataset to an already-registered folder. Mutually
	// exclusive with Folder.
	FolderID string

	ID          string
	Name        string
	Description string

	Type         string
	Link         string
	Localisation string
	OwnerID      string
	ManagerID    string
	TagIDs       []string
	DocIDs       []string
	StartDate    string
	EndDate      string
	UpdatingEach string

	// NoStats skips distinct/missing/duplicate counts and frequency tables.
	NoStats bool
}

// AddDataset scans exactly one file or table-format directory into the
// catalog. A directory must classify as a recognized table format;
// guessing is forbidden.
func (c *Catalog) AddDataset(ctx context.Context, path string, opts DatasetOptions) error {
	if opts.Folder != nil && opts.FolderID != "" {
		return fmt.Errorf("%w (folder %q, folder_id %q)", ErrAmbiguousFolder, opts.Folder.ID, opts.FolderID)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, abs)
	}
	if err != nil {
		return err
	}

	var format scanner.Format
	if info.IsDir() {
		kind := scanner.ClassifyDir(abs)
		if kind == scanner.DirUnknown {
			return &UnknownDirFormatError{Path: abs}
		}
		format = kind.Format()
	} else {
		f, ok := scanner.FormatForPath(abs)
		if !ok {
			return &UnsupportedFormatError{Path: abs}
		}
		format = f
	}

	folderID := opts.FolderID
	if opts.Folder != nil {
		if existing := c.findFolder(opts.Folder.ID); existing == nil {
			if opts.Folder.Type == "" {
				opts.Folder.Type = "filesystem"
			}
			c.Folders = append(c.Folders, opts.Folder)
		}
		folderID = opts.Folder.ID
	}

	stem := filepath.Base(abs)
	if !info.IsDir() {
		stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	}

	id := opts.ID
	if id == "" {
		id = DatasetID(folderID, stem)
	}
	name := opts.Name
	if name == "" {
		name = stem
	}

	ds := &Dataset{
		ID:             id,
		Name:           name,
		FolderID:       folderID,
		DataPath:       abs,
		LastUpdate:     mtimeDate(info),
		DeliveryFormat: string(format),
		Description:    opts.Description,
		Type:           opts.Type,
		Link:           opts.Link,
		Localisation:   opts.Localisation,
		OwnerID:        opts.OwnerID,
		ManagerID:      opts.ManagerID,
		TagIDs:         opts.TagIDs,
		DocIDs:         opts.DocIDs,
		StartDate:      opts.StartDate,
		EndDate:        opts.EndDate,
		UpdatingEach:   opts.UpdatingEach,
	}
	c.Datasets = append(c.Datasets, ds)

	eng, err := c.scanEngine()
	if err != nil {
		return err
	}
	res, err := eng.Scan(ctx, abs, format, c.scanOptions(!opts.NoStats))
	if err != nil {
		var unavailable *scanner.FeatureUnavailableError
		if errors.As(err, &unavailable) {
			return err
		}
		return fmt.Errorf("failed to scan %s: %w", abs, err)
	}

	ds.NbRow = res.RowCount
	if opts.Description == "" && res.Meta.Description != "" {
		ds.Description = res.Meta.Description
	}
	if opts.Name == "" && res.Meta.Name != "" {
		ds.Name = res.Meta.Name
	}
	c.progress("scanned dataset", "id", ds.ID, "rows", ds.NbRow, "variables", len(res.Columns))
	return c.finalizeVariables(ds, res)
}
