package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/datannur/datannur-go/pkg/scanner"
)

// FolderOptions controls a folder scan. The zero value scans recursively
// with statistics enabled.
type FolderOptions struct {
	// Folder is a pre-built root folder record. When nil, one is derived
	// from the directory name.
	Folder *Folder

	// Include restricts discovery to files matching these glob patterns
	// (relative to the root). When empty, files with recognized extensions
	// are discovered.
	Include []string

	// Exclude drops files after inclusion: a directory entry drops
	// everything beneath it, a wildcard entry is glob-matched, anything
	// else must match a file path exactly.
	Exclude []string

	// NoRecursive limits discovery to the root directory itself.
	NoRecursive bool

	// NoStats skips distinct/missing/duplicate counts and frequency tables.
	NoStats bool
}

// dirDataset is a directory discovered to be one logical dataset.
type dirDataset struct {
	path   string
	format scanner.Format
}

// AddFolder scans a directory tree into the catalog: one root folder, one
// folder per subdirectory holding retained files, one dataset per retained
// file or recognized table-format directory. A file that fails to scan
// still yields a dataset (zero rows, no variables) and a warning; the rest
// of the walk continues.
func (c *Catalog) AddFolder(ctx context.Context, path string, opts FolderOptions) error {
	root, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, root)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	folder := opts.Folder
	if folder == nil {
		folder = &Folder{ID: SanitizeID(filepath.Base(root)), Name: filepath.Base(root)}
	}
	folder.Type = "filesystem"
	folder.DataPath = root
	folder.LastUpdate = mtimeDate(info)
	c.Folders = append(c.Folders, folder)

	recursive := !opts.NoRecursive

	// Table-format directories are one dataset each: they leave the generic
	// file/subfolder walk entirely. Excluded directories still shadow their
	// subtrees so their contents never leak back in as plain files.
	dirDatasets, excludedDirs := discoverDirDatasets(root, recursive)
	dirDatasets = dropExcludedDirDatasets(root, dirDatasets, opts.Exclude, recursive)

	files, err := findFiles(root, opts.Include, opts.Exclude, recursive)
	if err != nil {
		return err
	}
	files = dropUnder(files, excludedDirs)

	// Folders for every directory between the root and a retained file or
	// dataset directory, parents first.
	anchors := make([]string, 0, len(files)+len(dirDatasets))
	for _, f := range files {
		anchors = append(anchors, filepath.Dir(f))
	}
	for _, d := range dirDatasets {
		anchors = append(anchors, filepath.Dir(d.path))
	}
	subdirIDs := c.addSubfolders(root, folder.ID, anchors)

	scanOpts := c.scanOptions(!opts.NoStats)

	for _, d := range sortedDirDatasets(dirDatasets) {
		if err := c.addFolderDataset(ctx, root, folder.ID, d.path, d.format, subdirIDs, scanOpts); err != nil {
			return err
		}
	}

	sort.Strings(files)
	for _, file := range files {
		format, ok := scanner.FormatForPath(file)
		if !ok {
			// Permissive include patterns may match unrecognized files.
			continue
		}
		if err := c.addFolderDataset(ctx, root, folder.ID, file, format, subdirIDs, scanOpts); err != nil {
			return err
		}
	}
	return nil
}

// addFolderDataset creates the dataset for one file or dataset directory
// under a folder walk and scans it, downgrading source-data errors to
// warnings.
func (c *Catalog) addFolderDataset(ctx context.Context, root, rootID, path string, format scanner.Format, subdirIDs map[string]string, scanOpts scanner.Options) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	idParts := make([]string, 0, len(parts)+1)
	idParts = append(idParts, rootID)
	for _, p := range parts {
		idParts = append(idParts, SanitizeID(p))
	}

	folderID := rootID
	if parent := filepath.Dir(path); parent != root {
		if id, ok := subdirIDs[parent]; ok {
			folderID = id
		}
	}

	name := parts[len(parts)-1]
	if ext := filepath.Ext(name); ext != "" && format != scanner.FormatDelta && format != scanner.FormatHive && format != scanner.FormatIceberg {
		name = strings.TrimSuffix(name, ext)
	}

	ds := &Dataset{
		ID:             MakeID(idParts...),
		Name:           name,
		FolderID:       folderID,
		DataPath:       path,
		DeliveryFormat: string(format),
	}
	if info, err := os.Stat(path); err == nil {
		ds.LastUpdate = mtimeDate(info)
	}
	c.Datasets = append(c.Datasets, ds)

	return c.scanInto(ctx, ds, path, format, scanOpts)
}

// scanInto scans a source into an already-appended dataset. Source-data
// failures leave the dataset with zero rows and no variables; a missing
// format reader propagates.
func (c *Catalog) scanInto(ctx context.Context, ds *Dataset, path string, format scanner.Format, opts scanner.Options) error {
	eng, err := c.scanEngine()
	if err != nil {
		return err
	}
	res, err := eng.Scan(ctx, path, format, opts)
	if err != nil {
		var unavailable *scanner.FeatureUnavailableError
		if errors.As(err, &unavailable) {
			return err
		}
		c.logger.Warn("could not scan dataset", "path", path, "error", err)
		return nil
	}

	ds.NbRow = res.RowCount
	if ds.Description == "" {
		ds.Description = res.Meta.Description
	}
	if res.Meta.Name != "" {
		ds.Name = res.Meta.Name
	}
	c.progress("scanned dataset", "id", ds.ID, "rows", ds.NbRow, "variables", len(res.Columns))
	return c.finalizeVariables(ds, res)
}

// addSubfolders creates folder entities for every directory between the
// root and an anchor directory, parents before children, and returns the
// directory-path to folder-ID mapping.
func (c *Catalog) addSubfolders(root, rootID string, anchors []string) map[string]string {
	subdirs := make(map[string]bool)
	for _, dir := range anchors {
		for dir != root && strings.HasPrefix(dir, root) {
			subdirs[dir] = true
			dir = filepath.Dir(dir)
		}
	}

	ordered := make([]string, 0, len(subdirs))
	for dir := range subdirs {
		ordered = append(ordered, dir)
	}
	// Lexicographic order puts every parent before its children.
	sort.Strings(ordered)

	ids := make(map[string]string, len(ordered))
	for _, dir := range ordered {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		idParts := make([]string, 0, len(parts)+1)
		idParts = append(idParts, rootID)
		for _, p := range parts {
			idParts = append(idParts, SanitizeID(p))
		}
		id := MakeID(idParts...)

		parentID := rootID
		if parent := filepath.Dir(dir); parent != root {
			if pid, ok := ids[parent]; ok {
				parentID = pid
			}
		}

		sub := &Folder{
			ID:       id,
			Name:     filepath.Base(dir),
			ParentID: parentID,
			Type:     "filesystem",
			DataPath: dir,
		}
		if info, err := os.Stat(dir); err == nil {
			sub.LastUpdate = mtimeDate(info)
		}
		c.Folders = append(c.Folders, sub)
		ids[dir] = id
	}
	return ids
}

// discoverDirDatasets finds directories under root that are one logical
// dataset (Delta, Iceberg, Hive partitioned). Their subtrees are excluded
// from the generic walk so their contents are never double-counted.
func discoverDirDatasets(root string, recursive bool) ([]dirDataset, []string) {
	var datasets []dirDataset
	var excluded []string

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, nil
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(root, entry.Name())
			if kind := scanner.ClassifyDir(dir); kind != scanner.DirUnknown {
				datasets = append(datasets, dirDataset{path: dir, format: kind.Format()})
				excluded = append(excluded, dir)
			}
		}
		return datasets, excluded
	}

	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || p == root {
			return nil
		}
		if kind := scanner.ClassifyDir(p); kind != scanner.DirUnknown {
			datasets = append(datasets, dirDataset{path: p, format: kind.Format()})
			excluded = append(excluded, p)
			return filepath.SkipDir
		}
		return nil
	})
	return datasets, excluded
}

// dropExcludedDirDatasets applies Exclude entries to discovered dataset
// directories with the same vocabulary findFiles uses: an entry naming the
// directory (or an ancestor) drops it, a wildcard entry is glob-matched
// against the root-relative path.
func dropExcludedDirDatasets(root string, datasets []dirDataset, exclude []string, recursive bool) []dirDataset {
	if len(exclude) == 0 || len(datasets) == 0 {
		return datasets
	}
	var kept []dirDataset
	for _, d := range datasets {
		rel, err := filepath.Rel(root, d.path)
		if err != nil {
			kept = append(kept, d)
			continue
		}
		relSlash := filepath.ToSlash(rel)
		dropped := false
		for _, pattern := range exclude {
			pat := strings.TrimSuffix(filepath.ToSlash(pattern), "/")
			if strings.ContainsAny(pat, "*?[") {
				if recursive && !strings.HasPrefix(pat, "**") {
					pat = "**/" + pat
				}
				if ok, err := doublestar.Match(pat, relSlash); err == nil && ok {
					dropped = true
					break
				}
				continue
			}
			if relSlash == pat || strings.HasPrefix(relSlash, pat+"/") {
				dropped = true
				break
			}
		}
		if !dropped {
			kept = append(kept, d)
		}
	}
	return kept
}

func sortedDirDatasets(datasets []dirDataset) []dirDataset {
	sort.Slice(datasets, func(i, j int) bool { return datasets[i].path < datasets[j].path })
	return datasets
}

// findFiles discovers candidate files under root. Without include patterns,
// files with recognized extensions are collected; with patterns, each is
// glob-expanded (recursion anchors unanchored patterns with **/). Excludes
// apply afterwards.
func findFiles(root string, include, exclude []string, recursive bool) ([]string, error) {
	fsys := os.DirFS(root)
	var candidates []string

	if len(include) == 0 {
		if recursive {
			err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return nil
				}
				if scanner.DefaultExtensions[strings.ToLower(filepath.Ext(p))] {
					candidates = append(candidates, filepath.Join(root, filepath.FromSlash(p)))
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			entries, err := os.ReadDir(root)
			if err != nil {
				return nil, err
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				if scanner.DefaultExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
					candidates = append(candidates, filepath.Join(root, entry.Name()))
				}
			}
		}
	} else {
		for _, pattern := range include {
			pat := filepath.ToSlash(pattern)
			if recursive && !strings.HasPrefix(pat, "**") {
				pat = "**/" + pat
			}
			matches, err := doublestar.Glob(fsys, pat)
			if err != nil {
				return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
			}
			for _, m := range matches {
				full := filepath.Join(root, filepath.FromSlash(m))
				if info, err := os.Stat(full); err == nil && !info.IsDir() {
					candidates = append(candidates, full)
				}
			}
		}
	}

	if len(exclude) == 0 {
		return dedupe(candidates), nil
	}

	dropped := make(map[string]bool)
	for _, pattern := range exclude {
		pat := strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		target := filepath.Join(root, filepath.FromSlash(pat))

		if info, err := os.Stat(target); err == nil && info.IsDir() {
			for _, f := range candidates {
				if strings.HasPrefix(f, target+string(filepath.Separator)) {
					dropped[f] = true
				}
			}
			continue
		}
		if strings.ContainsAny(pat, "*?[") {
			globPat := pat
			if recursive && !strings.HasPrefix(globPat, "**") {
				globPat = "**/" + globPat
			}
			matches, err := doublestar.Glob(fsys, globPat)
			if err != nil {
				return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
			}
			for _, m := range matches {
				dropped[filepath.Join(root, filepath.FromSlash(m))] = true
			}
			continue
		}
		// Exact file path; a nonexistent entry is a no-op.
		dropped[target] = true
	}

	var kept []string
	for _, f := range candidates {
		if !dropped[f] {
			kept = append(kept, f)
		}
	}
	return dedupe(kept), nil
}

// dropUnder removes files nested under any of the given directories.
func dropUnder(files []string, dirs []string) []string {
	if len(dirs) == 0 {
		return files
	}
	var kept []string
	for _, f := range files {
		under := false
		for _, dir := range dirs {
			if strings.HasPrefix(f, dir+string(filepath.Separator)) {
				under = true
				break
			}
		}
		if !under {
			kept = append(kept, f)
		}
	}
	return kept
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// mtimeDate formats a modification time as YYYY/MM/DD (UTC).
func mtimeDate(info os.FileInfo) string {
	return info.ModTime().UTC().Format("2006/01/02")
}
