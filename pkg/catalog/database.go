package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/datannur/datannur-go/pkg/dbase"
)

// DatabaseOptions controls a database scan. The zero value scans every
// non-system schema with statistics and prefix grouping enabled.
type DatabaseOptions struct {
	// Folder is a pre-built root folder record. When nil, one is derived
	// from the database name.
	Folder *Folder

	// Schema restricts the scan to one schema. When empty, every
	// non-system schema is scanned.
	Schema string

	// Include restricts discovery to tables matching these patterns
	// (glob or exact). When empty, all base tables are discovered.
	Include []string

	// Exclude drops tables after inclusion, by glob or exact match.
	Exclude []string

	// NoStats skips distinct/missing/duplicate counts and frequency
	// tables. Exact row counts are always collected.
	NoStats bool

	// SampleSize bounds the rows statistics are computed over. Zero
	// means full table. Row counts stay exact regardless.
	SampleSize int

	// NoPrefixGroups disables the shared-prefix folder grouping of
	// table names.
	NoPrefixGroups bool

	// PrefixSep is the token separator for prefix grouping ("_" when
	// empty).
	PrefixSep string

	// PrefixMinCount is the minimum number of tables sharing a prefix
	// for the prefix to become a folder (2 when zero).
	PrefixMinCount int
}

// AddDatabase scans a database into the catalog: one root folder, one
// folder per schema when the database has several, optional prefix-group
// folders, and one dataset per base table. Views are never included. The
// connection string decides the backend (sqlite://, duckdb://,
// postgres://, sqlserver://, or a bare database file path).
func (c *Catalog) AddDatabase(ctx context.Context, conn string, opts DatabaseOptions) error {
	cfg, err := dbase.ParseConnString(conn)
	if err != nil {
		return err
	}
	ad, err := dbase.New(cfg, c.logger)
	if err != nil {
		return err
	}
	if err := ad.Connect(ctx, cfg); err != nil {
		return err
	}
	defer ad.Close()
	return c.AddDatabaseAdapter(ctx, ad, cfg.DatabaseName(), opts)
}

// AddDatabaseAdapter scans an already-connected adapter into the catalog.
// The adapter stays open afterwards; the caller owns it.
func (c *Catalog) AddDatabaseAdapter(ctx context.Context, ad dbase.Adapter, name string, opts DatabaseOptions) error {
	backend := ad.Backend()

	folder := opts.Folder
	if folder == nil {
		folder = &Folder{ID: SanitizeID(name), Name: name}
	}
	folder.Type = backend
	c.Folders = append(c.Folders, folder)

	schemas, err := c.resolveSchemas(ctx, ad, opts.Schema)
	if err != nil {
		return err
	}

	// A schema level in the folder tree only helps when there is more
	// than one schema to tell apart.
	multi := len(schemas) > 1

	scanOpts := dbase.ScanOptions{
		InferStats: !opts.NoStats,
		SampleSize: opts.SampleSize,
	}
	if scanOpts.InferStats {
		scanOpts.FreqThreshold = c.freqThreshold
	}

	for _, schema := range schemas {
		scopeID := folder.ID
		if multi {
			sf := &Folder{
				ID:       MakeID(folder.ID, SanitizeID(schema)),
				Name:     schema,
				ParentID: folder.ID,
				Type:     backend,
			}
			c.Folders = append(c.Folders, sf)
			scopeID = sf.ID
		}

		tables, err := ad.ListTables(ctx, schema)
		if err != nil {
			return err
		}
		tables = filterTables(tables, opts.Include, opts.Exclude)
		sort.Strings(tables)

		valid := c.addPrefixFolders(scopeID, tables, opts)

		for _, table := range tables {
			folderID := scopeID
			if prefix := TablePrefix(table, valid, prefixSep(opts)); prefix != "" {
				folderID = MakeID(scopeID, SanitizeID(prefix))
			}
			if err := c.addTableDataset(ctx, ad, schema, table, folderID, backend, scanOpts); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveSchemas returns the schemas to walk: the explicit one, the
// adapter's non-system schemas, or a single anonymous scope for backends
// without schemas.
func (c *Catalog) resolveSchemas(ctx context.Context, ad dbase.Adapter, explicit string) ([]string, error) {
	if explicit != "" {
		return []string{explicit}, nil
	}
	schemas, err := ad.ListSchemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing schemas: %w", err)
	}
	if len(schemas) == 0 {
		return []string{""}, nil
	}
	return schemas, nil
}

// addPrefixFolders creates folders for table-name prefixes shared by
// enough tables, parents before children, and returns the set of valid
// prefixes for per-table assignment.
func (c *Catalog) addPrefixFolders(scopeID string, tables []string, opts DatabaseOptions) map[string]bool {
	if opts.NoPrefixGroups {
		return nil
	}
	minCount := opts.PrefixMinCount
	if minCount <= 0 {
		minCount = DefaultPrefixMinCount
	}
	sep := prefixSep(opts)

	prefixes := PrefixFolders(tables, sep, minCount)
	valid := make(map[string]bool, len(prefixes))
	for _, p := range prefixes {
		parentID := scopeID
		if p.ParentPrefix != "" {
			parentID = MakeID(scopeID, SanitizeID(p.ParentPrefix))
		}
		c.Folders = append(c.Folders, &Folder{
			ID:       MakeID(scopeID, SanitizeID(p.Prefix)),
			Name:     p.Prefix,
			ParentID: parentID,
			Type:     "table_prefix",
		})
		valid[p.Prefix] = true
	}
	return valid
}

// addTableDataset creates the dataset for one table and scans it. Per-table
// scan failures leave the dataset with zero rows and no variables; the rest
// of the walk continues.
func (c *Catalog) addTableDataset(ctx context.Context, ad dbase.Adapter, schema, table, folderID, backend string, scanOpts dbase.ScanOptions) error {
	ds := &Dataset{
		ID:             MakeID(folderID, SanitizeID(table)),
		Name:           table,
		FolderID:       folderID,
		DeliveryFormat: backend,
	}
	c.Datasets = append(c.Datasets, ds)

	res, err := ad.ScanTable(ctx, schema, table, scanOpts)
	if err != nil {
		c.logger.Warn("could not scan table", "schema", schema, "table", table, "error", err)
		return nil
	}
	ds.NbRow = res.RowCount
	c.progress("scanned table", "id", ds.ID, "rows", ds.NbRow, "variables", len(res.Columns))
	return c.finalizeVariables(ds, res)
}

func prefixSep(opts DatabaseOptions) string {
	if opts.PrefixSep != "" {
		return opts.PrefixSep
	}
	return DefaultPrefixSep
}

// filterTables applies include then exclude patterns to table names. A
// pattern containing glob metacharacters is glob-matched, anything else
// must match exactly.
func filterTables(tables, include, exclude []string) []string {
	out := tables[:0:0]
	for _, t := range tables {
		if len(include) > 0 && !matchAny(include, t) {
			continue
		}
		if matchAny(exclude, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if strings.ContainsAny(p, "*?[{") {
			if ok, err := doublestar.Match(p, name); err == nil && ok {
				return true
			}
			continue
		}
		if p == name {
			return true
		}
	}
	return false
}
