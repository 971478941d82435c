// Package catalog builds a structured metadata catalog from filesystem
// trees, single files, and relational databases: folders, datasets,
// variables, deduplicated categorical value-sets (modalities), and their
// values, ready for export in the datannur JSON format.
package catalog

import (
	"fmt"
	"log/slog"

	"github.com/datannur/datannur-go/pkg/scanner"
)

// DefaultFreqThreshold bounds which variables get frequency tables (and
// hence modalities): only variables with at most this many distinct values.
const DefaultFreqThreshold = 100

// Catalog accumulates the five entity collections over one build. A catalog
// is owned by a single goroutine; walkers are issued sequentially and mutate
// it in place.
type Catalog struct {
	Folders    []*Folder
	Datasets   []*Dataset
	Variables  []*Variable
	Modalities []*Modality
	Values     []*Value

	// Freq holds the accumulated frequency rows, re-keyed to final
	// variable IDs, for later export.
	Freq []scanner.FreqRow

	freqThreshold int
	csvEncoding   string
	quiet         bool
	logger        *slog.Logger

	modalities *modalityIndex
	engine     *scanner.Engine
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the structured logger. Nil keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFreqThreshold overrides the frequency-table threshold. Zero disables
// frequency tables and modality discovery.
func WithFreqThreshold(n int) Option {
	return func(c *Catalog) { c.freqThreshold = n }
}

// WithCSVEncoding sets a priority text encoding for CSV sources.
func WithCSVEncoding(encoding string) Option {
	return func(c *Catalog) { c.csvEncoding = encoding }
}

// WithQuiet demotes per-dataset progress messages to debug level.
func WithQuiet() Option {
	return func(c *Catalog) { c.quiet = true }
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		freqThreshold: DefaultFreqThreshold,
		logger:        slog.New(slog.DiscardHandler),
		modalities:    newModalityIndex(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the file-scanning engine, if one was opened.
func (c *Catalog) Close() error {
	if c.engine == nil {
		return nil
	}
	err := c.engine.Close()
	c.engine = nil
	return err
}

// String summarizes the catalog's entity counts.
func (c *Catalog) String() string {
	return fmt.Sprintf("Catalog(folders=%d, datasets=%d, variables=%d, modalities=%d, values=%d)",
		len(c.Folders), len(c.Datasets), len(c.Variables), len(c.Modalities), len(c.Values))
}

// scanEngine lazily opens the shared DuckDB scan engine.
func (c *Catalog) scanEngine() (*scanner.Engine, error) {
	if c.engine != nil {
		return c.engine, nil
	}
	eng, err := scanner.NewEngine(c.logger)
	if err != nil {
		return nil, err
	}
	c.engine = eng
	return eng, nil
}

// scanOptions builds the scan options for this catalog.
func (c *Catalog) scanOptions(inferStats bool) scanner.Options {
	opts := scanner.Options{InferStats: inferStats, Encoding: c.csvEncoding}
	if inferStats {
		opts.FreqThreshold = c.freqThreshold
	}
	return opts
}

// progress logs one per-dataset progress line, demoted to debug when quiet.
func (c *Catalog) progress(msg string, args ...any) {
	if c.quiet {
		c.logger.Debug(msg, args...)
		return
	}
	c.logger.Info(msg, args...)
}

// findFolder returns the registered folder with the given ID, or nil.
func (c *Catalog) findFolder(id string) *Folder {
	for _, f := range c.Folders {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// finalizeVariables is the single seam where per-scan provisional variable
// IDs become catalog-global IDs. It must be called exactly once per dataset:
// it rewrites every frequency row to final IDs, assigns modalities from the
// grouped values, and appends everything to the catalog.
func (c *Catalog) finalizeVariables(ds *Dataset, res *scanner.Result) error {
	finalByProvisional := make(map[string]string, len(res.Columns))
	vars := make([]*Variable, 0, len(res.Columns))
	for _, col := range res.Columns {
		v := &Variable{
			ID:          VariableID(ds.ID, col.Name),
			Name:        col.Name,
			DatasetID:   ds.ID,
			Type:        col.Type,
			NbDistinct:  col.NbDistinct,
			NbDuplicate: col.NbDuplicate,
			NbMissing:   col.NbMissing,
			Description: col.Description,
		}
		finalByProvisional[col.Name] = v.ID
		vars = append(vars, v)
	}

	// Rewrite frequency rows from provisional to final IDs. A row whose
	// provisional ID has no mapping is a scanner bug, not a droppable row.
	valuesByFinal := make(map[string][]string)
	for i := range res.Freq {
		final, ok := finalByProvisional[res.Freq[i].VariableID]
		if !ok {
			return fmt.Errorf("frequency row references unknown variable %q in dataset %s", res.Freq[i].VariableID, ds.ID)
		}
		res.Freq[i].VariableID = final
		if res.Freq[i].Value != nil {
			valuesByFinal[final] = append(valuesByFinal[final], *res.Freq[i].Value)
		}
	}

	for _, v := range vars {
		if values, ok := valuesByFinal[v.ID]; ok && len(values) > 0 {
			v.ModalityIDs = []string{c.getOrCreateModality(values)}
		}
	}

	c.Variables = append(c.Variables, vars...)
	c.Freq = append(c.Freq, res.Freq...)
	return nil
}
