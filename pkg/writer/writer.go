// Package writer serializes a catalog to the datannur on-disk database:
// per-entity pretty JSON files plus compact jsonjsdb array files, a table
// registry, and an optional copy of the visualization app.
package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/datannur/datannur-go/pkg/catalog"
	"github.com/datannur/datannur-go/pkg/scanner"
)

// Options controls an export.
type Options struct {
	// SkipJS suppresses the compact .json.js companion files.
	SkipJS bool
}

// table is one exported entity collection.
type table struct {
	name    string
	records []catalog.Record
}

// ExportDB writes the catalog to dir as the datannur JSON database:
// {entity}.json for each entity type, {entity}.json.js companions for
// non-empty collections, freq.json when frequency rows exist, and the
// __table__.json registry. Writes are atomic (temp file plus rename).
func ExportDB(cat *catalog.Catalog, dir string, opts Options) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tables := []table{
		{"folder", folderRecords(cat.Folders)},
		{"dataset", datasetRecords(cat.Datasets)},
		{"variable", variableRecords(cat.Variables)},
		{"modality", modalityRecords(cat.Modalities)},
		{"value", valueRecords(cat.Values)},
	}
	if len(cat.Freq) > 0 {
		tables = append(tables, table{"freq", freqRecords(cat.Freq)})
	}

	names := make([]string, 0, len(tables))
	for _, t := range tables {
		if err := writeTable(dir, t, opts); err != nil {
			return err
		}
		names = append(names, t.name)
	}
	return writeRegistry(dir, names, opts)
}

// writeTable writes one entity collection as {name}.json and, for
// non-empty collections, {name}.json.js.
func writeTable(dir string, t table, opts Options) error {
	pretty, err := marshalPretty(t.records)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", t.name, err)
	}
	if err := writeAtomic(filepath.Join(dir, t.name+".json"), pretty); err != nil {
		return err
	}

	if opts.SkipJS || len(t.records) == 0 {
		return nil
	}
	js, err := buildJSONJS(t.name, t.records)
	if err != nil {
		return fmt.Errorf("encoding %s.json.js: %w", t.name, err)
	}
	return writeAtomic(filepath.Join(dir, t.name+".json.js"), js)
}

// writeRegistry writes the __table__.json registry jsonjsdb uses for cache
// invalidation: every table name with a last-modified epoch.
func writeRegistry(dir string, names []string, opts Options) error {
	now := time.Now().Unix()
	records := make([]catalog.Record, 0, len(names)+1)
	for _, name := range append(names, "__table__") {
		records = append(records, catalog.Record{
			{Name: "name", Value: name},
			{Name: "last_modif", Value: now},
		})
	}

	pretty, err := marshalPretty(records)
	if err != nil {
		return fmt.Errorf("encoding table registry: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, "__table__.json"), pretty); err != nil {
		return err
	}
	if opts.SkipJS {
		return nil
	}
	js, err := buildJSONJS("__table__", records)
	if err != nil {
		return fmt.Errorf("encoding table registry: %w", err)
	}
	return writeAtomic(filepath.Join(dir, "__table__.json.js"), js)
}

// marshalPretty renders records as indented JSON. An empty collection still
// renders as an empty array rather than null.
func marshalPretty(records []catalog.Record) ([]byte, error) {
	if records == nil {
		records = []catalog.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// buildJSONJS renders the compact jsonjsdb form: a column-name header row
// followed by one value row per record. Columns are the union of non-nil
// fields across all records, in first-seen order.
func buildJSONJS(name string, records []catalog.Record) ([]byte, error) {
	var columns []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, f := range rec {
			if f.Value == nil || seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			columns = append(columns, f.Name)
		}
	}

	rows := make([][]any, 0, len(records)+1)
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	rows = append(rows, header)
	for _, rec := range records {
		byName := make(map[string]any, len(rec))
		for _, f := range rec {
			byName[f.Name] = f.Value
		}
		row := make([]any, len(columns))
		for i, col := range columns {
			row[i] = byName[col]
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	buf.WriteString("jsonjs.data['" + name + "'] = ")
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rows); err != nil {
		return nil, err
	}
	// Encoder appends a newline; the assignment is a single statement.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// writeAtomic writes content through a temp file and rename so readers
// never observe a half-written table.
func writeAtomic(path string, content []byte) error {
	tmp := path + ".temp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func folderRecords(folders []*catalog.Folder) []catalog.Record {
	out := make([]catalog.Record, 0, len(folders))
	for _, f := range folders {
		out = append(out, f.Record())
	}
	return out
}

func datasetRecords(datasets []*catalog.Dataset) []catalog.Record {
	out := make([]catalog.Record, 0, len(datasets))
	for _, d := range datasets {
		out = append(out, d.Record())
	}
	return out
}

func variableRecords(variables []*catalog.Variable) []catalog.Record {
	out := make([]catalog.Record, 0, len(variables))
	for _, v := range variables {
		out = append(out, v.Record())
	}
	return out
}

func modalityRecords(modalities []*catalog.Modality) []catalog.Record {
	out := make([]catalog.Record, 0, len(modalities))
	for _, m := range modalities {
		out = append(out, m.Record())
	}
	return out
}

func valueRecords(values []*catalog.Value) []catalog.Record {
	out := make([]catalog.Record, 0, len(values))
	for _, v := range values {
		out = append(out, v.Record())
	}
	return out
}

func freqRecords(rows []scanner.FreqRow) []catalog.Record {
	out := make([]catalog.Record, 0, len(rows))
	for _, r := range rows {
		var value any
		if r.Value != nil {
			value = *r.Value
		}
		out = append(out, catalog.Record{
			{Name: "variable_id", Value: r.VariableID},
			{Name: "value", Value: value},
			{Name: "freq", Value: r.Freq},
		})
	}
	return out
}
