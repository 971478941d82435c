package scanner

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Engine scans files through an in-memory DuckDB instance. One engine is
// shared across all file scans of a catalog build; it is not safe for
// concurrent use.
type Engine struct {
	db     *sql.DB
	logger *slog.Logger
	loaded map[string]bool // duckdb extensions already loaded
}

// NewEngine opens an in-memory DuckDB instance.
// If logger is nil, a discard logger is used.
func NewEngine(logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	return &Engine{db: db, logger: logger, loaded: make(map[string]bool)}, nil
}

// Close releases the DuckDB instance.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

// Scan reads one source (file or table-format directory) and returns its
// columns, exact row count, and optional frequency table.
func (e *Engine) Scan(ctx context.Context, path string, format Format, opts Options) (*Result, error) {
	rel, err := e.relation(ctx, path, format, opts)
	if err != nil {
		return nil, err
	}

	cols, err := e.describe(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema of %s: %w", path, err)
	}

	var rowCount int64
	if err := e.db.QueryRowContext(ctx, "SELECT count(*) FROM "+rel).Scan(&rowCount); err != nil {
		return nil, fmt.Errorf("failed to count rows of %s: %w", path, err)
	}

	res := &Result{Columns: cols, RowCount: rowCount}

	if opts.InferStats {
		if err := e.computeStats(ctx, rel, res.Columns, rowCount); err != nil {
			return nil, err
		}
		if opts.FreqThreshold > 0 {
			if err := e.computeFreq(ctx, rel, res, opts.FreqThreshold); err != nil {
				return nil, err
			}
		}
	}

	e.applyMetadata(ctx, path, format, res)
	return res, nil
}

// relation builds the DuckDB table expression reading the source. The switch
// is exhaustive over Format so adding a format without a reader is a compile
// question, not a runtime surprise.
func (e *Engine) relation(ctx context.Context, path string, format Format, opts Options) (string, error) {
	switch format {
	case FormatCSV:
		encoding := ""
		if opts.Encoding != "" {
			encoding = fmt.Sprintf(", encoding = %s", quoteString(opts.Encoding))
		}
		return fmt.Sprintf("read_csv(%s, sample_size = -1%s)", quoteString(path), encoding), nil
	case FormatExcel:
		if err := e.loadExtension(ctx, "excel", format); err != nil {
			return "", err
		}
		return fmt.Sprintf("read_xlsx(%s)", quoteString(path)), nil
	case FormatParquet:
		return fmt.Sprintf("read_parquet(%s)", quoteString(path)), nil
	case FormatHive:
		glob := filepath.ToSlash(filepath.Join(path, "**", "*.parquet"))
		return fmt.Sprintf("read_parquet(%s, hive_partitioning = true)", quoteString(glob)), nil
	case FormatDelta:
		if err := e.loadExtension(ctx, "delta", format); err != nil {
			return "", err
		}
		return fmt.Sprintf("delta_scan(%s)", quoteString(path)), nil
	case FormatIceberg:
		if err := e.loadExtension(ctx, "iceberg", format); err != nil {
			return "", err
		}
		return fmt.Sprintf("iceberg_scan(%s, allow_moved_paths = true)", quoteString(path)), nil
	case FormatSAS, FormatSPSS, FormatStata:
		return "", &FeatureUnavailableError{
			Format: format,
			Reason: "no statistical-file reader is bundled with this build",
		}
	default:
		return "", &UnsupportedFormatError{Format: format}
	}
}

// UnsupportedFormatError reports a format value the engine has no reader for.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("no scanner for format %q", e.Format)
}

func (e *Engine) describe(ctx context.Context, rel string) ([]Column, error) {
	rows, err := e.db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+rel)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cols []Column
	for rows.Next() {
		var name, dbType string
		var null, key, dflt, extra sql.NullString
		if err := rows.Scan(&name, &dbType, &null, &key, &dflt, &extra); err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: name, Type: NormalizeDuckDBType(dbType)})
	}
	return cols, rows.Err()
}

func (e *Engine) computeStats(ctx context.Context, rel string, cols []Column, rowCount int64) error {
	for i := range cols {
		q := quoteIdent(cols[i].Name)
		var distinct, nonNull int64
		err := e.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT count(DISTINCT %s), count(%s) FROM %s", q, q, rel),
		).Scan(&distinct, &nonNull)
		if err != nil {
			return fmt.Errorf("failed to compute stats for column %q: %w", cols[i].Name, err)
		}
		missing := rowCount - nonNull
		duplicate := rowCount - distinct
		cols[i].NbDistinct = &distinct
		cols[i].NbDuplicate = &duplicate
		cols[i].NbMissing = &missing
	}
	return nil
}

func (e *Engine) computeFreq(ctx context.Context, rel string, res *Result, threshold int) error {
	for _, col := range res.Columns {
		if col.NbDistinct == nil || *col.NbDistinct > int64(threshold) {
			continue
		}
		q := quoteIdent(col.Name)
		rows, err := e.db.QueryContext(ctx, fmt.Sprintf(
			"SELECT CAST(%s AS VARCHAR), count(*) FROM %s GROUP BY 1 ORDER BY 2 DESC, 1",
			q, rel,
		))
		if err != nil {
			return fmt.Errorf("failed to compute frequencies for column %q: %w", col.Name, err)
		}
		for rows.Next() {
			var value sql.NullString
			var freq int64
			if err := rows.Scan(&value, &freq); err != nil {
				_ = rows.Close()
				return err
			}
			row := FreqRow{VariableID: col.Name, Freq: freq}
			if value.Valid {
				v := value.String
				row.Value = &v
			}
			res.Freq = append(res.Freq, row)
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return err
		}
		_ = rows.Close()
	}
	return nil
}

// loadExtension installs and loads a DuckDB extension on first use. A load
// failure surfaces as FeatureUnavailableError so catalogs that never touch
// the format keep working offline.
func (e *Engine) loadExtension(ctx context.Context, name string, format Format) error {
	if e.loaded[name] {
		return nil
	}
	if _, err := e.db.ExecContext(ctx, "INSTALL "+name); err != nil {
		return &FeatureUnavailableError{Format: format, Reason: fmt.Sprintf("duckdb extension %q could not be installed: %v", name, err)}
	}
	if _, err := e.db.ExecContext(ctx, "LOAD "+name); err != nil {
		return &FeatureUnavailableError{Format: format, Reason: fmt.Sprintf("duckdb extension %q could not be loaded: %v", name, err)}
	}
	e.loaded[name] = true
	return nil
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
