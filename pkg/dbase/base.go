package dbase

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datannur/datannur-go/pkg/scanner"
)

// Dialect captures the per-backend SQL deltas so every adapter shares one
// scan implementation.
type Dialect interface {
	// QuoteIdent quotes an identifier for use in a statement.
	QuoteIdent(name string) string

	// QualifiedTable renders the schema-qualified table reference. schema
	// may be empty for backends without schemas.
	QualifiedTable(schema, table string) string

	// SampleClause wraps a base query so it reads at most n rows.
	SampleClause(base string, n int) string

	// Columns returns the table's columns in declaration order.
	Columns(ctx context.Context, db *sql.DB, schema, table string) ([]scanner.Column, error)

	// CastText renders a cast of a column expression to the backend's
	// text type, for frequency grouping.
	CastText(expr string) string
}

// SQLAdapter implements the scan half of Adapter on top of database/sql
// and a Dialect. Backends embed it and add connection management plus the
// catalog queries (schemas, tables).
type SQLAdapter struct {
	DB      *sql.DB
	Dialect Dialect
	Logger  *slog.Logger
}

func (a *SQLAdapter) Close() error {
	if a.DB == nil {
		return nil
	}
	err := a.DB.Close()
	a.DB = nil
	return err
}

// RowCount returns the exact row count of the full table, regardless of
// any sampling applied to statistics.
func (a *SQLAdapter) RowCount(ctx context.Context, schema, table string) (int64, error) {
	q := fmt.Sprintf("SELECT count(*) FROM %s", a.Dialect.QualifiedTable(schema, table))
	var n int64
	if err := a.DB.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting rows of %s: %w", table, err)
	}
	return n, nil
}

// ScanTable reads columns, per-column statistics, and the frequency table.
// Statistics and frequency tables honor opts.SampleSize; only RowCount is
// always exact.
func (a *SQLAdapter) ScanTable(ctx context.Context, schema, table string, opts ScanOptions) (*scanner.Result, error) {
	cols, err := a.Dialect.Columns(ctx, a.DB, schema, table)
	if err != nil {
		return nil, fmt.Errorf("describing %s: %w", table, err)
	}
	res := &scanner.Result{Columns: cols}

	res.RowCount, err = a.RowCount(ctx, schema, table)
	if err != nil {
		return nil, err
	}

	if opts.InferStats {
		if err := a.computeStats(ctx, schema, table, res, opts.SampleSize); err != nil {
			return nil, err
		}
		if opts.FreqThreshold > 0 {
			if err := a.computeFreq(ctx, schema, table, res, opts.FreqThreshold, opts.SampleSize); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

func (a *SQLAdapter) computeStats(ctx context.Context, schema, table string, res *scanner.Result, sampleSize int) error {
	ref := a.Dialect.QualifiedTable(schema, table)
	for i := range res.Columns {
		col := &res.Columns[i]
		ident := a.Dialect.QuoteIdent(col.Name)
		base := fmt.Sprintf("SELECT %s FROM %s", ident, ref)
		if sampleSize > 0 {
			base = a.Dialect.SampleClause(base, sampleSize)
		}
		q := fmt.Sprintf("SELECT count(DISTINCT t.%s), count(t.%s), count(*) FROM (%s) AS t", ident, ident, base)
		var distinct, nonNull, total int64
		if err := a.DB.QueryRowContext(ctx, q).Scan(&distinct, &nonNull, &total); err != nil {
			if isAggregateQuirk(err) {
				a.Logger.Warn("stats unavailable for column",
					"table", table, "column", col.Name, "error", err)
				continue
			}
			return fmt.Errorf("column stats for %s.%s: %w", table, col.Name, err)
		}
		duplicate := total - distinct
		missing := total - nonNull
		col.NbDistinct = &distinct
		col.NbDuplicate = &duplicate
		col.NbMissing = &missing
	}
	return nil
}

// isAggregateQuirk reports whether a column-stats failure is the known class
// of non-aggregatable column types: postgres types without an equality
// operator (json, point), SQL Server text/ntext/image. Those columns keep
// nil counts; any other failure aborts the table scan.
func isAggregateQuirk(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not identify an equality operator") ||
		strings.Contains(msg, "cannot be compared") ||
		strings.Contains(msg, "is not comparable")
}

func (a *SQLAdapter) computeFreq(ctx context.Context, schema, table string, res *scanner.Result, threshold, sampleSize int) error {
	ref := a.Dialect.QualifiedTable(schema, table)
	for i := range res.Columns {
		col := &res.Columns[i]
		if col.NbDistinct == nil || *col.NbDistinct > int64(threshold) {
			continue
		}
		ident := a.Dialect.QuoteIdent(col.Name)
		base := fmt.Sprintf("SELECT %s FROM %s", ident, ref)
		if sampleSize > 0 {
			base = a.Dialect.SampleClause(base, sampleSize)
		}
		cast := a.Dialect.CastText("t." + ident)
		q := fmt.Sprintf(
			"SELECT %s AS value, count(*) AS freq FROM (%s) AS t GROUP BY %s ORDER BY freq DESC, value",
			cast, base, cast,
		)
		rows, err := a.DB.QueryContext(ctx, q)
		if err != nil {
			return fmt.Errorf("frequency table for %s.%s: %w", table, col.Name, err)
		}
		for rows.Next() {
			var value sql.NullString
			var freq int64
			if err := rows.Scan(&value, &freq); err != nil {
				rows.Close()
				return fmt.Errorf("frequency row for %s.%s: %w", table, col.Name, err)
			}
			row := scanner.FreqRow{VariableID: col.Name, Freq: freq}
			if value.Valid {
				v := value.String
				row.Value = &v
			}
			res.Freq = append(res.Freq, row)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("frequency table for %s.%s: %w", table, col.Name, err)
		}
		rows.Close()
	}
	return nil
}
