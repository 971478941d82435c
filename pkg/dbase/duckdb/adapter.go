// Package duckdb provides a DuckDB database adapter.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datannur/datannur-go/pkg/dbase"
	"github.com/datannur/datannur-go/pkg/scanner"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements dbase.Adapter for DuckDB files.
type Adapter struct {
	dbase.SQLAdapter
	cfg dbase.Config
}

// New creates a new DuckDB adapter instance.
func New(logger *slog.Logger) *Adapter {
	a := &Adapter{}
	a.Dialect = dialect{}
	a.Logger = logger
	return a
}

func (a *Adapter) Backend() string { return "duckdb" }

// Connect opens the DuckDB file at cfg.Path. An empty path opens an
// in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg dbase.Config) error {
	db, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return fmt.Errorf("opening duckdb database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pinging duckdb: %w", err)
	}
	a.DB = db
	a.cfg = cfg
	return nil
}

// ListSchemas enumerates the database's non-system schemas.
func (a *Adapter) ListSchemas(ctx context.Context) ([]string, error) {
	const q = `
		SELECT schema_name FROM information_schema.schemata
		WHERE catalog_name = current_database()
		ORDER BY schema_name
	`
	rows, err := a.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing duckdb schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning schema name: %w", err)
		}
		schemas = append(schemas, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dbase.FilterSystemSchemas("duckdb", schemas), nil
}

// ListTables lists base tables in a schema, excluding views.
func (a *Adapter) ListTables(ctx context.Context, schema string) ([]string, error) {
	const q = `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := a.DB.QueryContext(ctx, q, schema)
	if err != nil {
		return nil, fmt.Errorf("listing tables in schema %s: %w", schema, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

type dialect struct{}

func (dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d dialect) QualifiedTable(schema, table string) string {
	if schema == "" {
		return d.QuoteIdent(table)
	}
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(table)
}

func (dialect) SampleClause(base string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", base, n)
}

func (dialect) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS VARCHAR)", expr)
}

func (d dialect) Columns(ctx context.Context, db *sql.DB, schema, table string) ([]scanner.Column, error) {
	const q = `
		SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`
	rows, err := db.QueryContext(ctx, q, schema, table)
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s.%s: %w", schema, table, err)
	}
	defer rows.Close()

	var cols []scanner.Column
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("scanning column info: %w", err)
		}
		cols = append(cols, scanner.Column{Name: name, Type: scanner.NormalizeDuckDBType(typ)})
	}
	return cols, rows.Err()
}
