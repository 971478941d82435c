// Package postgres provides a PostgreSQL database adapter backed by the
// pgx driver through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datannur/datannur-go/pkg/dbase"
	"github.com/datannur/datannur-go/pkg/scanner"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// Adapter implements dbase.Adapter for PostgreSQL.
type Adapter struct {
	dbase.SQLAdapter
	cfg dbase.Config
}

// New creates a new PostgreSQL adapter instance.
func New(logger *slog.Logger) *Adapter {
	a := &Adapter{}
	a.Dialect = dialect{}
	a.Logger = logger
	return a
}

func (a *Adapter) Backend() string { return "postgres" }

// Connect opens the connection described by the DSN.
func (a *Adapter) Connect(ctx context.Context, cfg dbase.Config) error {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pinging postgres: %w", err)
	}
	a.DB = db
	a.cfg = cfg
	return nil
}

// ListSchemas enumerates non-system schemas.
func (a *Adapter) ListSchemas(ctx context.Context) ([]string, error) {
	const q = `
		SELECT schema_name FROM information_schema.schemata
		ORDER BY schema_name
	`
	rows, err := a.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing postgres schemas: %w", err)
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
	return dbase.FilterSystemSchemas("postgres", schemas), nil
}

// ListTables lists base tables in a schema. information_schema.tables
// marks views with table_type 'VIEW'; only 'BASE TABLE' rows survive.
func (a *Adapter) ListTables(ctx context.Context, schema string) ([]string, error) {
	const q = `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
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
	return fmt.Sprintf("CAST(%s AS TEXT)", expr)
}

func (d dialect) Columns(ctx context.Context, db *sql.DB, schema, table string) ([]scanner.Column, error) {
	const q = `
		SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
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
		cols = append(cols, scanner.Column{Name: name, Type: normalizeType(typ)})
	}
	return cols, rows.Err()
}

// normalizeType maps PostgreSQL type names onto the catalog's type
// vocabulary.
func normalizeType(typ string) string {
	t := strings.ToLower(typ)
	switch {
	case strings.HasPrefix(t, "smallint"), strings.HasPrefix(t, "integer"), strings.HasPrefix(t, "bigint"), t == "serial", t == "bigserial":
		return "integer"
	case strings.HasPrefix(t, "numeric"), strings.HasPrefix(t, "decimal"), strings.HasPrefix(t, "real"), strings.HasPrefix(t, "double"), t == "money":
		return "float"
	case t == "boolean":
		return "boolean"
	case strings.HasPrefix(t, "timestamp"):
		return "datetime"
	case t == "date":
		return "date"
	case strings.HasPrefix(t, "time"):
		return "time"
	case strings.HasPrefix(t, "interval"):
		return "duration"
	case strings.HasPrefix(t, "character"), t == "text", t == "uuid", t == "name":
		return "string"
	default:
		return "string"
	}
}
