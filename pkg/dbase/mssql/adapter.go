// Package mssql provides a SQL Server database adapter backed by
// go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datannur/datannur-go/pkg/dbase"
	"github.com/datannur/datannur-go/pkg/scanner"

	_ "github.com/microsoft/go-mssqldb" // sqlserver driver
)

// Adapter implements dbase.Adapter for SQL Server.
type Adapter struct {
	dbase.SQLAdapter
	cfg dbase.Config
}

// New creates a new SQL Server adapter instance.
func New(logger *slog.Logger) *Adapter {
	a := &Adapter{}
	a.Dialect = dialect{}
	a.Logger = logger
	return a
}

func (a *Adapter) Backend() string { return "mssql" }

// Connect opens the connection described by the DSN.
func (a *Adapter) Connect(ctx context.Context, cfg dbase.Config) error {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return fmt.Errorf("opening sqlserver connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pinging sqlserver: %w", err)
	}
	a.DB = db
	a.cfg = cfg
	return nil
}

// ListSchemas enumerates non-system schemas.
func (a *Adapter) ListSchemas(ctx context.Context) ([]string, error) {
	const q = `
		SELECT name FROM sys.schemas
		ORDER BY name
	`
	rows, err := a.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing sqlserver schemas: %w", err)
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
	return dbase.FilterSystemSchemas("mssql", schemas), nil
}

// ListTables lists base tables in a schema, excluding views.
func (a *Adapter) ListTables(ctx context.Context, schema string) ([]string, error) {
	const q = `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = @p1 AND table_type = 'BASE TABLE'
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
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (d dialect) QualifiedTable(schema, table string) string {
	if schema == "" {
		return d.QuoteIdent(table)
	}
	return d.QuoteIdent(schema) + "." + d.QuoteIdent(table)
}

// SampleClause uses TOP: SQL Server has no LIMIT.
func (dialect) SampleClause(base string, n int) string {
	return strings.Replace(base, "SELECT ", fmt.Sprintf("SELECT TOP %d ", n), 1)
}

func (dialect) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS NVARCHAR(max))", expr)
}

func (d dialect) Columns(ctx context.Context, db *sql.DB, schema, table string) ([]scanner.Column, error) {
	const q = `
		SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = @p1 AND table_name = @p2
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

// normalizeType maps SQL Server type names onto the catalog's type
// vocabulary.
func normalizeType(typ string) string {
	t := strings.ToLower(typ)
	switch {
	case t == "tinyint", t == "smallint", t == "int", t == "bigint":
		return "integer"
	case t == "decimal", t == "numeric", t == "float", t == "real", t == "money", t == "smallmoney":
		return "float"
	case t == "bit":
		return "boolean"
	case strings.HasPrefix(t, "datetime"), t == "smalldatetime":
		return "datetime"
	case t == "date":
		return "date"
	case t == "time":
		return "time"
	case strings.Contains(t, "char"), strings.Contains(t, "text"), t == "uniqueidentifier", t == "xml":
		return "string"
	default:
		return "string"
	}
}
