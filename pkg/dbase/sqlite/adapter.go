// Package sqlite provides a SQLite database adapter backed by the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datannur/datannur-go/pkg/dbase"
	"github.com/datannur/datannur-go/pkg/scanner"

	_ "modernc.org/sqlite" // sqlite driver
)

// Adapter implements dbase.Adapter for SQLite files.
type Adapter struct {
	dbase.SQLAdapter
	cfg dbase.Config
}

// New creates a new SQLite adapter instance.
func New(logger *slog.Logger) *Adapter {
	a := &Adapter{}
	a.Dialect = dialect{}
	a.Logger = logger
	return a
}

func (a *Adapter) Backend() string { return "sqlite" }

// Connect opens the SQLite file at cfg.Path.
func (a *Adapter) Connect(ctx context.Context, cfg dbase.Config) error {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return fmt.Errorf("opening sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pinging sqlite database: %w", err)
	}
	a.DB = db
	a.cfg = cfg
	return nil
}

// ListSchemas returns an empty list: SQLite has no schema dimension the
// catalog needs to traverse.
func (a *Adapter) ListSchemas(ctx context.Context) ([]string, error) {
	return nil, nil
}

// ListTables lists base tables. Views have type 'view' in sqlite_master
// and are excluded, as are SQLite's internal tables.
func (a *Adapter) ListTables(ctx context.Context, schema string) ([]string, error) {
	const q = `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	rows, err := a.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing sqlite tables: %w", err)
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
	return d.QuoteIdent(table)
}

func (dialect) SampleClause(base string, n int) string {
	return fmt.Sprintf("%s LIMIT %d", base, n)
}

func (dialect) CastText(expr string) string {
	return fmt.Sprintf("CAST(%s AS TEXT)", expr)
}

// Columns reads the table's columns from pragma_table_info in declaration
// order.
func (d dialect) Columns(ctx context.Context, db *sql.DB, schema, table string) ([]scanner.Column, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("reading table info: %w", err)
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

// normalizeType maps SQLite's type affinities onto the catalog's type
// vocabulary.
func normalizeType(typ string) string {
	t := strings.ToUpper(typ)
	switch {
	case strings.Contains(t, "INT"):
		return "integer"
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"), strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		return "float"
	case strings.Contains(t, "BOOL"):
		return "boolean"
	case strings.Contains(t, "DATETIME"), strings.Contains(t, "TIMESTAMP"):
		return "datetime"
	case strings.Contains(t, "DATE"):
		return "date"
	case strings.Contains(t, "TIME"):
		return "time"
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return "string"
	case t == "":
		return "unknown"
	default:
		return "string"
	}
}
