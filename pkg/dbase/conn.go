package dbase

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Config describes how to reach a database. Exactly one of Path or DSN is
// set depending on the backend: file-backed engines use Path, servers use
// the full DSN.
type Config struct {
	Backend string
	Path    string
	DSN     string
}

// DatabaseName derives the display name used for the root folder: the file
// stem for file-backed engines, the database component of the DSN for
// servers.
func (c Config) DatabaseName() string {
	if c.Path != "" {
		base := filepath.Base(c.Path)
		if ext := filepath.Ext(base); ext != "" {
			base = strings.TrimSuffix(base, ext)
		}
		return base
	}
	// postgres://user@host:5432/mydb?sslmode=disable
	rest := c.DSN
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndexByte(rest, '/'); i >= 0 && i+1 < len(rest) {
		return rest[i+1:]
	}
	return c.Backend
}

// supportedSchemes is the accepted connection-string vocabulary, kept in the
// error message so a typo'd scheme is self-diagnosing.
var supportedSchemes = []string{
	"sqlite", "sqlite3", "duckdb", "postgres", "postgresql", "sqlserver", "mssql",
}

// UnsupportedSchemeError is returned for connection strings whose scheme no
// adapter handles.
type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported connection scheme %q (supported: %s, or a bare .db/.sqlite/.duckdb file path)",
		e.Scheme, strings.Join(supportedSchemes, ", "))
}

// ParseConnString maps a connection string to an adapter Config.
//
//	sqlite:///rel/path.db      -> sqlite, relative path
//	sqlite:////abs/path.db     -> sqlite, absolute path
//	duckdb:///warehouse.duckdb -> duckdb file
//	postgres://... / postgresql://... -> pgx DSN, passed through
//	mssql://... / sqlserver://...     -> go-mssqldb DSN (sqlserver scheme)
//
// A bare file path is classified by extension.
func ParseConnString(conn string) (Config, error) {
	scheme, rest, ok := splitScheme(conn)
	if !ok {
		return configFromPath(conn)
	}
	switch scheme {
	case "sqlite", "sqlite3":
		return Config{Backend: "sqlite", Path: filePart(rest)}, nil
	case "duckdb":
		return Config{Backend: "duckdb", Path: filePart(rest)}, nil
	case "postgres", "postgresql":
		return Config{Backend: "postgres", DSN: conn}, nil
	case "sqlserver":
		return Config{Backend: "mssql", DSN: conn}, nil
	case "mssql":
		// go-mssqldb wants the sqlserver:// scheme.
		return Config{Backend: "mssql", DSN: "sqlserver://" + rest}, nil
	default:
		return Config{}, &UnsupportedSchemeError{Scheme: scheme}
	}
}

func splitScheme(conn string) (scheme, rest string, ok bool) {
	i := strings.Index(conn, "://")
	if i <= 0 {
		return "", "", false
	}
	scheme = strings.ToLower(conn[:i])
	for _, r := range scheme {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '+' && r != '-' && r != '.' {
			return "", "", false
		}
	}
	return scheme, conn[i+3:], true
}

// filePart turns the authority+path part of a file URL into a filesystem
// path: an empty authority followed by "/abs" keeps the leading slash,
// otherwise the path is relative.
func filePart(rest string) string {
	if strings.HasPrefix(rest, "/") {
		return strings.TrimPrefix(rest, "/")
	}
	return rest
}

func configFromPath(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return Config{Backend: "sqlite", Path: path}, nil
	case ".duckdb", ".ddb":
		return Config{Backend: "duckdb", Path: path}, nil
	}
	return Config{}, &UnsupportedSchemeError{Scheme: path}
}
