package dbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnString(t *testing.T) {
	tests := []struct {
		name string
		conn string
		want Config
	}{
		{
			name: "sqlite relative",
			conn: "sqlite:///data/company.db",
			want: Config{Backend: "sqlite", Path: "data/company.db"},
		},
		{
			name: "sqlite absolute",
			conn: "sqlite:////tmp/company.db",
			want: Config{Backend: "sqlite", Path: "/tmp/company.db"},
		},
		{
			name: "sqlite3 alias",
			conn: "sqlite3:///x.db",
			want: Config{Backend: "sqlite", Path: "x.db"},
		},
		{
			name: "duckdb file",
			conn: "duckdb:///warehouse.duckdb",
			want: Config{Backend: "duckdb", Path: "warehouse.duckdb"},
		},
		{
			name: "postgres DSN passes through",
			conn: "postgres://user:pw@localhost:5432/mydb?sslmode=disable",
			want: Config{Backend: "postgres", DSN: "postgres://user:pw@localhost:5432/mydb?sslmode=disable"},
		},
		{
			name: "postgresql alias",
			conn: "postgresql://user@host/db",
			want: Config{Backend: "postgres", DSN: "postgresql://user@host/db"},
		},
		{
			name: "sqlserver DSN passes through",
			conn: "sqlserver://sa:pw@localhost?database=master",
			want: Config{Backend: "mssql", DSN: "sqlserver://sa:pw@localhost?database=master"},
		},
		{
			name: "mssql scheme rewritten for the driver",
			conn: "mssql://sa:pw@localhost?database=master",
			want: Config{Backend: "mssql", DSN: "sqlserver://sa:pw@localhost?database=master"},
		},
		{
			name: "bare sqlite path",
			conn: "company.db",
			want: Config{Backend: "sqlite", Path: "company.db"},
		},
		{
			name: "bare duckdb path",
			conn: "/data/warehouse.duckdb",
			want: Config{Backend: "duckdb", Path: "/data/warehouse.duckdb"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConnString(tt.conn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConnString_UnsupportedScheme(t *testing.T) {
	_, err := ParseConnString("mongodb://localhost/db")
	var unsupported *UnsupportedSchemeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "mongodb", unsupported.Scheme)
	// The message lists every scheme that would have worked.
	for _, scheme := range supportedSchemes {
		assert.Contains(t, err.Error(), scheme)
	}

	_, err = ParseConnString("notes.txt")
	assert.ErrorAs(t, err, &unsupported)
}

func TestConfigDatabaseName(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "file stem",
			cfg:  Config{Backend: "sqlite", Path: "/data/company.db"},
			want: "company",
		},
		{
			name: "DSN database component",
			cfg:  Config{Backend: "postgres", DSN: "postgres://user@host:5432/mydb?sslmode=disable"},
			want: "mydb",
		},
		{
			name: "DSN without database falls back to backend",
			cfg:  Config{Backend: "postgres", DSN: "postgres://user@host:5432/"},
			want: "postgres",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DatabaseName())
		})
	}
}
