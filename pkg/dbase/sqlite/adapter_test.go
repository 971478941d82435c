package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datannur/datannur-go/internal/testutil"
	"github.com/datannur/datannur-go/pkg/dbase"
)

func newFixture(t *testing.T, statements ...string) *Adapter {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	require.NoError(t, db.Close())

	a := New(testutil.NewTestLoggerAt(t, slog.LevelWarn))
	require.NoError(t, a.Connect(context.Background(), dbase.Config{Backend: "sqlite", Path: path}))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestListTables_ExcludesViews(t *testing.T) {
	a := newFixture(t,
		`CREATE TABLE employees (name TEXT)`,
		`CREATE TABLE orders (id INTEGER)`,
		`CREATE VIEW employee_names AS SELECT name FROM employees`,
	)

	tables, err := a.ListTables(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"employees", "orders"}, tables)
}

func TestListSchemas_Empty(t *testing.T) {
	a := newFixture(t, `CREATE TABLE t (x INTEGER)`)

	schemas, err := a.ListSchemas(context.Background())
	require.NoError(t, err)
	assert.Empty(t, schemas)
}

func TestRowCount(t *testing.T) {
	a := newFixture(t,
		`CREATE TABLE t (x INTEGER)`,
		`INSERT INTO t VALUES (1),(2),(3)`,
	)

	n, err := a.RowCount(context.Background(), "", "t")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestScanTable(t *testing.T) {
	a := newFixture(t,
		`CREATE TABLE people (name TEXT, age INTEGER, city TEXT)`,
		`INSERT INTO people VALUES ('Alice',30,'Paris'),('Bob',25,'Paris'),('Carol',NULL,'Lyon')`,
	)

	res, err := a.ScanTable(context.Background(), "", "people", dbase.ScanOptions{
		InferStats:    true,
		FreqThreshold: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.RowCount)
	require.Len(t, res.Columns, 3)
	assert.Equal(t, "name", res.Columns[0].Name)
	assert.Equal(t, "string", res.Columns[0].Type)
	assert.Equal(t, "integer", res.Columns[1].Type)

	age := res.Columns[1]
	require.NotNil(t, age.NbMissing)
	assert.Equal(t, int64(1), *age.NbMissing)
	require.NotNil(t, age.NbDistinct)
	assert.Equal(t, int64(2), *age.NbDistinct)
	// NULL rows count as duplicates, same as the file scanners.
	require.NotNil(t, age.NbDuplicate)
	assert.Equal(t, int64(1), *age.NbDuplicate)

	city := res.Columns[2]
	require.NotNil(t, city.NbDuplicate)
	assert.Equal(t, int64(1), *city.NbDuplicate)

	// Frequency rows use the column name as provisional variable ID.
	counts := make(map[string]int64)
	for _, row := range res.Freq {
		if row.VariableID != "city" || row.Value == nil {
			continue
		}
		counts[*row.Value] = row.Freq
	}
	assert.Equal(t, int64(2), counts["Paris"])
	assert.Equal(t, int64(1), counts["Lyon"])
}

func TestScanTable_SampleSize(t *testing.T) {
	a := newFixture(t,
		`CREATE TABLE numbers (n INTEGER)`,
		`INSERT INTO numbers VALUES (1),(2),(3),(4),(5)`,
	)

	res, err := a.ScanTable(context.Background(), "", "numbers", dbase.ScanOptions{
		InferStats:    true,
		FreqThreshold: 100,
		SampleSize:    2,
	})
	require.NoError(t, err)

	// The count is exact even when stats run on a sample.
	assert.Equal(t, int64(5), res.RowCount)
	require.NotNil(t, res.Columns[0].NbDistinct)
	assert.LessOrEqual(t, *res.Columns[0].NbDistinct, int64(2))

	// Frequency tables run on the same sample as the statistics.
	var total int64
	for _, row := range res.Freq {
		total += row.Freq
	}
	assert.Equal(t, int64(2), total)
}

func TestScanTable_NoStats(t *testing.T) {
	a := newFixture(t,
		`CREATE TABLE t (x INTEGER)`,
		`INSERT INTO t VALUES (1)`,
	)

	res, err := a.ScanTable(context.Background(), "", "t", dbase.ScanOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.RowCount)
	assert.Nil(t, res.Columns[0].NbDistinct)
	assert.Empty(t, res.Freq)
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		sqliteType string
		want       string
	}{
		{sqliteType: "INTEGER", want: "integer"},
		{sqliteType: "BIGINT", want: "integer"},
		{sqliteType: "REAL", want: "float"},
		{sqliteType: "NUMERIC(10,2)", want: "float"},
		{sqliteType: "BOOLEAN", want: "boolean"},
		{sqliteType: "TEXT", want: "string"},
		{sqliteType: "VARCHAR(50)", want: "string"},
		{sqliteType: "DATE", want: "date"},
		{sqliteType: "DATETIME", want: "datetime"},
		{sqliteType: "", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.sqliteType, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeType(tt.sqliteType))
		})
	}
}
