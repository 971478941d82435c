package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datannur/datannur-go/internal/testutil"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEngineScan_CSVWithStats(t *testing.T) {
	path := writeCSV(t, "name,age\nAlice,30\nBob,25\nAlice,30\n")

	eng := newTestEngine(t)
	res, err := eng.Scan(context.Background(), path, FormatCSV, Options{
		InferStats:    true,
		FreqThreshold: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.RowCount)
	require.Len(t, res.Columns, 2)

	name := res.Columns[0]
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, "string", name.Type)
	require.NotNil(t, name.NbDistinct)
	assert.Equal(t, int64(2), *name.NbDistinct)
	require.NotNil(t, name.NbDuplicate)
	assert.Equal(t, int64(1), *name.NbDuplicate)
	require.NotNil(t, name.NbMissing)
	assert.Equal(t, int64(0), *name.NbMissing)

	age := res.Columns[1]
	assert.Equal(t, "integer", age.Type)
}

func TestEngineScan_MissingValues(t *testing.T) {
	path := writeCSV(t, "a,b\n1,x\n2,\n3,y\n")

	eng := newTestEngine(t)
	res, err := eng.Scan(context.Background(), path, FormatCSV, Options{
		InferStats:    true,
		FreqThreshold: 100,
	})
	require.NoError(t, err)

	b := res.Columns[1]
	require.NotNil(t, b.NbMissing)
	assert.Equal(t, int64(1), *b.NbMissing)
}

func TestEngineScan_FreqRows(t *testing.T) {
	path := writeCSV(t, "color\nred\nred\nblue\n")

	eng := newTestEngine(t)
	res, err := eng.Scan(context.Background(), path, FormatCSV, Options{
		InferStats:    true,
		FreqThreshold: 100,
	})
	require.NoError(t, err)

	require.NotEmpty(t, res.Freq)
	counts := make(map[string]int64)
	for _, row := range res.Freq {
		// Provisional IDs are bare column names until final assignment.
		assert.Equal(t, "color", row.VariableID)
		require.NotNil(t, row.Value)
		counts[*row.Value] = row.Freq
	}
	assert.Equal(t, int64(2), counts["red"])
	assert.Equal(t, int64(1), counts["blue"])
}

func TestEngineScan_FreqThresholdFiltersColumns(t *testing.T) {
	path := writeCSV(t, "a,b\n1,x\n2,y\n3,z\n")

	eng := newTestEngine(t)
	res, err := eng.Scan(context.Background(), path, FormatCSV, Options{
		InferStats:    true,
		FreqThreshold: 2,
	})
	require.NoError(t, err)

	// Both columns exceed the threshold, so no frequency rows at all.
	assert.Empty(t, res.Freq)
}

func TestEngineScan_NoStats(t *testing.T) {
	path := writeCSV(t, "x\n1\n2\n")

	eng := newTestEngine(t)
	res, err := eng.Scan(context.Background(), path, FormatCSV, Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.RowCount)
	require.Len(t, res.Columns, 1)
	assert.Nil(t, res.Columns[0].NbDistinct)
	assert.Empty(t, res.Freq)
}

func TestEngineScan_UnreadableSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.parquet")
	require.NoError(t, os.WriteFile(path, []byte("not parquet"), 0o644))

	eng := newTestEngine(t)
	_, err := eng.Scan(context.Background(), path, FormatParquet, Options{})
	assert.Error(t, err)
}
