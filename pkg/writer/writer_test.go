package writer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datannur/datannur-go/pkg/catalog"
	"github.com/datannur/datannur-go/pkg/scanner"
)

// sampleCatalog builds a small catalog by hand, no scan engine involved.
func sampleCatalog() *catalog.Catalog {
	distinct := int64(2)
	red := "red"
	blue := "blue"

	c := catalog.New()
	c.Folders = []*catalog.Folder{
		{ID: "src", Name: "Source", Type: "filesystem"},
	}
	c.Datasets = []*catalog.Dataset{
		{ID: "src---colors_csv", Name: "colors", FolderID: "src", DeliveryFormat: "csv", NbRow: 3},
	}
	c.Variables = []*catalog.Variable{
		{
			ID:          "src---colors_csv---color",
			Name:        "color",
			DatasetID:   "src---colors_csv",
			Type:        "string",
			NbDistinct:  &distinct,
			ModalityIDs: []string{"_modalities---mod_abc"},
		},
	}
	c.Modalities = []*catalog.Modality{
		{ID: "_modalities---mod_abc", FolderID: "_modalities", Name: "blue, red"},
	}
	c.Values = []*catalog.Value{
		{ModalityID: "_modalities---mod_abc", Value: "blue"},
		{ModalityID: "_modalities---mod_abc", Value: "red"},
	}
	c.Freq = []scanner.FreqRow{
		{VariableID: "src---colors_csv---color", Value: &red, Freq: 2},
		{VariableID: "src---colors_csv---color", Value: &blue, Freq: 1},
	}
	return c
}

func readJSON(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestExportDB_CreatesFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ExportDB(sampleCatalog(), dir, Options{}))

	for _, name := range []string{"folder", "dataset", "variable", "modality", "value", "freq", "__table__"} {
		assert.FileExists(t, filepath.Join(dir, name+".json"), name)
		assert.FileExists(t, filepath.Join(dir, name+".json.js"), name)
	}
}

func TestExportDB_Content(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ExportDB(sampleCatalog(), dir, Options{}))

	datasets := readJSON(t, filepath.Join(dir, "dataset.json"))
	require.Len(t, datasets, 1)
	assert.Equal(t, "src---colors_csv", datasets[0]["id"])
	assert.Equal(t, "src", datasets[0]["folder_id"])
	assert.Equal(t, float64(3), datasets[0]["nb_row"])

	variables := readJSON(t, filepath.Join(dir, "variable.json"))
	require.Len(t, variables, 1)
	assert.Equal(t, "_modalities---mod_abc", variables[0]["modality_ids"])

	freq := readJSON(t, filepath.Join(dir, "freq.json"))
	require.Len(t, freq, 2)
	assert.Equal(t, "src---colors_csv---color", freq[0]["variable_id"])
	assert.Equal(t, "red", freq[0]["value"])
	assert.Equal(t, float64(2), freq[0]["freq"])
}

func TestExportDB_JSONJSFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ExportDB(sampleCatalog(), dir, Options{}))

	content, err := os.ReadFile(filepath.Join(dir, "variable.json.js"))
	require.NoError(t, err)

	text := string(content)
	require.True(t, strings.HasPrefix(text, "jsonjs.data['variable'] = "), "got %q", text)

	var rows [][]any
	raw := strings.TrimPrefix(text, "jsonjs.data['variable'] = ")
	require.NoError(t, json.Unmarshal([]byte(raw), &rows))

	// Header row first, then one row per variable.
	require.Len(t, rows, 2)
	header := rows[0]
	assert.Contains(t, header, "id")
	assert.Contains(t, header, "name")
}

func TestExportDB_SkipJS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ExportDB(sampleCatalog(), dir, Options{SkipJS: true}))

	assert.FileExists(t, filepath.Join(dir, "variable.json"))
	assert.NoFileExists(t, filepath.Join(dir, "variable.json.js"))
	assert.NoFileExists(t, filepath.Join(dir, "__table__.json.js"))
}

func TestExportDB_NoFreqFileWithoutRows(t *testing.T) {
	dir := t.TempDir()
	c := sampleCatalog()
	c.Freq = nil

	require.NoError(t, ExportDB(c, dir, Options{}))
	assert.NoFileExists(t, filepath.Join(dir, "freq.json"))
}

func TestExportDB_EmptyCollectionStillWritesJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ExportDB(catalog.New(), dir, Options{}))

	data, err := os.ReadFile(filepath.Join(dir, "modality.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))

	// Empty collections get no .json.js companion.
	assert.NoFileExists(t, filepath.Join(dir, "modality.json.js"))
}

func TestExportDB_TableRegistry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ExportDB(sampleCatalog(), dir, Options{}))

	registry := readJSON(t, filepath.Join(dir, "__table__.json"))
	names := make([]string, 0, len(registry))
	for _, entry := range registry {
		names = append(names, entry["name"].(string))
		assert.Contains(t, entry, "last_modif")
	}
	assert.Contains(t, names, "folder")
	assert.Contains(t, names, "dataset")
	assert.Contains(t, names, "variable")
	assert.Contains(t, names, "freq")
	assert.Contains(t, names, "__table__")
}

func TestExportDB_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "path")
	require.NoError(t, ExportDB(sampleCatalog(), dir, Options{}))
	assert.FileExists(t, filepath.Join(dir, "folder.json"))
}

func TestExportApp(t *testing.T) {
	appDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(appDir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "assets", "app.js"), []byte("// app"), 0o644))

	out := t.TempDir()
	require.NoError(t, ExportApp(sampleCatalog(), out, appDir, Options{}))

	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "assets", "app.js"))
	assert.FileExists(t, filepath.Join(out, "data", "db", "folder.json"))
	assert.FileExists(t, filepath.Join(out, "data", "db", "__table__.json"))
}

func TestExportApp_ClearsExistingDB(t *testing.T) {
	appDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "index.html"), []byte("x"), 0o644))

	out := t.TempDir()
	require.NoError(t, ExportApp(sampleCatalog(), out, appDir, Options{}))

	stale := filepath.Join(out, "data", "db", "old_data.json")
	require.NoError(t, os.WriteFile(stale, []byte("[]"), 0o644))

	require.NoError(t, ExportApp(sampleCatalog(), out, appDir, Options{}))
	assert.NoFileExists(t, stale)
}

func TestExportApp_MissingApp(t *testing.T) {
	err := ExportApp(sampleCatalog(), t.TempDir(), filepath.Join(t.TempDir(), "nope"), Options{})
	assert.ErrorIs(t, err, ErrAppNotFound)
}
