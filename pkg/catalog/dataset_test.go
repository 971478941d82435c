package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDataset_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "employees.csv")
	writeFile(t, path, "name,age\nAlice,30\nBob,25\n")

	c := newTestCatalog(t)
	err := c.AddDataset(context.Background(), path, DatasetOptions{
		Folder: &Folder{ID: "test", Name: "Test"},
	})
	require.NoError(t, err)

	require.Len(t, c.Datasets, 1)
	ds := c.Datasets[0]
	// Standalone datasets are named by stem, not full filename.
	assert.Equal(t, "test---employees", ds.ID)
	assert.Equal(t, "employees", ds.Name)
	assert.Equal(t, "test", ds.FolderID)
	assert.Equal(t, "csv", ds.DeliveryFormat)
	assert.Equal(t, int64(2), ds.NbRow)
	assert.Len(t, c.Variables, 2)
}

func TestAddDataset_NoFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solo.csv")
	writeFile(t, path, "x\n1\n")

	c := newTestCatalog(t)
	require.NoError(t, c.AddDataset(context.Background(), path, DatasetOptions{}))

	require.Len(t, c.Datasets, 1)
	assert.Equal(t, "solo", c.Datasets[0].ID)
	assert.Empty(t, c.Datasets[0].FolderID)
	assert.Empty(t, c.Folders)
}

func TestAddDataset_ExplicitMetadataWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	writeFile(t, path, "x\n1\n")

	c := newTestCatalog(t)
	require.NoError(t, c.AddDataset(context.Background(), path, DatasetOptions{
		ID:          "custom_id",
		Name:        "Custom Name",
		Description: "hand-written",
		OwnerID:     "owner1",
		TagIDs:      []string{"t1", "t2"},
	}))

	ds := c.Datasets[0]
	assert.Equal(t, "custom_id", ds.ID)
	assert.Equal(t, "Custom Name", ds.Name)
	assert.Equal(t, "hand-written", ds.Description)
	assert.Equal(t, "owner1", ds.OwnerID)
	assert.Equal(t, []string{"t1", "t2"}, ds.TagIDs)
}

func TestAddDataset_FolderReuse(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	writeFile(t, a, "x\n1\n")
	writeFile(t, b, "y\n2\n")

	c := newTestCatalog(t)
	require.NoError(t, c.AddDataset(context.Background(), a, DatasetOptions{
		Folder: &Folder{ID: "shared", Name: "Shared"},
	}))
	require.NoError(t, c.AddDataset(context.Background(), b, DatasetOptions{
		Folder: &Folder{ID: "shared", Name: "Shared"},
	}))

	// The second call reuses the registered folder instead of duplicating it.
	assert.Len(t, c.Folders, 1)
	assert.Len(t, c.Datasets, 2)
}

func TestAddDataset_AmbiguousFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.csv")
	writeFile(t, path, "x\n1\n")

	c := newTestCatalog(t)
	err := c.AddDataset(context.Background(), path, DatasetOptions{
		Folder:   &Folder{ID: "f1", Name: "F1"},
		FolderID: "f2",
	})
	assert.ErrorIs(t, err, ErrAmbiguousFolder)
}

func TestAddDataset_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, "plain text")

	c := newTestCatalog(t)
	err := c.AddDataset(context.Background(), path, DatasetOptions{})

	var unsupported *UnsupportedFormatError
	assert.ErrorAs(t, err, &unsupported)
}

func TestAddDataset_UnknownDirFormat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "random.txt"), "x")

	c := newTestCatalog(t)
	err := c.AddDataset(context.Background(), dir, DatasetOptions{})

	var unknown *UnknownDirFormatError
	assert.ErrorAs(t, err, &unknown)
}

func TestAddDataset_NotFound(t *testing.T) {
	c := newTestCatalog(t)
	err := c.AddDataset(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), DatasetOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddDataset_ScanFailurePropagates(t *testing.T) {
	// Unlike folder walks, a single-dataset scan is an explicit request:
	// unreadable source data is the caller's problem.
	path := filepath.Join(t.TempDir(), "broken.parquet")
	writeFile(t, path, "this is not parquet")

	c := newTestCatalog(t)
	err := c.AddDataset(context.Background(), path, DatasetOptions{})
	assert.Error(t, err)
}
