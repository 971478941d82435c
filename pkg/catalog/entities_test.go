package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMarshalJSON(t *testing.T) {
	rec := Record{
		{Name: "id", Value: "a"},
		{Name: "missing", Value: nil},
		{Name: "nb_row", Value: int64(3)},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	// Field order is preserved and nil fields are omitted.
	assert.Equal(t, `{"id":"a","nb_row":3}`, string(data))
}

func TestFolderRecord(t *testing.T) {
	f := &Folder{ID: "src", Name: "Source", Type: "filesystem"}

	data, err := json.Marshal(f.Record())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "src", m["id"])
	assert.Equal(t, "Source", m["name"])
	// Empty optional fields disappear from the output.
	assert.NotContains(t, m, "parent_id")
	assert.NotContains(t, m, "description")
}

func TestVariableRecord(t *testing.T) {
	distinct := int64(4)
	v := &Variable{
		ID:          "ds---color",
		Name:        "color",
		DatasetID:   "ds",
		Type:        "string",
		NbDistinct:  &distinct,
		ModalityIDs: []string{"m1", "m2"},
	}

	data, err := json.Marshal(v.Record())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "ds---color", m["id"])
	assert.Equal(t, float64(4), m["nb_distinct"])
	// Modalities export as one comma-joined string.
	assert.Equal(t, "m1,m2", m["modality_ids"])
	assert.NotContains(t, m, "nb_missing")
}

func TestDatasetRecordIncludesZeroRowCount(t *testing.T) {
	d := &Dataset{ID: "ds", Name: "ds", NbRow: 0}

	data, err := json.Marshal(d.Record())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	// A failed or empty scan still reports an explicit zero.
	assert.Equal(t, float64(0), m["nb_row"])
}
