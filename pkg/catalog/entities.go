package catalog

import (
	"encoding/json"
	"strings"
)

// Field is one named value of a flattened entity record.
type Field struct {
	Name  string
	Value any
}

// Record is the flat, ordered representation of an entity, used by the
// writer. Field order is the column order of the exported tables.
type Record []Field

// MarshalJSON renders the record as an object, preserving field order and
// omitting nil values.
func (r Record) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for _, f := range r {
		if f.Value == nil {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// Folder is a hierarchy node: a filesystem directory, a database schema, a
// synthetic table-prefix group, or the sentinel modalities folder.
type Folder struct {
	ID          string
	Name        string
	ParentID    string
	Type        string // filesystem | schema | table_prefix | <backend name>
	DataPath    string
	LastUpdate  string
	Description string
}

func (f *Folder) Record() Record {
	return Record{
		{"id", f.ID},
		{"name", f.Name},
		{"parent_id", emptyAsNil(f.ParentID)},
		{"type", emptyAsNil(f.Type)},
		{"data_path", emptyAsNil(f.DataPath)},
		{"last_update_date", emptyAsNil(f.LastUpdate)},
		{"description", emptyAsNil(f.Description)},
	}
}

// Dataset is one scanned unit of tabular data: a file, a database table, or
// a multi-file table-format directory.
type Dataset struct {
	ID             string
	Name           string
	FolderID       string
	DataPath       string
	LastUpdate     string
	DeliveryFormat string
	NbRow          int64
	Description    string

	// Descriptive metadata, caller-supplied or extracted from the source.
	Type         string
	Link         string
	Localisation string
	OwnerID      string
	ManagerID    string
	TagIDs       []string
	DocIDs       []string
	StartDate    string
	EndDate      string
	UpdatingEach string
}

func (d *Dataset) Record() Record {
	return Record{
		{"id", d.ID},
		{"name", d.Name},
		{"folder_id", emptyAsNil(d.FolderID)},
		{"data_path", emptyAsNil(d.DataPath)},
		{"last_update_date", emptyAsNil(d.LastUpdate)},
		{"delivery_format", emptyAsNil(d.DeliveryFormat)},
		{"nb_row", d.NbRow},
		{"description", emptyAsNil(d.Description)},
		{"type", emptyAsNil(d.Type)},
		{"link", emptyAsNil(d.Link)},
		{"localisation", emptyAsNil(d.Localisation)},
		{"owner_id", emptyAsNil(d.OwnerID)},
		{"manager_id", emptyAsNil(d.ManagerID)},
		{"tag_ids", joinedOrNil(d.TagIDs)},
		{"doc_ids", joinedOrNil(d.DocIDs)},
		{"start_date", emptyAsNil(d.StartDate)},
		{"end_date", emptyAsNil(d.EndDate)},
		{"updating_each", emptyAsNil(d.UpdatingEach)},
	}
}

// Variable is one column of one dataset. A freshly scanned variable carries a
// provisional ID equal to its raw column name; finalizeVariables rewrites it
// to the catalog-global form dataset_id---sanitized_name exactly once.
type Variable struct {
	ID          string
	Name        string
	DatasetID   string
	Type        string
	NbDistinct  *int64
	NbDuplicate *int64
	NbMissing   *int64
	Description string
	ModalityIDs []string
}

func (v *Variable) Record() Record {
	return Record{
		{"id", v.ID},
		{"name", v.Name},
		{"dataset_id", v.DatasetID},
		{"type", emptyAsNil(v.Type)},
		{"nb_distinct", intOrNil(v.NbDistinct)},
		{"nb_duplicate", intOrNil(v.NbDuplicate)},
		{"nb_missing", intOrNil(v.NbMissing)},
		{"description", emptyAsNil(v.Description)},
		{"modality_ids", joinedOrNil(v.ModalityIDs)},
	}
}

// Modality is a deduplicated categorical value-set shared by one or more
// variables. Its ID derives from the value-set's content hash, so the same
// set of values always maps to the same modality across builds.
type Modality struct {
	ID       string
	FolderID string
	Name     string
}

func (m *Modality) Record() Record {
	return Record{
		{"id", m.ID},
		{"folder_id", m.FolderID},
		{"name", m.Name},
	}
}

// Value is one (modality, value) pair.
type Value struct {
	ModalityID  string
	Value       string
	Description string
}

func (v *Value) Record() Record {
	return Record{
		{"modality_id", v.ModalityID},
		{"value", v.Value},
		{"description", emptyAsNil(v.Description)},
	}
}

func emptyAsNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intOrNil(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

func joinedOrNil(items []string) any {
	if len(items) == 0 {
		return nil
	}
	return strings.Join(items, ",")
}
