// Package config provides configuration types and loading for the datannur
// catalog builder. This package is decoupled from CLI concerns; the CLI
// layers its flags on top via the loader.
package config

// FolderSource describes one directory tree to scan.
type FolderSource struct {
	Path        string   `koanf:"path"`
	ID          string   `koanf:"id"`
	Name        string   `koanf:"name"`
	Description string   `koanf:"description"`
	Include     []string `koanf:"include"`
	Exclude     []string `koanf:"exclude"`
	NoRecursive bool     `koanf:"no_recursive"`
	NoStats     bool     `koanf:"no_stats"`
}

// DatabaseSource describes one database to scan.
type DatabaseSource struct {
	Conn           string   `koanf:"conn"`
	Schema         string   `koanf:"schema"`
	Include        []string `koanf:"include"`
	Exclude        []string `koanf:"exclude"`
	NoStats        bool     `koanf:"no_stats"`
	SampleSize     int      `koanf:"sample_size"`
	NoPrefixGroups bool     `koanf:"no_prefix_groups"`
	PrefixSep      string   `koanf:"prefix_sep"`
	PrefixMinCount int      `koanf:"prefix_min_count"`
}

// DatasetSource describes one standalone dataset file or table directory.
type DatasetSource struct {
	Path         string   `koanf:"path"`
	Folder       string   `koanf:"folder"`
	FolderID     string   `koanf:"folder_id"`
	ID           string   `koanf:"id"`
	Name         string   `koanf:"name"`
	Description  string   `koanf:"description"`
	Type         string   `koanf:"type"`
	Link         string   `koanf:"link"`
	Localisation string   `koanf:"localisation"`
	OwnerID      string   `koanf:"owner_id"`
	ManagerID    string   `koanf:"manager_id"`
	TagIDs       []string `koanf:"tag_ids"`
	DocIDs       []string `koanf:"doc_ids"`
	StartDate    string   `koanf:"start_date"`
	EndDate      string   `koanf:"end_date"`
	UpdatingEach string   `koanf:"updating_each"`
	NoStats      bool     `koanf:"no_stats"`
}

// Config is the full builder configuration.
type Config struct {
	// Output is the directory the catalog database is written to.
	Output string `koanf:"output"`

	// App points at a local copy of the datannur visualization app. When
	// set, exports copy the app and nest the database under data/db.
	App string `koanf:"app"`

	// FreqThreshold bounds which variables get frequency tables and
	// modalities. Zero disables both.
	FreqThreshold int `koanf:"freq_threshold"`

	// CSVEncoding is a priority text encoding tried first for CSV files.
	CSVEncoding string `koanf:"csv_encoding"`

	// NoJS suppresses the compact .json.js companion files.
	NoJS bool `koanf:"no_js"`

	Quiet   bool `koanf:"quiet"`
	Verbose bool `koanf:"verbose"`

	Folders   []FolderSource   `koanf:"folders"`
	Databases []DatabaseSource `koanf:"databases"`
	Datasets  []DatasetSource  `koanf:"datasets"`
}
