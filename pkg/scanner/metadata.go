package scanner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// applyMetadata enriches a scan result with descriptive metadata embedded in
// the source itself. Extraction is best-effort: a source without metadata is
// the normal case, not an error.
func (e *Engine) applyMetadata(ctx context.Context, path string, format Format, res *Result) {
	var err error
	switch format {
	case FormatParquet:
		err = e.parquetMetadata(ctx, path, res)
	case FormatDelta:
		err = deltaMetadata(path, res)
	case FormatIceberg:
		err = icebergMetadata(path, res)
	case FormatCSV, FormatExcel, FormatHive, FormatSAS, FormatSPSS, FormatStata:
		return
	}
	if err != nil {
		e.logger.Debug("metadata extraction failed", "path", path, "error", err)
	}
}

// parquetMetadata reads the file's key-value metadata. The "description" (or
// "comment") key describes the dataset; a key matching a column name
// describes that column.
func (e *Engine) parquetMetadata(ctx context.Context, path string, res *Result) error {
	rows, err := e.db.QueryContext(ctx,
		fmt.Sprintf("SELECT CAST(key AS VARCHAR), CAST(value AS VARCHAR) FROM parquet_kv_metadata(%s)", quoteString(path)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	byColumn := make(map[string]int, len(res.Columns))
	for i, col := range res.Columns {
		byColumn[col.Name] = i
	}

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		switch {
		case key == "description" || key == "comment":
			res.Meta.Description = value
		case key == "name" || key == "title":
			res.Meta.Name = value
		default:
			if i, ok := byColumn[key]; ok {
				res.Columns[i].Description = value
			}
		}
	}
	return rows.Err()
}

// deltaAction is one line of a Delta commit file; only metaData matters here.
type deltaAction struct {
	MetaData *struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"metaData"`
}

// deltaMetadata reads table name and description from the latest metaData
// action in the _delta_log commit files.
func deltaMetadata(path string, res *Result) error {
	logDir := filepath.Join(path, "_delta_log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return err
	}

	var commits []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			commits = append(commits, entry.Name())
		}
	}
	sort.Strings(commits)

	// Later commits override earlier ones.
	for _, name := range commits {
		f, err := os.Open(filepath.Join(logDir, name))
		if err != nil {
			return err
		}
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for sc.Scan() {
			line := sc.Bytes()
			if len(line) == 0 {
				continue
			}
			var action deltaAction
			if err := json.Unmarshal(line, &action); err != nil {
				continue
			}
			if action.MetaData != nil {
				if action.MetaData.Name != "" {
					res.Meta.Name = action.MetaData.Name
				}
				if action.MetaData.Description != "" {
					res.Meta.Description = action.MetaData.Description
				}
			}
		}
		_ = f.Close()
	}
	return nil
}

type icebergTableMetadata struct {
	Properties map[string]string `json:"properties"`
}

// icebergMetadata reads the table comment from the newest metadata file.
func icebergMetadata(path string, res *Result) error {
	metaDir := filepath.Join(path, "metadata")
	entries, err := os.ReadDir(metaDir)
	if err != nil {
		return err
	}

	var versions []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".metadata.json") {
			versions = append(versions, entry.Name())
		}
	}
	if len(versions) == 0 {
		return nil
	}
	sort.Strings(versions)

	data, err := os.ReadFile(filepath.Join(metaDir, versions[len(versions)-1]))
	if err != nil {
		return err
	}
	var meta icebergTableMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return err
	}
	if comment, ok := meta.Properties["comment"]; ok {
		res.Meta.Description = comment
	}
	return nil
}
