// Package dbase provides database adapter interfaces and a registry for the
// catalog's database walker. Concrete backends are in pkg/dbase/
// subdirectories and register themselves via init().
package dbase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/datannur/datannur-go/pkg/scanner"
)

// Adapter is the contract every database backend implements.
type Adapter interface {
	// Connect establishes the connection described by cfg.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Backend returns the backend tag (sqlite, postgres, duckdb, mssql).
	Backend() string

	// ListSchemas enumerates the backend's schemas. Backends without a
	// schema dimension return an empty list.
	ListSchemas(ctx context.Context) ([]string, error)

	// ListTables lists base tables in a schema. Views are never included:
	// the implementation must consult the backend's authoritative
	// table-vs-view catalog.
	ListTables(ctx context.Context, schema string) ([]string, error)

	// RowCount returns the exact full row count of a table. It is never
	// computed on a sample.
	RowCount(ctx context.Context, schema, table string) (int64, error)

	// ScanTable reads a table's columns, statistics, and frequency table.
	// When a sample size is set, only the statistics run on the sample.
	ScanTable(ctx context.Context, schema, table string, opts ScanOptions) (*scanner.Result, error)
}

// ScanOptions controls a table scan.
type ScanOptions struct {
	InferStats bool

	// FreqThreshold bounds which columns get frequency tables. Zero
	// disables them.
	FreqThreshold int

	// SampleSize bounds the number of rows statistics are computed over.
	// Zero means full table.
	SampleSize int
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Adapter)
)

// Register adds an adapter factory to the registry. Called by backend
// implementations in their init() functions.
func Register(backend string, factory func(*slog.Logger) Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[backend] = factory
}

// New creates an adapter for the given config's backend. A nil logger means
// the adapter logs nothing.
func New(cfg Config, logger *slog.Logger) (Adapter, error) {
	factory, ok := Get(cfg.Backend)
	if !ok {
		return nil, &UnknownBackendError{
			Backend:   cfg.Backend,
			Available: ListBackends(),
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(logger), nil
}

// Get retrieves an adapter factory by backend tag.
func Get(backend string) (func(*slog.Logger) Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[backend]
	return f, ok
}

// ListBackends returns all registered backend tags, sorted.
func ListBackends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnknownBackendError is returned when no adapter is registered for a
// backend tag.
type UnknownBackendError struct {
	Backend   string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("no adapter registered for backend %q (available: %v)", e.Backend, e.Available)
}

// systemSchemas lists administrative schemas skipped during schema
// enumeration, per backend. This is configuration, not traversal logic:
// new backends extend the map without touching the walker.
var systemSchemas = map[string]map[string]bool{
	"postgres": {
		"information_schema": true,
		"pg_catalog":         true,
		"pg_toast":           true,
	},
	"duckdb": {
		"information_schema": true,
		"pg_catalog":         true,
	},
	"mssql": {
		"information_schema": true,
		"sys":                true,
		"guest":              true,
		"db_owner":           true,
		"db_accessadmin":     true,
		"db_securityadmin":   true,
		"db_ddladmin":        true,
		"db_backupoperator":  true,
		"db_datareader":      true,
		"db_datawriter":      true,
		"db_denydatareader":  true,
		"db_denydatawriter":  true,
	},
}

// FilterSystemSchemas drops a backend's administrative schemas from a
// schema list.
func FilterSystemSchemas(backend string, schemas []string) []string {
	system := systemSchemas[backend]
	if system == nil {
		return schemas
	}
	var out []string
	for _, s := range schemas {
		if !system[s] {
			out = append(out, s)
		}
	}
	return out
}
