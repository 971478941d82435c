// Package postgres provides a PostgreSQL database adapter.
//
// This file registers the adapter with the dbase registry. Import this
// package with a blank identifier to register the adapter:
//
//	import _ "github.com/datannur/datannur-go/pkg/dbase/postgres"
package postgres

import (
	"log/slog"

	"github.com/datannur/datannur-go/pkg/dbase"
)

func init() {
	dbase.Register("postgres", func(logger *slog.Logger) dbase.Adapter { return New(logger) })
}
