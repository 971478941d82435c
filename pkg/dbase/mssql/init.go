// Package mssql provides a SQL Server database adapter.
//
// This file registers the adapter with the dbase registry. Import this
// package with a blank identifier to register the adapter:
//
//	import _ "github.com/datannur/datannur-go/pkg/dbase/mssql"
package mssql

import (
	"log/slog"

	"github.com/datannur/datannur-go/pkg/dbase"
)

func init() {
	dbase.Register("mssql", func(logger *slog.Logger) dbase.Adapter { return New(logger) })
}
