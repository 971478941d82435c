// Package main provides the CLI for the datannur metadata catalog builder.
package main

import (
	"os"

	"github.com/datannur/datannur-go/internal/cli"

	// Register database backends.
	_ "github.com/datannur/datannur-go/pkg/dbase/duckdb"
	_ "github.com/datannur/datannur-go/pkg/dbase/mssql"
	_ "github.com/datannur/datannur-go/pkg/dbase/postgres"
	_ "github.com/datannur/datannur-go/pkg/dbase/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
