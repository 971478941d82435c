package commands

import (
	"github.com/spf13/cobra"

	"github.com/datannur/datannur-go/internal/config"
	"github.com/datannur/datannur-go/pkg/catalog"
)

// NewDBCommand creates the db command: catalog a relational database.
func NewDBCommand() *cobra.Command {
	var (
		schema         string
		include        []string
		exclude        []string
		noStats        bool
		sampleSize     int
		noPrefixGroups bool
		prefixSep      string
		prefixMinCount int
	)

	cmd := &cobra.Command{
		Use:   "db <connection>",
		Short: "Scan a database into a catalog",
		Long: `Scan a relational database and export the resulting catalog.

The connection string decides the backend:

  sqlite:///path/to.db            SQLite file
  duckdb:///warehouse.duckdb      DuckDB file
  postgres://user@host/dbname     PostgreSQL
  sqlserver://user@host?database= SQL Server

Every base table becomes a dataset; views are skipped. Tables sharing a
name prefix are grouped under prefix folders.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger := config.GetLogger(ctx)

			cat := newCatalog(cfg, logger)
			defer cat.Close()

			opts := catalog.DatabaseOptions{
				Schema:         schema,
				Include:        include,
				Exclude:        exclude,
				NoStats:        noStats,
				SampleSize:     sampleSize,
				NoPrefixGroups: noPrefixGroups,
				PrefixSep:      prefixSep,
				PrefixMinCount: prefixMinCount,
			}
			if err := cat.AddDatabase(ctx, args[0], opts); err != nil {
				return err
			}
			return exportCatalog(cmd, cat, cfg)
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "scan only this schema")
	cmd.Flags().StringSliceVar(&include, "include", nil, "table names or patterns to include")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "table names or patterns to exclude")
	cmd.Flags().BoolVar(&noStats, "no-stats", false, "skip per-variable statistics and frequency tables")
	cmd.Flags().IntVar(&sampleSize, "sample", 0, "compute statistics on at most this many rows (0 = all)")
	cmd.Flags().BoolVar(&noPrefixGroups, "no-prefix-groups", false, "do not group tables by shared name prefix")
	cmd.Flags().StringVar(&prefixSep, "prefix-sep", "", `prefix token separator (default "_")`)
	cmd.Flags().IntVar(&prefixMinCount, "prefix-min-count", 0, "min tables sharing a prefix to form a folder (default 2)")

	return cmd
}
