// Package commands implements the datannur CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/datannur/datannur-go/internal/config"
	"github.com/datannur/datannur-go/pkg/catalog"
	"github.com/datannur/datannur-go/pkg/writer"
)

// newCatalog builds a catalog configured from the loaded config.
func newCatalog(cfg *config.Config, logger *slog.Logger) *catalog.Catalog {
	opts := []catalog.Option{
		catalog.WithLogger(logger),
		catalog.WithFreqThreshold(cfg.FreqThreshold),
	}
	if cfg.CSVEncoding != "" {
		opts = append(opts, catalog.WithCSVEncoding(cfg.CSVEncoding))
	}
	if cfg.Quiet {
		opts = append(opts, catalog.WithQuiet())
	}
	return catalog.New(opts...)
}

// exportCatalog writes the catalog: the plain database into the output
// directory, or the app plus database when an app path is configured.
func exportCatalog(cmd *cobra.Command, cat *catalog.Catalog, cfg *config.Config) error {
	opts := writer.Options{SkipJS: cfg.NoJS}
	if cfg.App != "" {
		if err := writer.ExportApp(cat, cfg.Output, cfg.App, opts); err != nil {
			return err
		}
	} else if err := writer.ExportDB(cat, cfg.Output, opts); err != nil {
		return err
	}
	if !cfg.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", cat, cfg.Output)
	}
	return nil
}
