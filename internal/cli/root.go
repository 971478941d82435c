// Package cli provides the command-line interface for the datannur catalog
// builder.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/datannur/datannur-go/internal/cli/commands"
	"github.com/datannur/datannur-go/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "datannur",
		Short: "datannur - Metadata Catalog Builder",
		Long: `datannur builds a metadata catalog from files, folders and databases.

It scans data sources into folders, datasets, variables and deduplicated
value-sets (modalities), then exports them as the JSON database consumed
by the datannur visualization app.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Built with Go and DuckDB
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./datannur.yaml)")
	rootCmd.PersistentFlags().StringP("out", "o", "", "output directory for the catalog database")
	rootCmd.PersistentFlags().String("app", "", "path to the datannur app to copy around the database")
	rootCmd.PersistentFlags().Int("freq-threshold", 0, "max distinct values for frequency tables (0 disables)")
	rootCmd.PersistentFlags().String("csv-encoding", "", "priority text encoding for CSV files (e.g. CP1252)")
	rootCmd.PersistentFlags().Bool("no-js", false, "skip the compact .json.js companion files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress per-dataset progress output")

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewScanCommand())
	rootCmd.AddCommand(commands.NewDBCommand())
	rootCmd.AddCommand(commands.NewBuildCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
