package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/datannur/datannur-go/internal/config"
	"github.com/datannur/datannur-go/pkg/catalog"
)

// NewScanCommand creates the scan command: catalog one directory tree or
// one dataset file.
func NewScanCommand() *cobra.Command {
	var (
		id          string
		name        string
		description string
		include     []string
		exclude     []string
		noRecursive bool
		noStats     bool
	)

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a directory or dataset file into a catalog",
		Long: `Scan a data source and export the resulting catalog.

A directory is walked recursively: every recognized data file and
table-format directory (Delta, Iceberg, hive-partitioned Parquet) becomes
a dataset. A single file becomes a one-dataset catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger := config.GetLogger(ctx)

			cat := newCatalog(cfg, logger)
			defer cat.Close()

			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			if info.IsDir() {
				opts := catalog.FolderOptions{
					Include:     include,
					Exclude:     exclude,
					NoRecursive: noRecursive,
					NoStats:     noStats,
				}
				if id != "" || name != "" || description != "" {
					opts.Folder = &catalog.Folder{ID: id, Name: name, Description: description}
					if opts.Folder.ID == "" {
						opts.Folder.ID = catalog.SanitizeID(name)
					}
					if opts.Folder.Name == "" {
						opts.Folder.Name = id
					}
				}
				if err := cat.AddFolder(ctx, path, opts); err != nil {
					return err
				}
			} else {
				opts := catalog.DatasetOptions{
					ID:          id,
					Name:        name,
					Description: description,
					NoStats:     noStats,
				}
				if err := cat.AddDataset(ctx, path, opts); err != nil {
					return err
				}
			}
			return exportCatalog(cmd, cat, cfg)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "folder or dataset ID (derived from the name when empty)")
	cmd.Flags().StringVar(&name, "name", "", "folder or dataset display name")
	cmd.Flags().StringVar(&description, "description", "", "folder or dataset description")
	cmd.Flags().StringSliceVar(&include, "include", nil, "glob patterns of files to include")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "paths or patterns of files to exclude")
	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "do not descend into subdirectories")
	cmd.Flags().BoolVar(&noStats, "no-stats", false, "skip per-variable statistics and frequency tables")

	return cmd
}
