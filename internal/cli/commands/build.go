package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datannur/datannur-go/internal/config"
	"github.com/datannur/datannur-go/pkg/catalog"
)

// NewBuildCommand creates the build command: catalog every source listed
// in the config file.
func NewBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build the catalog from the sources in the config file",
		Long: `Build a catalog from every folder, database and dataset source listed
in datannur.yaml, then export it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger := config.GetLogger(ctx)

			if len(cfg.Folders)+len(cfg.Databases)+len(cfg.Datasets) == 0 {
				return fmt.Errorf("no sources configured: add folders, databases or datasets to %s", config.ConfigFileName)
			}

			cat := newCatalog(cfg, logger)
			defer cat.Close()

			for _, src := range cfg.Folders {
				opts := catalog.FolderOptions{
					Include:     src.Include,
					Exclude:     src.Exclude,
					NoRecursive: src.NoRecursive,
					NoStats:     src.NoStats,
				}
				if src.ID != "" || src.Name != "" || src.Description != "" {
					opts.Folder = &catalog.Folder{ID: src.ID, Name: src.Name, Description: src.Description}
					if opts.Folder.ID == "" {
						opts.Folder.ID = catalog.SanitizeID(src.Name)
					}
					if opts.Folder.Name == "" {
						opts.Folder.Name = src.ID
					}
				}
				if err := cat.AddFolder(ctx, src.Path, opts); err != nil {
					return fmt.Errorf("folder %s: %w", src.Path, err)
				}
			}

			for _, src := range cfg.Databases {
				opts := catalog.DatabaseOptions{
					Schema:         src.Schema,
					Include:        src.Include,
					Exclude:        src.Exclude,
					NoStats:        src.NoStats,
					SampleSize:     src.SampleSize,
					NoPrefixGroups: src.NoPrefixGroups,
					PrefixSep:      src.PrefixSep,
					PrefixMinCount: src.PrefixMinCount,
				}
				if err := cat.AddDatabase(ctx, src.Conn, opts); err != nil {
					return fmt.Errorf("database %s: %w", src.Conn, err)
				}
			}

			for _, src := range cfg.Datasets {
				opts := catalog.DatasetOptions{
					FolderID:     src.FolderID,
					ID:           src.ID,
					Name:         src.Name,
					Description:  src.Description,
					Type:         src.Type,
					Link:         src.Link,
					Localisation: src.Localisation,
					OwnerID:      src.OwnerID,
					ManagerID:    src.ManagerID,
					TagIDs:       src.TagIDs,
					DocIDs:       src.DocIDs,
					StartDate:    src.StartDate,
					EndDate:      src.EndDate,
					UpdatingEach: src.UpdatingEach,
					NoStats:      src.NoStats,
				}
				if src.Folder != "" {
					opts.Folder = &catalog.Folder{ID: catalog.SanitizeID(src.Folder), Name: src.Folder}
				}
				if err := cat.AddDataset(ctx, src.Path, opts); err != nil {
					return fmt.Errorf("dataset %s: %w", src.Path, err)
				}
			}

			return exportCatalog(cmd, cat, cfg)
		},
	}
}
