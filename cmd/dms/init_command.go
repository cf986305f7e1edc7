package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"dms/internal/catalog"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the document directory and state store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// Unlike scan, init is allowed to bootstrap the document tree.
			for _, dir := range []string{cfg.Paths.DocDir, cfg.Paths.ArtifactDir, filepath.Dir(cfg.Paths.IndexPath)} {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create directory %q: %w", dir, err)
				}
			}
			if err := catalog.WriteNew(cfg.Paths.IndexPath, title); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Initialized state store at %s\n", cfg.Paths.IndexPath)
			fmt.Fprintf(out, "Document directory: %s\n", cfg.Paths.DocDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "Document Index", "Title for the new index document")
	return cmd
}
