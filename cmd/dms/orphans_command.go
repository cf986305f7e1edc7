package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dms/internal/config"
	"dms/internal/workflow"
)

func newOrphansCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List files on disk the state store does not track",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(runCtx context.Context, cfg *config.Config, pipeline *workflow.Pipeline) error {
				orphans, err := pipeline.Orphans(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(orphans) == 0 {
					fmt.Fprintln(out, "No untracked files")
					return nil
				}
				for _, path := range orphans {
					fmt.Fprintln(out, path)
				}
				return nil
			})
		},
	}
}
