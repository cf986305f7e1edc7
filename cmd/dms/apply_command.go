package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dms/internal/config"
	"dms/internal/workflow"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Commit approved changes to the state store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(runCtx context.Context, cfg *config.Config, pipeline *workflow.Pipeline) error {
				result, err := pipeline.Apply(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.Applied == 0 && result.Removed == 0 {
					fmt.Fprintln(out, "Nothing approved; store untouched")
					return nil
				}
				fmt.Fprintf(out, "Applied %d changes, removed %d entries\n", result.Applied, result.Removed)
				fmt.Fprintf(out, "Backup: %s\n", result.BackupPath)
				return nil
			})
		},
	}
}
