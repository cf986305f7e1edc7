package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dms/internal/config"
	"dms/internal/workflow"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var approveAll bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review summarized changes before they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(runCtx context.Context, cfg *config.Config, pipeline *workflow.Pipeline) error {
				reviewer, err := chooseReviewer(cmd, approveAll)
				if err != nil {
					return err
				}
				result, err := pipeline.Review(runCtx, reviewer)
				out := cmd.OutOrStdout()
				if err != nil && !errors.Is(err, errReviewAborted) {
					return err
				}
				fmt.Fprintf(out, "Approved %d, skipped %d\n", result.Approved, result.Skipped)
				if result.Approved > 0 {
					fmt.Fprintln(out, "Run 'dms apply' to commit approved changes")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&approveAll, "yes", "y", false, "Approve every summarized change without prompting")
	return cmd
}
