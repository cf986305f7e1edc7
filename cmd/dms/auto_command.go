package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dms/internal/config"
	"dms/internal/review"
	"dms/internal/workflow"
)

func newAutoCommand(ctx *commandContext) *cobra.Command {
	var approveAll bool

	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Run the full pipeline: scan, summarize, review, apply",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(runCtx context.Context, cfg *config.Config, pipeline *workflow.Pipeline) error {
				reviewer, err := chooseReviewer(cmd, approveAll)
				if err != nil {
					return err
				}
				outcome, err := pipeline.Auto(runCtx, reviewer)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if outcome.Scan.Empty() {
					fmt.Fprintf(out, "Nothing to do: %d documents unchanged\n", outcome.Scan.Unchanged)
					return nil
				}
				fmt.Fprintf(out, "Scanned: %d to summarize, %d deletions\n", outcome.Scan.Work, outcome.Scan.Deleted)
				fmt.Fprintf(out, "Summarized: %d (%d failed)\n", outcome.Summarize.Summarized, outcome.Summarize.Failed)
				fmt.Fprintf(out, "Reviewed: %d approved, %d skipped\n", outcome.Review.Approved, outcome.Review.Skipped)
				fmt.Fprintf(out, "Applied: %d changes, %d removals\n", outcome.Apply.Applied, outcome.Apply.Removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&approveAll, "yes", "y", false, "Approve every summarized change without prompting")
	return cmd
}

func chooseReviewer(cmd *cobra.Command, approveAll bool) (review.Reviewer, error) {
	if approveAll {
		return review.AutoApprover{}, nil
	}
	return newTerminalReviewer(cmd)
}
