package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dms/internal/config"
	"dms/internal/workflow"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Detect new, modified, and deleted documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(runCtx context.Context, cfg *config.Config, pipeline *workflow.Pipeline) error {
				outcome, err := pipeline.Scan(runCtx)
				if err != nil {
					return err
				}
				printScanOutcome(cmd, outcome)
				return nil
			})
		},
	}
}

func printScanOutcome(cmd *cobra.Command, outcome *workflow.ScanOutcome) {
	out := cmd.OutOrStdout()
	if outcome.Empty() {
		fmt.Fprintf(out, "Nothing to do: %d documents unchanged\n", outcome.Unchanged)
	} else {
		fmt.Fprintf(out, "Pending changes: %d to summarize, %d deletions (%d unchanged)\n",
			outcome.Work, outcome.Deleted, outcome.Unchanged)
	}
	if len(outcome.Suppressed) > 0 {
		fmt.Fprintf(out, "Represented by artifacts: %d originals\n", len(outcome.Suppressed))
	}
	for _, note := range outcome.Notes {
		fmt.Fprintf(out, "Ambiguous pairing for %s: candidates %v\n", note.OriginalPath, note.Candidates)
	}
	for _, scanErr := range outcome.Errors {
		fmt.Fprintf(out, "Warning: %s: %v\n", scanErr.Path, scanErr.Err)
	}
}
