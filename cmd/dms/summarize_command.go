package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dms/internal/config"
	"dms/internal/summarize"
	"dms/internal/workflow"
)

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Generate AI summaries for pending changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(runCtx context.Context, cfg *config.Config, pipeline *workflow.Pipeline) error {
				var opts []summarize.Option
				if dryRun {
					opts = append(opts, summarize.WithDryRun())
				}
				result, err := pipeline.Summarize(runCtx, opts...)
				out := cmd.OutOrStdout()
				if dryRun {
					for _, proposal := range result.Proposals {
						fmt.Fprintf(out, "%s\n  summary:  %s\n  category: %s\n", proposal.Path, proposal.Summary, proposal.Category)
					}
				}
				if result.Summarized > 0 || result.Failed > 0 {
					fmt.Fprintf(out, "Summarized %d items, %d failed\n", result.Summarized, result.Failed)
					if dryRun {
						fmt.Fprintln(out, "Dry run: nothing was recorded")
					}
				}
				if err != nil {
					return err
				}
				if result.Summarized == 0 && result.Failed == 0 {
					fmt.Fprintln(out, "Nothing awaiting summarization")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "generate summaries without recording them")
	return cmd
}
