package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"dms/internal/config"
	"dms/internal/document"
	"dms/internal/queue"
	"dms/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state store and pending change set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(runCtx context.Context, cfg *config.Config, pipeline *workflow.Pipeline) error {
				status, err := pipeline.Status(runCtx)
				if err != nil {
					return err
				}
				printStatus(cmd, status)
				return nil
			})
		},
	}
}

func printStatus(cmd *cobra.Command, status *workflow.Status) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Store: %s (%d documents)\n", status.StorePath, status.Documents)
	if status.UpdatedAt != "" {
		fmt.Fprintf(out, "Last updated: %s\n", status.UpdatedAt)
	}

	if len(status.StoreCounts) > 0 {
		var rows [][]string
		keys := make([]string, 0, len(status.StoreCounts))
		for key := range status.StoreCounts {
			keys = append(keys, string(key))
		}
		sort.Strings(keys)
		for _, key := range keys {
			rows = append(rows, []string{key, strconv.Itoa(status.StoreCounts[document.Status(key)])})
		}
		fmt.Fprintln(out, renderTable([]string{"Status", "Documents"}, rows))
	}

	if status.Run == nil {
		fmt.Fprintln(out, "No pending change set; run 'dms scan'")
	} else {
		fmt.Fprintf(out, "Pending run %s (scanned %s)\n",
			status.Run.ID, status.Run.ScannedAt.Format("2006-01-02 15:04:05"))
		var rows [][]string
		keys := make([]string, 0, len(status.RunCounts))
		for key := range status.RunCounts {
			keys = append(keys, string(key))
		}
		sort.Strings(keys)
		for _, key := range keys {
			rows = append(rows, []string{key, strconv.Itoa(status.RunCounts[queue.ItemStatus(key)])})
		}
		fmt.Fprintln(out, renderTable([]string{"Stage", "Items"}, rows))
	}

	if len(status.Orphans) > 0 {
		fmt.Fprintf(out, "Untracked files on disk: %d (see 'dms orphans')\n", len(status.Orphans))
	}
}
