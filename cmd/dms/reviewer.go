package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dms/internal/document"
	"dms/internal/queue"
	"dms/internal/review"
)

// errReviewAborted ends the session early at the user's request. Decisions
// recorded before the abort are kept.
var errReviewAborted = errors.New("review aborted")

type terminalReviewer struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalReviewer(cmd *cobra.Command) (review.Reviewer, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return nil, errors.New("interactive review requires a terminal; use --yes to approve all")
		}
	}
	return &terminalReviewer{
		in:  bufio.NewReader(in),
		out: cmd.OutOrStdout(),
	}, nil
}

func (r *terminalReviewer) Review(ctx context.Context, item *queue.Item) (review.Decision, error) {
	r.printItem(item)
	for {
		if err := ctx.Err(); err != nil {
			return review.Decision{}, err
		}
		fmt.Fprint(r.out, "[a]pprove / [e]dit / [s]kip / [q]uit: ")
		answer, err := r.readLine()
		if err != nil {
			return review.Decision{}, err
		}
		switch strings.ToLower(answer) {
		case "a", "approve", "":
			return review.Decision{Disposition: review.DispositionApprove}, nil
		case "e", "edit":
			return r.edit(item)
		case "s", "skip":
			return review.Decision{Disposition: review.DispositionSkip}, nil
		case "q", "quit":
			return review.Decision{}, errReviewAborted
		default:
			fmt.Fprintf(r.out, "Unrecognized answer %q\n", answer)
		}
	}
}

func (r *terminalReviewer) edit(item *queue.Item) (review.Decision, error) {
	fmt.Fprintf(r.out, "Summary [%s]: ", item.Summary)
	summary, err := r.readLine()
	if err != nil {
		return review.Decision{}, err
	}
	fmt.Fprintf(r.out, "Category [%s]: ", item.Category)
	category, err := r.readLine()
	if err != nil {
		return review.Decision{}, err
	}
	return review.Decision{
		Disposition: review.DispositionEdit,
		Summary:     summary,
		Category:    category,
	}, nil
}

func (r *terminalReviewer) printItem(item *queue.Item) {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%s (%s, %s)\n", item.Path, item.Change, item.Kind)
	if item.PairedWith != "" {
		fmt.Fprintf(r.out, "  represents: %s\n", item.PairedWith)
	}
	switch {
	case item.Change == document.StatusDeleted:
		fmt.Fprintln(r.out, "  document was deleted; approving removes it from the store")
	case item.Status == queue.ItemFailed:
		fmt.Fprintf(r.out, "  summarization failed: %s\n", item.ErrorMessage)
	default:
		fmt.Fprintf(r.out, "  summary:  %s\n", item.Summary)
		fmt.Fprintf(r.out, "  category: %s\n", item.Category)
	}
}

func (r *terminalReviewer) readLine() (string, error) {
	line, err := r.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
