package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dms/internal/document"
	"dms/internal/logging"
	"dms/internal/queue"
	"dms/internal/textutil"
)

// Disposition is a reviewer's verdict on one pending item.
type Disposition string

const (
	// DispositionApprove accepts the item as summarized.
	DispositionApprove Disposition = "approve"
	// DispositionEdit accepts the item with reviewer-supplied text.
	DispositionEdit Disposition = "edit"
	// DispositionSkip defers the item to a later run.
	DispositionSkip Disposition = "skip"
)

// Decision carries the verdict plus replacement text for edits.
type Decision struct {
	Disposition Disposition
	Summary     string
	Category    string
}

// Reviewer decides the fate of each pending item. Implementations range
// from an interactive terminal session to blanket auto-approval.
type Reviewer interface {
	Review(ctx context.Context, item *queue.Item) (Decision, error)
}

// AutoApprover approves every reviewable item unchanged. Items without a
// summary (failed summarizations) are skipped rather than approved blind.
type AutoApprover struct{}

func (AutoApprover) Review(_ context.Context, item *queue.Item) (Decision, error) {
	if item.NeedsSummary() || (item.Summary == "" && item.Change != document.StatusDeleted) {
		return Decision{Disposition: DispositionSkip}, nil
	}
	return Decision{Disposition: DispositionApprove}, nil
}

// Result tallies one review pass.
type Result struct {
	Approved int
	Skipped  int
}

// Session walks the run's reviewable items and records each decision.
type Session struct {
	store    *queue.Store
	reviewer Reviewer
	logger   *slog.Logger
}

// NewSession constructs a review session.
func NewSession(store *queue.Store, reviewer Reviewer, logger *slog.Logger) *Session {
	return &Session{
		store:    store,
		reviewer: reviewer,
		logger:   logging.NewComponentLogger(logger, "review"),
	}
}

// Run presents every reviewable item to the reviewer. Deletions reach
// review without a summary; failed items surface so the reviewer can
// supply text or defer them.
func (s *Session) Run(ctx context.Context, run *queue.Run) (Result, error) {
	var result Result

	items, err := s.store.ItemsByStatus(ctx, run.ID,
		queue.ItemPending, queue.ItemSummarized, queue.ItemFailed, queue.ItemSkipped)
	if err != nil {
		return result, fmt.Errorf("load reviewable items: %w", err)
	}

	for _, item := range items {
		if !item.NeedsReview() {
			continue
		}
		decision, err := s.reviewer.Review(ctx, item)
		if err != nil {
			return result, fmt.Errorf("review %s: %w", item.Path, err)
		}
		if err := s.record(ctx, item, decision); err != nil {
			return result, err
		}
		if decision.Disposition == DispositionSkip {
			result.Skipped++
		} else {
			result.Approved++
		}
	}
	return result, nil
}

func (s *Session) record(ctx context.Context, item *queue.Item, decision Decision) error {
	switch decision.Disposition {
	case DispositionApprove:
		return s.store.Approve(ctx, item.ID, item.Summary, item.Category)
	case DispositionEdit:
		summary := strings.TrimSpace(decision.Summary)
		category := textutil.NormalizeCategory(decision.Category)
		if summary == "" {
			summary = item.Summary
		}
		if category == "" {
			category = item.Category
		}
		return s.store.Approve(ctx, item.ID, summary, category)
	case DispositionSkip:
		return s.store.Skip(ctx, item.ID)
	default:
		return fmt.Errorf("unknown disposition %q for %s", decision.Disposition, item.Path)
	}
}
