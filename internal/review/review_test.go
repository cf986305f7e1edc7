package review_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"dms/internal/document"
	"dms/internal/logging"
	"dms/internal/queue"
	"dms/internal/review"
	"dms/internal/testsupport"
)

type scriptedReviewer struct {
	decisions map[string]review.Decision
	seen      []string
}

func (r *scriptedReviewer) Review(_ context.Context, item *queue.Item) (review.Decision, error) {
	r.seen = append(r.seen, item.Path)
	if decision, ok := r.decisions[item.Path]; ok {
		return decision, nil
	}
	return review.Decision{Disposition: review.DispositionApprove}, nil
}

func seedStore(t *testing.T, items ...queue.Item) (*queue.Store, queue.Run) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	run := queue.Run{ID: uuid.NewString(), StoreHash: "h", ScannedAt: time.Now().UTC()}
	for i := range items {
		items[i].RunID = run.ID
	}
	if err := store.ReplaceRun(context.Background(), run, items); err != nil {
		t.Fatalf("ReplaceRun: %v", err)
	}
	return store, run
}

func TestSessionApproveEditSkip(t *testing.T) {
	store, run := seedStore(t,
		queue.Item{Path: "./a.pdf", Kind: document.KindOriginal, Change: document.StatusNew,
			Status: queue.ItemSummarized, Summary: "Alpha.", Category: "Notes"},
		queue.Item{Path: "./b.pdf", Kind: document.KindOriginal, Change: document.StatusNew,
			Status: queue.ItemSummarized, Summary: "Beta.", Category: "Notes"},
		queue.Item{Path: "./c.pdf", Kind: document.KindOriginal, Change: document.StatusNew,
			Status: queue.ItemSummarized, Summary: "Gamma.", Category: "Notes"},
	)
	reviewer := &scriptedReviewer{decisions: map[string]review.Decision{
		"./a.pdf": {Disposition: review.DispositionApprove},
		"./b.pdf": {Disposition: review.DispositionEdit, Summary: "Beta, edited.", Category: "reference"},
		"./c.pdf": {Disposition: review.DispositionSkip},
	}}

	session := review.NewSession(store, reviewer, logging.NewNop())
	result, err := session.Run(context.Background(), &run)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Approved != 2 || result.Skipped != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	approved, err := store.ApprovedItems(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("ApprovedItems: %v", err)
	}
	if len(approved) != 2 {
		t.Fatalf("expected 2 approved, got %d", len(approved))
	}
	if approved[1].Summary != "Beta, edited." || approved[1].Category != "Reference" {
		t.Fatalf("edit not persisted: %+v", approved[1])
	}

	skipped, err := store.ItemsByStatus(context.Background(), run.ID, queue.ItemSkipped)
	if err != nil {
		t.Fatalf("ItemsByStatus: %v", err)
	}
	if len(skipped) != 1 || skipped[0].Path != "./c.pdf" {
		t.Fatalf("unexpected skipped %+v", skipped)
	}
}

func TestSessionDeletionsReachReviewWithoutSummary(t *testing.T) {
	store, run := seedStore(t,
		queue.Item{Path: "./gone.pdf", Kind: document.KindOriginal, Change: document.StatusDeleted,
			Status: queue.ItemPending},
	)
	reviewer := &scriptedReviewer{}

	session := review.NewSession(store, reviewer, logging.NewNop())
	result, err := session.Run(context.Background(), &run)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Approved != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(reviewer.seen) != 1 || reviewer.seen[0] != "./gone.pdf" {
		t.Fatalf("deletion not presented: %v", reviewer.seen)
	}
}

func TestSessionUnsummarizedItemsNotPresented(t *testing.T) {
	store, run := seedStore(t,
		queue.Item{Path: "./a.pdf", Kind: document.KindOriginal, Change: document.StatusNew,
			Status: queue.ItemPending},
	)
	reviewer := &scriptedReviewer{}

	session := review.NewSession(store, reviewer, logging.NewNop())
	if _, err := session.Run(context.Background(), &run); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(reviewer.seen) != 0 {
		t.Fatalf("unsummarized item presented: %v", reviewer.seen)
	}
}

func TestAutoApproverSkipsFailedItems(t *testing.T) {
	store, run := seedStore(t,
		queue.Item{Path: "./a.pdf", Kind: document.KindOriginal, Change: document.StatusNew,
			Status: queue.ItemSummarized, Summary: "Alpha.", Category: "Notes"},
		queue.Item{Path: "./bad.pdf", Kind: document.KindOriginal, Change: document.StatusNew,
			Status: queue.ItemFailed, ErrorMessage: "malformed response"},
	)

	session := review.NewSession(store, review.AutoApprover{}, logging.NewNop())
	result, err := session.Run(context.Background(), &run)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Approved != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}
