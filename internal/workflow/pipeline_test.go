package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"dms/internal/catalog"
	"dms/internal/config"
	"dms/internal/document"
	"dms/internal/logging"
	"dms/internal/queue"
	"dms/internal/review"
	"dms/internal/services"
	"dms/internal/testsupport"
	"dms/internal/workflow"
)

type cannedGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	calls     int
}

func (g *cannedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	for key, response := range g.responses {
		if strings.Contains(prompt, key) {
			return response, nil
		}
	}
	return "", fmt.Errorf("no canned response")
}

func (g *cannedGenerator) HealthCheck(context.Context) error { return nil }

func (g *cannedGenerator) Model() string { return "fake-model" }

func newPipeline(t *testing.T, gen *cannedGenerator) (*config.Config, *queue.Store, *workflow.Pipeline) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithSummaryWorkers(1))
	testsupport.InitStore(t, cfg)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	pipeline := workflow.New(cfg, store, logging.NewNop(), workflow.WithGenerator(gen))
	return cfg, store, pipeline
}

func TestAutoEndToEnd(t *testing.T) {
	gen := &cannedGenerator{responses: map[string]string{
		"./a.pdf": `{"summary": "Annual report for the board.", "category": "Finance"}`,
	}}
	cfg, _, pipeline := newPipeline(t, gen)
	testsupport.WriteDoc(t, cfg, "a.pdf", "annual report contents")

	outcome, err := pipeline.Auto(context.Background(), review.AutoApprover{})
	if err != nil {
		t.Fatalf("Auto: %v", err)
	}
	if outcome.Scan.Work != 1 || outcome.Summarize.Summarized != 1 ||
		outcome.Review.Approved != 1 || outcome.Apply.Applied != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	snapshot := testsupport.LoadStore(t, cfg)
	record, ok := snapshot.State.Documents["./a.pdf"]
	if !ok {
		t.Fatal("document not in store")
	}
	if record.Summary != "Annual report for the board." || record.Category != "Finance" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.Status != document.StatusApplied {
		t.Fatalf("unexpected status %s", record.Status)
	}

	// A second pass over the unchanged tree finds nothing to do.
	again, err := pipeline.Auto(context.Background(), review.AutoApprover{})
	if err != nil {
		t.Fatalf("Auto: %v", err)
	}
	if !again.Scan.Empty() {
		t.Fatalf("expected idle second pass, got %+v", again.Scan)
	}
}

func TestAutoPairsArtifactWithOriginal(t *testing.T) {
	gen := &cannedGenerator{responses: map[string]string{
		"img.jpeg.txt": `{"summary": "Extracted text from a scanned photo.", "category": "Images"}`,
	}}
	cfg, _, pipeline := newPipeline(t, gen)
	testsupport.WriteDoc(t, cfg, "img.jpeg", "binary-ish image bytes")
	testsupport.WriteArtifact(t, cfg, "img.jpeg.txt", "extracted text")

	outcome, err := pipeline.Auto(context.Background(), review.AutoApprover{})
	if err != nil {
		t.Fatalf("Auto: %v", err)
	}
	if outcome.Scan.Work != 1 {
		t.Fatalf("expected artifact alone in work set, got %+v", outcome.Scan)
	}
	if len(outcome.Scan.Suppressed) != 1 || outcome.Scan.Suppressed[0] != "./img.jpeg" {
		t.Fatalf("original not suppressed: %v", outcome.Scan.Suppressed)
	}

	snapshot := testsupport.LoadStore(t, cfg)
	record, ok := snapshot.State.Documents["./md_outputs/img.jpeg.txt"]
	if !ok {
		t.Fatal("artifact not in store")
	}
	if record.PairedWith != "./img.jpeg" {
		t.Fatalf("PairedWith = %q", record.PairedWith)
	}
	if _, ok := snapshot.State.Documents["./img.jpeg"]; ok {
		t.Fatal("suppressed original must not enter the store")
	}
	if gen.calls != 1 {
		t.Fatalf("expected one model call, got %d", gen.calls)
	}
}

func TestApplyRefusesExternallyModifiedStore(t *testing.T) {
	gen := &cannedGenerator{responses: map[string]string{
		"./a.pdf": `{"summary": "A document.", "category": "Notes"}`,
	}}
	cfg, _, pipeline := newPipeline(t, gen)
	testsupport.WriteDoc(t, cfg, "a.pdf", "contents")

	if _, err := pipeline.Scan(context.Background()); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if _, err := pipeline.Summarize(context.Background()); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if _, err := pipeline.Review(context.Background(), review.AutoApprover{}); err != nil {
		t.Fatalf("Review: %v", err)
	}

	// Concurrent edit between scan and apply.
	snapshot := testsupport.LoadStore(t, cfg)
	snapshot.State.Documents["./other.pdf"] = document.Record{
		Path: "./other.pdf", Kind: document.KindOriginal, Status: document.StatusApplied,
	}
	spliced, err := catalog.SpliceState(snapshot.Data, snapshot.State)
	if err != nil {
		t.Fatalf("SpliceState: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.IndexPath, spliced, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := pipeline.Apply(context.Background()); !errors.Is(err, services.ErrApplyConflict) {
		t.Fatalf("expected apply conflict, got %v", err)
	}

	// A rescan picks up the drift and apply then succeeds.
	if _, err := pipeline.Scan(context.Background()); err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if _, err := pipeline.Summarize(context.Background()); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if _, err := pipeline.Review(context.Background(), review.AutoApprover{}); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if _, err := pipeline.Apply(context.Background()); err != nil {
		t.Fatalf("Apply after rescan: %v", err)
	}
}

func TestScanReplacesStaleRun(t *testing.T) {
	gen := &cannedGenerator{}
	cfg, store, pipeline := newPipeline(t, gen)
	testsupport.WriteDoc(t, cfg, "a.pdf", "first")

	first, err := pipeline.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	testsupport.WriteDoc(t, cfg, "b.pdf", "second")

	second, err := pipeline.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if second.RunID == first.RunID {
		t.Fatal("rescan must mint a fresh run")
	}
	active, err := store.ActiveRun(context.Background())
	if err != nil {
		t.Fatalf("ActiveRun: %v", err)
	}
	if active.ID != second.RunID {
		t.Fatalf("active run %s, want %s", active.ID, second.RunID)
	}
	items, err := store.ItemsForRun(context.Background(), second.RunID)
	if err != nil {
		t.Fatalf("ItemsForRun: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected both documents pending, got %d", len(items))
	}
}

func TestStatusReportsStoreAndRun(t *testing.T) {
	gen := &cannedGenerator{}
	cfg, _, pipeline := newPipeline(t, gen)
	testsupport.WriteDoc(t, cfg, "a.pdf", "contents")

	if _, err := pipeline.Scan(context.Background()); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	status, err := pipeline.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Run == nil {
		t.Fatal("active run missing from status")
	}
	if status.RunCounts[queue.ItemPending] != 1 {
		t.Fatalf("unexpected run counts %v", status.RunCounts)
	}
	if status.Documents != 0 {
		t.Fatalf("store should be empty before apply, got %d", status.Documents)
	}
	if len(status.Orphans) != 1 || status.Orphans[0] != "./a.pdf" {
		t.Fatalf("unexpected orphans %v", status.Orphans)
	}
}

func TestSummarizeWithoutRun(t *testing.T) {
	gen := &cannedGenerator{}
	_, _, pipeline := newPipeline(t, gen)

	if _, err := pipeline.Summarize(context.Background()); !errors.Is(err, queue.ErrNoActiveRun) {
		t.Fatalf("expected ErrNoActiveRun, got %v", err)
	}
}
