package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dms/internal/apply"
	"dms/internal/catalog"
	"dms/internal/config"
	"dms/internal/logging"
	"dms/internal/notifications"
	"dms/internal/pairing"
	"dms/internal/queue"
	"dms/internal/review"
	"dms/internal/scanner"
	"dms/internal/summarize"
)

// Pipeline wires the stages together over a shared pending store. Each
// stage is also callable on its own so the CLI can run them as separate
// commands.
type Pipeline struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	notifier notifications.Service
	client   summarize.Generator
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithNotifier overrides the notification service.
func WithNotifier(notifier notifications.Service) Option {
	return func(p *Pipeline) {
		if notifier != nil {
			p.notifier = notifier
		}
	}
}

// WithGenerator overrides the summarization model client.
func WithGenerator(client summarize.Generator) Option {
	return func(p *Pipeline) {
		p.client = client
	}
}

// New constructs a pipeline over an open pending store.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Pipeline {
	pipeline := &Pipeline{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		notifier: notifications.NewService(cfg),
	}
	for _, opt := range opts {
		opt(pipeline)
	}
	return pipeline
}

// ScanOutcome reports what a scan found and which run now holds it.
type ScanOutcome struct {
	RunID      string
	Work       int
	Deleted    int
	Suppressed []string
	Notes      []pairing.Note
	Unchanged  int
	Errors     []scanner.ScanError
}

// Empty reports whether the scan found no outstanding work.
func (o *ScanOutcome) Empty() bool {
	return o.Work == 0 && o.Deleted == 0
}

// Scan walks the document tree, pairs artifacts with originals, and
// replaces the pending change set with the outstanding work.
func (p *Pipeline) Scan(ctx context.Context) (*ScanOutcome, error) {
	ctx = logging.WithStage(ctx, "scan")
	logger := logging.WithContext(ctx, p.logger)

	snapshot, err := catalog.Load(p.cfg.Paths.IndexPath)
	if err != nil {
		if errors.Is(err, catalog.ErrNoStateBlock) {
			return nil, err
		}
		return nil, fmt.Errorf("load store (run 'dms init' first): %w", err)
	}

	scan, err := scanner.New(p.cfg, logger).Scan(ctx, snapshot.State.Documents)
	if err != nil {
		return nil, err
	}

	filtered := pairing.New(p.cfg, logger).Filter(scan.Changes, scan.DiskPaths)
	for _, note := range filtered.Notes {
		logger.Warn("pairing ambiguity", logging.Error(note.Err()))
	}

	outcome := &ScanOutcome{
		Work:       len(filtered.Work),
		Deleted:    len(filtered.Deleted),
		Suppressed: filtered.Suppressed,
		Notes:      filtered.Notes,
		Unchanged:  scan.Unchanged,
		Errors:     scan.Errors,
	}

	if outcome.Empty() {
		if err := p.store.ClearRun(ctx); err != nil {
			return nil, err
		}
		logger.Info("scan found no outstanding work",
			logging.Int("unchanged", scan.Unchanged))
		return outcome, nil
	}

	run := queue.Run{
		ID:        uuid.NewString(),
		StoreHash: snapshot.Hash,
		ScannedAt: time.Now().UTC(),
	}
	items := make([]queue.Item, 0, len(filtered.Work)+len(filtered.Deleted))
	for _, record := range filtered.Work {
		items = append(items, queue.NewItem(run.ID, record))
	}
	for _, record := range filtered.Deleted {
		items = append(items, queue.NewItem(run.ID, record))
	}
	if err := p.store.ReplaceRun(ctx, run, items); err != nil {
		return nil, err
	}

	outcome.RunID = run.ID
	logger = logging.WithContext(logging.WithRunID(ctx, run.ID), p.logger)
	logger.Info("scan complete",
		logging.Int("work", outcome.Work),
		logging.Int("deleted", outcome.Deleted),
		logging.Int("suppressed", len(outcome.Suppressed)),
		logging.Int("unchanged", outcome.Unchanged))
	return outcome, nil
}

// Summarize runs the summarization stage against the active run.
func (p *Pipeline) Summarize(ctx context.Context, opts ...summarize.Option) (summarize.Result, error) {
	run, err := p.store.ActiveRun(ctx)
	if err != nil {
		return summarize.Result{}, err
	}
	ctx = logging.WithRunID(logging.WithStage(ctx, "summarize"), run.ID)
	summarizer := summarize.New(p.cfg, p.store, p.client, logging.WithContext(ctx, p.logger), opts...)
	result, err := summarizer.Run(ctx, run)
	if err != nil {
		p.notifyError(ctx, err, "summarize")
		return result, err
	}
	if result.Summarized > 0 && !summarizer.DryRun() {
		_ = p.notifier.NotifyReviewReady(ctx, result.Summarized)
	}
	return result, nil
}

// Review runs the review stage with the supplied reviewer.
func (p *Pipeline) Review(ctx context.Context, reviewer review.Reviewer) (review.Result, error) {
	run, err := p.store.ActiveRun(ctx)
	if err != nil {
		return review.Result{}, err
	}
	ctx = logging.WithRunID(logging.WithStage(ctx, "review"), run.ID)
	return review.NewSession(p.store, reviewer, logging.WithContext(ctx, p.logger)).Run(ctx, run)
}

// Apply commits the approved changes of the active run to the state store.
func (p *Pipeline) Apply(ctx context.Context) (apply.Result, error) {
	run, err := p.store.ActiveRun(ctx)
	if err != nil {
		return apply.Result{}, err
	}
	ctx = logging.WithRunID(logging.WithStage(ctx, "apply"), run.ID)
	result, err := apply.New(p.cfg, p.store, logging.WithContext(ctx, p.logger)).Run(ctx, run)
	if err != nil {
		p.notifyError(ctx, err, "apply")
		return result, err
	}
	if result.Applied > 0 || result.Removed > 0 {
		_ = p.notifier.NotifyApplied(ctx, result.Applied, result.Removed)
	}
	return result, nil
}

// Auto runs the full pipeline end to end with the supplied reviewer.
func (p *Pipeline) Auto(ctx context.Context, reviewer review.Reviewer) (*AutoOutcome, error) {
	outcome := &AutoOutcome{}

	scan, err := p.Scan(ctx)
	if err != nil {
		return outcome, err
	}
	outcome.Scan = scan
	if scan.Empty() {
		return outcome, nil
	}

	outcome.Summarize, err = p.Summarize(ctx)
	if err != nil {
		return outcome, err
	}
	outcome.Review, err = p.Review(ctx, reviewer)
	if err != nil {
		return outcome, err
	}
	outcome.Apply, err = p.Apply(ctx)
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

// AutoOutcome aggregates per-stage results of a full pipeline run.
type AutoOutcome struct {
	Scan      *ScanOutcome
	Summarize summarize.Result
	Review    review.Result
	Apply     apply.Result
}

func (p *Pipeline) notifyError(ctx context.Context, err error, stage string) {
	if notifyErr := p.notifier.NotifyError(ctx, err, stage); notifyErr != nil {
		p.logger.Warn("notification failed", logging.Error(notifyErr))
	}
}
