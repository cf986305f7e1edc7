package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"dms/internal/config"
	"dms/internal/logging"
	"dms/internal/queue"
	"dms/internal/services"
	"dms/internal/services/ollama"
	"dms/internal/textutil"
)

// Generator abstracts the model endpoint so tests can substitute one.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	HealthCheck(ctx context.Context) error
	Model() string
}

// Result tallies one summarization pass.
type Result struct {
	Summarized int
	Failed     int
	Skipped    int
	Proposals  []Proposal
}

// Proposal is a generated summary that was not persisted (dry-run mode).
type Proposal struct {
	Path     string
	Summary  string
	Category string
}

// Summarizer drives AI summarization for the pending change set.
type Summarizer struct {
	cfg    *config.Config
	store  *queue.Store
	client Generator
	logger *slog.Logger
	dryRun bool
}

// Option adjusts summarizer behavior.
type Option func(*Summarizer)

// WithDryRun makes the pass report proposals instead of persisting them.
func WithDryRun() Option {
	return func(s *Summarizer) {
		s.dryRun = true
	}
}

// New constructs a summarizer. A nil client falls back to the configured
// Ollama endpoint.
func New(cfg *config.Config, store *queue.Store, client Generator, logger *slog.Logger, opts ...Option) *Summarizer {
	if client == nil {
		client = ollama.NewClient(cfg)
	}
	s := &Summarizer{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: logging.NewComponentLogger(logger, "summarize"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DryRun reports whether the summarizer persists results.
func (s *Summarizer) DryRun() bool {
	return s.dryRun
}

// Run summarizes every item of the run that still needs it. Extraction
// failures are recorded per item and do not stop the pass. Connectivity
// failures abort the pass; summaries persisted before the failure are kept.
func (s *Summarizer) Run(ctx context.Context, run *queue.Run) (Result, error) {
	var result Result

	items, err := s.store.ItemsByStatus(ctx, run.ID, queue.ItemPending)
	if err != nil {
		return result, fmt.Errorf("load pending items: %w", err)
	}
	var work []*queue.Item
	for _, item := range items {
		if item.NeedsSummary() {
			work = append(work, item)
		}
	}
	if len(work) == 0 {
		return result, nil
	}

	if err := s.client.HealthCheck(ctx); err != nil {
		return result, err
	}

	workers := s.cfg.Workflow.SummaryWorkers
	if workers < 1 {
		workers = 1
	}
	s.logger.Info("summarizing pending items",
		logging.Int("items", len(work)),
		logging.Int("workers", workers),
		logging.String("model", s.client.Model()))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	proposals := make([]*Proposal, len(work))
	failures := make([]error, len(work))

	for i, item := range work {
		i, item := i, item
		group.Go(func() error {
			proposal, err := s.summarizeItem(groupCtx, item)
			if err == nil {
				proposals[i] = proposal
				return nil
			}
			if services.IsRunFatal(err) {
				// Abort the whole pass; untouched items stay pending.
				return err
			}
			failures[i] = err
			return nil
		})
	}
	groupErr := group.Wait()

	for i, item := range work {
		switch {
		case proposals[i] != nil:
			result.Summarized++
			result.Proposals = append(result.Proposals, *proposals[i])
		case failures[i] != nil:
			result.Failed++
			s.logger.Warn("summarization failed",
				logging.String(logging.FieldPath, item.Path),
				logging.Error(failures[i]))
			if s.dryRun {
				continue
			}
			if markErr := s.store.MarkFailed(ctx, item.ID, failures[i].Error()); markErr != nil {
				return result, fmt.Errorf("record failure for %s: %w", item.Path, markErr)
			}
		default:
			// Never ran or aborted mid-flight; still pending.
			result.Skipped++
		}
	}

	// Summaries persisted before an abort are kept.
	return result, groupErr
}

func (s *Summarizer) summarizeItem(ctx context.Context, item *queue.Item) (*Proposal, error) {
	content, err := os.ReadFile(s.resolve(item.Path))
	if err != nil {
		return nil, services.Wrap(services.ErrScan, "summarize", "read", item.Path, err)
	}

	prompt := ollama.SummaryPrompt(item.Path, string(content), s.cfg.Ollama.MaxWords)
	response, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	payload, err := Parse(response)
	if err != nil {
		return nil, err
	}

	summary := textutil.TruncateWords(textutil.CollapseWhitespace(payload.Summary), s.cfg.Ollama.MaxWords)
	category := textutil.NormalizeCategory(payload.Category)
	if !s.dryRun {
		if err := s.store.UpdateSummary(ctx, item.ID, summary, category); err != nil {
			return nil, fmt.Errorf("persist summary for %s: %w", item.Path, err)
		}
	}
	s.logger.Info("summarized",
		logging.String(logging.FieldPath, item.Path),
		logging.String("category", category),
		logging.Int("words", textutil.WordCount(summary)),
		logging.Bool("dry_run", s.dryRun))
	return &Proposal{Path: item.Path, Summary: summary, Category: category}, nil
}

func (s *Summarizer) resolve(logical string) string {
	rel := strings.TrimPrefix(logical, "./")
	return filepath.Join(s.cfg.Paths.DocDir, filepath.FromSlash(rel))
}
