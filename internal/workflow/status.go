package workflow

import (
	"context"
	"errors"

	"dms/internal/catalog"
	"dms/internal/document"
	"dms/internal/queue"
	"dms/internal/scanner"
)

// Status is a point-in-time view of the store and the pending change set.
type Status struct {
	StorePath   string
	Documents   int
	StoreCounts map[document.Status]int
	UpdatedAt   string
	LastRunID   string

	Run       *queue.Run
	RunCounts map[queue.ItemStatus]int

	Orphans []string
}

// Status reports on the state store and any active run.
func (p *Pipeline) Status(ctx context.Context) (*Status, error) {
	snapshot, err := catalog.Load(p.cfg.Paths.IndexPath)
	if err != nil {
		return nil, err
	}

	status := &Status{
		StorePath:   snapshot.Path,
		Documents:   len(snapshot.State.Documents),
		StoreCounts: snapshot.State.CountByStatus(),
		UpdatedAt:   snapshot.State.UpdatedAt,
		LastRunID:   snapshot.State.LastRunID,
	}

	run, err := p.store.ActiveRun(ctx)
	switch {
	case err == nil:
		status.Run = run
		counts, err := p.store.StatusCounts(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		status.RunCounts = counts
	case errors.Is(err, queue.ErrNoActiveRun):
	default:
		return nil, err
	}

	if orphans, err := p.Orphans(ctx); err == nil {
		status.Orphans = orphans
	}
	return status, nil
}

// Orphans lists files on disk that the state store does not track.
func (p *Pipeline) Orphans(ctx context.Context) ([]string, error) {
	snapshot, err := catalog.Load(p.cfg.Paths.IndexPath)
	if err != nil {
		return nil, err
	}
	scan, err := scanner.New(p.cfg, p.logger).Scan(ctx, snapshot.State.Documents)
	if err != nil {
		return nil, err
	}
	return catalog.Orphans(snapshot.State, scan.DiskPaths), nil
}
