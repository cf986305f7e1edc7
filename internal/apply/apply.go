package apply

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"dms/internal/catalog"
	"dms/internal/config"
	"dms/internal/document"
	"dms/internal/fileutil"
	"dms/internal/logging"
	"dms/internal/queue"
	"dms/internal/services"
)

const backupTimeFormat = "20060102-150405"

// CommitFunc writes the updated store document. Split out so tests can
// inject write failures.
type CommitFunc func(path string, data []byte) error

// Result tallies one apply pass.
type Result struct {
	Applied    int
	Removed    int
	BackupPath string
}

// Engine commits approved changes to the state store.
type Engine struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	commit CommitFunc
}

// Option customizes the engine.
type Option func(*Engine)

// WithCommitFunc overrides how the store document is written.
func WithCommitFunc(commit CommitFunc) Option {
	return func(e *Engine) {
		if commit != nil {
			e.commit = commit
		}
	}
}

// New constructs an apply engine.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Engine {
	engine := &Engine{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "apply"),
		commit: func(path string, data []byte) error {
			return fileutil.WriteFileAtomic(path, data, 0o644)
		},
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Run commits the run's approved items to the state store. The store file
// is locked for the duration, the snapshot hash is checked against the one
// the run was computed from, and a verified backup is taken before the
// splice. A failed write restores the backup; if even that fails the backup
// path is reported in the error.
func (e *Engine) Run(ctx context.Context, run *queue.Run) (Result, error) {
	var result Result

	approved, err := e.store.ApprovedItems(ctx, run.ID)
	if err != nil {
		return result, fmt.Errorf("load approved items: %w", err)
	}
	if len(approved) == 0 {
		e.logger.Info("nothing approved, store untouched")
		return result, nil
	}

	lock := flock.New(e.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return result, services.Wrap(services.ErrApplyFailure, "apply", "lock", e.cfg.LockPath(), err)
	}
	if !locked {
		return result, services.Wrap(services.ErrApplyConflict, "apply", "lock",
			"store locked by another process", nil)
	}
	defer func() { _ = lock.Unlock() }()

	snapshot, err := catalog.Load(e.cfg.Paths.IndexPath)
	if err != nil {
		return result, services.Wrap(services.ErrApplyFailure, "apply", "load store", e.cfg.Paths.IndexPath, err)
	}
	if snapshot.Hash != run.StoreHash {
		return result, services.Wrap(services.ErrApplyConflict, "apply", "verify snapshot",
			"store changed since scan, rescan before applying", nil)
	}

	backupPath, err := e.backup(snapshot)
	if err != nil {
		return result, services.Wrap(services.ErrApplyFailure, "apply", "backup", backupPath, err)
	}
	result.BackupPath = backupPath

	for _, item := range approved {
		if item.Change == document.StatusDeleted {
			delete(snapshot.State.Documents, item.Path)
			result.Removed++
			continue
		}
		snapshot.State.Documents[item.Path] = item.Record()
		result.Applied++
	}
	snapshot.State.LastRunID = run.ID

	spliced, err := catalog.SpliceState(snapshot.Data, snapshot.State)
	if err != nil {
		return result, services.Wrap(services.ErrApplyFailure, "apply", "splice", e.cfg.Paths.IndexPath, err)
	}

	if commitErr := e.commit(snapshot.Path, spliced); commitErr != nil {
		if rollbackErr := e.rollback(snapshot, backupPath); rollbackErr != nil {
			return result, services.Wrap(services.ErrApplyFailure, "apply", "rollback",
				fmt.Sprintf("store may be corrupt, intact backup at %s", backupPath), rollbackErr)
		}
		e.logger.Warn("store write failed, backup restored",
			logging.String(logging.FieldPath, backupPath),
			logging.Error(commitErr))
		return result, services.Wrap(services.ErrApplyFailure, "apply", "write store",
			"write failed, previous store restored", commitErr)
	}

	if err := e.store.MarkApplied(ctx, run.ID); err != nil {
		return result, fmt.Errorf("mark applied: %w", err)
	}
	if err := e.store.ClearRun(ctx); err != nil {
		return result, fmt.Errorf("clear run: %w", err)
	}

	e.pruneBackups()
	e.logger.Info("store updated",
		logging.Int("applied", result.Applied),
		logging.Int("removed", result.Removed),
		logging.String("backup", backupPath))
	return result, nil
}

func (e *Engine) backup(snapshot *catalog.Snapshot) (string, error) {
	name := fmt.Sprintf("index-%s.html", time.Now().UTC().Format(backupTimeFormat))
	backupPath := filepath.Join(e.cfg.Paths.BackupDir, name)
	if err := os.MkdirAll(e.cfg.Paths.BackupDir, 0o755); err != nil {
		return backupPath, err
	}
	if err := fileutil.CopyFileVerified(snapshot.Path, backupPath); err != nil {
		return backupPath, err
	}
	return backupPath, nil
}

func (e *Engine) rollback(snapshot *catalog.Snapshot, backupPath string) error {
	if err := fileutil.CopyFileVerified(backupPath, snapshot.Path); err != nil {
		return err
	}
	restored, err := os.ReadFile(snapshot.Path)
	if err != nil {
		return err
	}
	if !bytes.Equal(restored, snapshot.Data) {
		return fmt.Errorf("restored store does not match pre-apply snapshot")
	}
	return nil
}

// pruneBackups keeps the newest backups up to the configured count. The
// timestamped names sort chronologically.
func (e *Engine) pruneBackups() {
	keep := e.cfg.Paths.BackupKeep
	if keep <= 0 {
		return
	}
	entries, err := os.ReadDir(e.cfg.Paths.BackupDir)
	if err != nil {
		e.logger.Warn("read backup dir", logging.Error(err))
		return
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "index-") && strings.HasSuffix(name, ".html") {
			names = append(names, name)
		}
	}
	if len(names) <= keep {
		return
	}
	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		stale := filepath.Join(e.cfg.Paths.BackupDir, name)
		if err := os.Remove(stale); err != nil {
			e.logger.Warn("prune backup", logging.String(logging.FieldPath, stale), logging.Error(err))
			continue
		}
	}
}
