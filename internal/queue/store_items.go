package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dms/internal/document"
)

const itemColumns = `id, run_id, path, kind, paired_with, content_hash,
    change_type, status, category, summary, error_message, created_at, updated_at`

// ErrNoActiveRun indicates no scan has produced a pending change set.
var ErrNoActiveRun = errors.New("no active run")

// ReplaceRun discards any existing run and persists a fresh one with its
// work items in a single transaction.
func (s *Store) ReplaceRun(ctx context.Context, run Run, items []Item) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin replace tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM runs"); err != nil {
			return fmt.Errorf("clear previous runs: %w", err)
		}

		timestamp := run.ScannedAt.UTC().Format(time.RFC3339Nano)
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO runs (id, store_hash, scanned_at) VALUES (?, ?, ?)",
			run.ID, run.StoreHash, timestamp,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		for _, item := range items {
			if !ValidItemStatus(item.Status) {
				return fmt.Errorf("invalid item status %q for %s", item.Status, item.Path)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO pending_items (
                    run_id, path, kind, paired_with, content_hash,
                    change_type, status, category, summary, error_message,
                    created_at, updated_at
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID,
				item.Path,
				string(item.Kind),
				nullableString(item.PairedWith),
				nullableString(item.ContentHash),
				string(item.Change),
				string(item.Status),
				nullableString(item.Category),
				nullableString(item.Summary),
				nullableString(item.ErrorMessage),
				now,
				now,
			); err != nil {
				return fmt.Errorf("insert item %s: %w", item.Path, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit replace: %w", err)
		}
		return nil
	})
}

// ActiveRun returns the current run, or ErrNoActiveRun when none exists.
func (s *Store) ActiveRun(ctx context.Context) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT id, store_hash, scanned_at FROM runs LIMIT 1")
	var (
		run       Run
		scannedAt string
	)
	if err := row.Scan(&run.ID, &run.StoreHash, &scannedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveRun
		}
		return nil, fmt.Errorf("query active run: %w", err)
	}
	run.ScannedAt = parseTimestamp(scannedAt)
	return &run, nil
}

// ClearRun removes the active run and all of its items.
func (s *Store) ClearRun(ctx context.Context) error {
	if _, err := s.execWithRetry(ctx, "DELETE FROM runs"); err != nil {
		return fmt.Errorf("clear run: %w", err)
	}
	return nil
}

// ItemsForRun lists the run's items ordered by path.
func (s *Store) ItemsForRun(ctx context.Context, runID string) ([]*Item, error) {
	return s.queryItems(ctx,
		"SELECT "+itemColumns+" FROM pending_items WHERE run_id = ? ORDER BY path",
		runID)
}

// ItemsByStatus lists the run's items in any of the given statuses.
func (s *Store) ItemsByStatus(ctx context.Context, runID string, statuses ...ItemStatus) ([]*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, 0, len(statuses)+1)
	args = append(args, runID)
	for i, status := range statuses {
		placeholders[i] = "?"
		args = append(args, string(status))
	}
	query := "SELECT " + itemColumns + " FROM pending_items WHERE run_id = ? AND status IN (" +
		strings.Join(placeholders, ", ") + ") ORDER BY path"
	return s.queryItems(ctx, query, args...)
}

// ApprovedItems lists the run's items that passed review.
func (s *Store) ApprovedItems(ctx context.Context, runID string) ([]*Item, error) {
	return s.ItemsByStatus(ctx, runID, ItemApproved)
}

// GetByID fetches a single item.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	items, err := s.queryItems(ctx,
		"SELECT "+itemColumns+" FROM pending_items WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("item %d not found", id)
	}
	return items[0], nil
}

// UpdateSummary records a successful summarization.
func (s *Store) UpdateSummary(ctx context.Context, id int64, summary, category string) error {
	return s.updateItem(ctx, id, ItemSummarized, summary, category, "")
}

// MarkFailed records a summarization failure against the item without
// touching the rest of the run.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	return s.updateItem(ctx, id, ItemFailed, "", "", message)
}

// Approve marks an item approved, persisting any reviewer edits.
func (s *Store) Approve(ctx context.Context, id int64, summary, category string) error {
	return s.updateItem(ctx, id, ItemApproved, summary, category, "")
}

// Skip defers an item; it stays in the pending change set for a later run.
func (s *Store) Skip(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		"UPDATE pending_items SET status = ?, updated_at = ? WHERE id = ?",
		string(ItemSkipped), now, id)
	if err != nil {
		return fmt.Errorf("skip item %d: %w", id, err)
	}
	return requireRow(res, id)
}

// MarkApplied flips all approved items of the run to applied.
func (s *Store) MarkApplied(ctx context.Context, runID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(ctx,
		"UPDATE pending_items SET status = ?, updated_at = ? WHERE run_id = ? AND status = ?",
		string(ItemApplied), now, runID, string(ItemApproved)); err != nil {
		return fmt.Errorf("mark applied: %w", err)
	}
	return nil
}

// StatusCounts tallies the run's items per status.
func (s *Store) StatusCounts(ctx context.Context, runID string) (map[ItemStatus]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(1) FROM pending_items WHERE run_id = ? GROUP BY status", runID)
	if err != nil {
		return nil, fmt.Errorf("count statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[ItemStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[ItemStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func (s *Store) updateItem(ctx context.Context, id int64, status ItemStatus, summary, category, message string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !lifecyclePhase(current.Status).CanTransition(lifecyclePhase(status)) {
		return fmt.Errorf("item %d: invalid transition %s -> %s", id, current.Status, status)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(ctx,
		`UPDATE pending_items
         SET status = ?, summary = ?, category = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		string(status),
		nullableString(summary),
		nullableString(category),
		nullableString(message),
		now,
		id)
	if err != nil {
		return fmt.Errorf("update item %d: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %d not found", id)
	}
	return nil
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]*Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*Item
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func scanItem(rows *sql.Rows) (*Item, error) {
	var (
		item       Item
		kind       string
		pairedWith sql.NullString
		hash       sql.NullString
		change     string
		status     string
		category   sql.NullString
		summary    sql.NullString
		errMsg     sql.NullString
		createdAt  string
		updatedAt  string
	)
	if err := rows.Scan(
		&item.ID, &item.RunID, &item.Path, &kind, &pairedWith, &hash,
		&change, &status, &category, &summary, &errMsg, &createdAt, &updatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	item.Kind = document.Kind(kind)
	item.PairedWith = stringOrEmpty(pairedWith)
	item.ContentHash = stringOrEmpty(hash)
	item.Change = document.Status(change)
	item.Status = ItemStatus(status)
	item.Category = stringOrEmpty(category)
	item.Summary = stringOrEmpty(summary)
	item.ErrorMessage = stringOrEmpty(errMsg)
	item.CreatedAt = parseTimestamp(createdAt)
	item.UpdatedAt = parseTimestamp(updatedAt)
	return &item, nil
}
