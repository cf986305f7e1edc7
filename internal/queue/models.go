package queue

import (
	"time"

	"dms/internal/document"
)

// ItemStatus represents the lifecycle of a pending work item.
type ItemStatus string

const (
	// ItemPending awaits summarization (or review, for deletions).
	ItemPending ItemStatus = "pending"
	// ItemSummarized holds an AI summary awaiting review.
	ItemSummarized ItemStatus = "summarized"
	// ItemFailed could not be summarized; the failure is recorded on the item.
	ItemFailed ItemStatus = "failed"
	// ItemApproved passed review and will be applied.
	ItemApproved ItemStatus = "approved"
	// ItemSkipped was deferred by the reviewer and stays pending next run.
	ItemSkipped ItemStatus = "skipped"
	// ItemApplied was committed to the state store.
	ItemApplied ItemStatus = "applied"
)

var allItemStatuses = []ItemStatus{
	ItemPending,
	ItemSummarized,
	ItemFailed,
	ItemApproved,
	ItemSkipped,
	ItemApplied,
}

var itemStatusSet = func() map[ItemStatus]struct{} {
	set := make(map[ItemStatus]struct{}, len(allItemStatuses))
	for _, status := range allItemStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ValidItemStatus reports whether the status is a known lifecycle value.
func ValidItemStatus(status ItemStatus) bool {
	_, ok := itemStatusSet[status]
	return ok
}

// lifecyclePhase maps an item status onto the document record state
// machine. Everything before approval is still pending review.
func lifecyclePhase(status ItemStatus) document.Status {
	switch status {
	case ItemApproved:
		return document.StatusApproved
	case ItemApplied:
		return document.StatusApplied
	default:
		return document.StatusPendingReview
	}
}

// Run identifies one scan and the state store snapshot it was computed
// against. The hash is compared at apply time to detect concurrent edits.
type Run struct {
	ID        string
	StoreHash string
	ScannedAt time.Time
}

// Item is one outstanding document change within a run.
type Item struct {
	ID           int64
	RunID        string
	Path         string
	Kind         document.Kind
	PairedWith   string
	ContentHash  string
	Change       document.Status
	Status       ItemStatus
	Category     string
	Summary      string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NeedsSummary reports whether the item still requires an AI summary.
// Deletions never do.
func (i *Item) NeedsSummary() bool {
	if i == nil {
		return false
	}
	return i.Status == ItemPending && i.Change != document.StatusDeleted
}

// NeedsReview reports whether the item should surface in the review stage.
// Failed items surface so the reviewer can supply text or defer them.
func (i *Item) NeedsReview() bool {
	if i == nil {
		return false
	}
	switch i.Status {
	case ItemSummarized, ItemFailed, ItemSkipped:
		return true
	case ItemPending:
		return i.Change == document.StatusDeleted
	default:
		return false
	}
}

// Record converts the item into the catalog record it will become once
// applied.
func (i *Item) Record() document.Record {
	return document.Record{
		Path:        i.Path,
		ContentHash: i.ContentHash,
		Kind:        i.Kind,
		PairedWith:  i.PairedWith,
		Category:    i.Category,
		Summary:     i.Summary,
		Status:      document.StatusApplied,
	}
}

// NewItem builds a pending item from a scanned record.
func NewItem(runID string, record document.Record) Item {
	return Item{
		RunID:       runID,
		Path:        record.Path,
		Kind:        record.Kind,
		PairedWith:  record.PairedWith,
		ContentHash: record.ContentHash,
		Change:      record.Status,
		Status:      ItemPending,
		Category:    record.Category,
		Summary:     record.Summary,
	}
}
