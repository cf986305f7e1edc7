package document

// Status represents the lifecycle of a tracked document within a pipeline
// run and in the persistent store.
type Status string

const (
	StatusUntracked     Status = "untracked"
	StatusUnchanged     Status = "unchanged"
	StatusNew           Status = "new"
	StatusModified      Status = "modified"
	StatusDeleted       Status = "deleted"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusApplied       Status = "applied"
)

var allStatuses = []Status{
	StatusUntracked,
	StatusUnchanged,
	StatusNew,
	StatusModified,
	StatusDeleted,
	StatusPendingReview,
	StatusApproved,
	StatusApplied,
}

var validTransitions = map[Status][]Status{
	StatusUntracked:     {StatusNew},
	StatusUnchanged:     {StatusModified, StatusDeleted},
	StatusNew:           {StatusPendingReview, StatusDeleted},
	StatusModified:      {StatusPendingReview, StatusDeleted},
	StatusDeleted:       {StatusPendingReview},
	StatusPendingReview: {StatusApproved, StatusPendingReview},
	StatusApproved:      {StatusApplied, StatusPendingReview},
	StatusApplied:       {StatusModified, StatusDeleted, StatusUnchanged},
}

// Valid reports whether the status is a recognized value.
func (s Status) Valid() bool {
	for _, status := range allStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether moving from s to next follows the record
// state machine. Self-transitions are not allowed in general; only
// pending_review self-loops (a skipped item stays pending).
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsChange reports whether the status marks a scan-detected difference
// that belongs in a pending change set.
func (s Status) IsChange() bool {
	switch s {
	case StatusNew, StatusModified, StatusDeleted:
		return true
	default:
		return false
	}
}
