// Package summarize generates AI summaries for pending document changes
// and persists them on the pending change set for review.
package summarize
