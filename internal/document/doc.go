// Package document defines the DocumentRecord model shared by the scanner,
// pairer, pending store, and catalog.
//
// Invariants enforced by convention across the pipeline:
//   - ContentHash changes only through the scanner.
//   - Category and Summary change only through the summarizer or review.
//   - Status changes follow the transition table in status.go.
package document
