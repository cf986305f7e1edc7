// Package scanner fingerprints the document tree and classifies each path
// as new, modified, deleted, or unchanged against the last persisted state.
//
// The scanner is strictly read-only toward the store: it emits an ephemeral
// Result and nothing else. Unreadable files surface as per-path ScanErrors
// and never abort the pass. Hidden files, office temp files, the store
// document itself, its lock, the backup tree, and configured ignore globs
// are excluded from tracking.
package scanner
