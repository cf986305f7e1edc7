// Package catalog reads and rewrites the persistent store document.
//
// The store is an HTML catalog carrying its authoritative state in an
// embedded JSON block (<script id="dms-state" type="application/json">).
// The surrounding document belongs to external renderers; this package
// only ever touches the block span.
//
// The anchor is located with pattern matching, but the replacement is a
// literal buffer splice: the new payload is concatenated around the located
// span and never passes through a substitution interpreter. This is what
// makes records containing backslashes, escape sequences, or "$1"-style
// references safe to persist.
//
// All writes to the store go through the apply engine; everything here is
// read-only or operates on in-memory buffers.
package catalog
