package document

import (
	"path"
	"path/filepath"
	"strings"
)

// Kind distinguishes source documents from machine-derived text artifacts.
type Kind string

const (
	// KindOriginal is a source document as authored or acquired.
	KindOriginal Kind = "original"
	// KindArtifact is a machine-generated text representation of an
	// original (OCR output, extracted PDF text).
	KindArtifact Kind = "artifact"
)

// Record is the per-path unit of tracked state. Path is the stable logical
// identifier; ContentHash is used for change detection only and is never an
// identity. PairedWith is a weak back-reference from an artifact to its
// original and does not own the other record's lifecycle.
type Record struct {
	Path        string `json:"path"`
	ContentHash string `json:"hash"`
	Kind        Kind   `json:"kind"`
	PairedWith  string `json:"paired_with,omitempty"`
	Category    string `json:"category,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Status      Status `json:"status"`
}

// LogicalPath converts a path relative to the document root into the
// canonical store key form: "./" prefixed, forward slashes.
func LogicalPath(rel string) string {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimPrefix(rel, "./")
	return "./" + path.Clean(rel)
}

// BaseName returns the final path element of a logical path.
func BaseName(logical string) string {
	return path.Base(logical)
}
