package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

//go:embed index_template.html
var indexTemplate string

// NewIndexDocument renders a fresh store document with an empty state
// block. title appears in the page header only; it carries no state.
func NewIndexDocument(title string) []byte {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Document Index"
	}
	return []byte(strings.ReplaceAll(indexTemplate, "{{TITLE}}", title))
}

// WriteNew creates a fresh store document at path. Refuses to overwrite an
// existing store.
func WriteNew(path, title string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("store already exists at %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat store: %w", err)
	}
	data := NewIndexDocument(title)
	spliced, err := SpliceState(data, NewState())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, spliced, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}
