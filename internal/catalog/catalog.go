package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"time"

	"dms/internal/document"
	"dms/internal/fileutil"
)

// stateVersion is the current state block schema version. Bump when the
// block layout changes; external renderers key off it.
const stateVersion = 1

// stateBlockPattern locates the embedded state block inside the store
// document. Matching is only ever used to find the anchor span; the
// replacement itself is a literal buffer splice (see SpliceState), so
// content containing backslashes, dollar references, or fence markers can
// never be reinterpreted by the matcher.
var stateBlockPattern = regexp.MustCompile(
	`(?s)(<script\s+id="dms-state"\s+type="application/json"\s*>)(.*?)(</script>)`,
)

// ErrNoStateBlock indicates the store document carries no recognizable
// embedded state block.
var ErrNoStateBlock = errors.New("store document has no dms-state block")

// State is the structured payload embedded in the store document: the
// authoritative path -> record mapping plus run metadata.
type State struct {
	Version   int                        `json:"version"`
	UpdatedAt string                     `json:"updated_at,omitempty"`
	LastRunID string                     `json:"last_run_id,omitempty"`
	Documents map[string]document.Record `json:"documents"`
}

// NewState returns an empty state at the current schema version.
func NewState() *State {
	return &State{
		Version:   stateVersion,
		Documents: make(map[string]document.Record),
	}
}

// Snapshot is a point-in-time read of the store document: raw bytes, their
// content hash, and the parsed state. The hash is what apply later compares
// against to detect external modification.
type Snapshot struct {
	Path  string
	Data  []byte
	Hash  string
	State *State
}

// Load reads and parses the store document at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	state, err := ParseState(data)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Path:  path,
		Data:  data,
		Hash:  fileutil.HashBytes(data),
		State: state,
	}, nil
}

// ParseState extracts and decodes the embedded state block.
func ParseState(data []byte) (*State, error) {
	start, end, err := LocateStateBlock(data)
	if err != nil {
		return nil, err
	}
	payload := bytes.TrimSpace(data[start:end])
	state := NewState()
	if len(payload) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(payload, state); err != nil {
		return nil, fmt.Errorf("decode state block: %w", err)
	}
	if state.Documents == nil {
		state.Documents = make(map[string]document.Record)
	}
	return state, nil
}

// LocateStateBlock returns the byte span [start, end) of the state block's
// inner JSON payload. Pattern matching ends here: callers substitute into
// the returned span directly.
func LocateStateBlock(data []byte) (start, end int, err error) {
	loc := stateBlockPattern.FindSubmatchIndex(data)
	if loc == nil {
		return 0, 0, ErrNoStateBlock
	}
	// Submatch 2 is the inner payload between the script tags.
	return loc[4], loc[5], nil
}

// SpliceState serializes state and splices it into the store document as an
// exact literal span. The encoder's default HTML escaping keeps "</script>"
// sequences inside document content from terminating the block early.
func SpliceState(data []byte, state *State) ([]byte, error) {
	start, end, err := LocateStateBlock(data)
	if err != nil {
		return nil, err
	}
	state.Version = stateVersion
	state.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state block: %w", err)
	}

	spliced := make([]byte, 0, len(data)-(end-start)+len(payload)+2)
	spliced = append(spliced, data[:start]...)
	spliced = append(spliced, '\n')
	spliced = append(spliced, payload...)
	spliced = append(spliced, '\n')
	spliced = append(spliced, data[end:]...)
	return spliced, nil
}

// SortedPaths returns the document keys in deterministic order.
func (s *State) SortedPaths() []string {
	paths := make([]string, 0, len(s.Documents))
	for path := range s.Documents {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// CountByStatus aggregates record counts per status.
func (s *State) CountByStatus() map[document.Status]int {
	counts := make(map[document.Status]int)
	for _, record := range s.Documents {
		counts[record.Status]++
	}
	return counts
}
