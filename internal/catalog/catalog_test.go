package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dms/internal/document"
)

func newStoreBytes(t *testing.T, state *State) []byte {
	t.Helper()
	data, err := SpliceState(NewIndexDocument("Test Catalog"), state)
	if err != nil {
		t.Fatalf("SpliceState: %v", err)
	}
	return data
}

func TestWriteNewAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	if err := WriteNew(path, "My Docs"); err != nil {
		t.Fatalf("WriteNew: %v", err)
	}

	snapshot, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snapshot.State.Documents) != 0 {
		t.Fatalf("expected empty documents, got %d", len(snapshot.State.Documents))
	}
	if snapshot.Hash == "" {
		t.Fatal("expected snapshot hash")
	}

	if err := WriteNew(path, "My Docs"); err == nil {
		t.Fatal("expected refusal to overwrite existing store")
	}
}

func TestSpliceStateRoundTrip(t *testing.T) {
	state := NewState()
	state.Documents["./a.pdf"] = document.Record{
		Path:        "./a.pdf",
		ContentHash: "abc123",
		Kind:        document.KindOriginal,
		Category:    "Guides",
		Summary:     "A guide.",
		Status:      document.StatusApplied,
	}

	data := newStoreBytes(t, state)
	parsed, err := ParseState(data)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	got, ok := parsed.Documents["./a.pdf"]
	if !ok {
		t.Fatal("record missing after round trip")
	}
	if got.Summary != "A guide." || got.Category != "Guides" || got.Status != document.StatusApplied {
		t.Fatalf("record corrupted: %+v", got)
	}
}

// Summaries can contain every character class that breaks naive
// pattern-substitution mechanisms. They must survive a splice byte-exact.
func TestSpliceStateLiteralHostileContent(t *testing.T) {
	hostile := `C:\temp\file "quoted" \n not-a-newline $1 ${name} \\server\share ` +
		"```json fenced``` </div> <script>alert(1)</script> 100% $&"

	state := NewState()
	state.Documents["./notes.md"] = document.Record{
		Path:        "./notes.md",
		ContentHash: "ff00",
		Kind:        document.KindOriginal,
		Category:    `Back\slash $2`,
		Summary:     hostile,
		Status:      document.StatusApplied,
	}

	data := newStoreBytes(t, state)

	parsed, err := ParseState(data)
	if err != nil {
		t.Fatalf("ParseState: %v", err)
	}
	got := parsed.Documents["./notes.md"]
	if got.Summary != hostile {
		t.Fatalf("summary corrupted:\n got: %q\nwant: %q", got.Summary, hostile)
	}
	if got.Category != `Back\slash $2` {
		t.Fatalf("category corrupted: %q", got.Category)
	}

	// A second splice over the same document must also round-trip.
	data2, err := SpliceState(data, parsed)
	if err != nil {
		t.Fatalf("second SpliceState: %v", err)
	}
	parsed2, err := ParseState(data2)
	if err != nil {
		t.Fatalf("second ParseState: %v", err)
	}
	if parsed2.Documents["./notes.md"].Summary != hostile {
		t.Fatal("summary corrupted on second splice")
	}
}

func TestSpliceStatePreservesSurroundingDocument(t *testing.T) {
	data := newStoreBytes(t, NewState())
	start, end, err := LocateStateBlock(data)
	if err != nil {
		t.Fatalf("LocateStateBlock: %v", err)
	}

	state := NewState()
	state.Documents["./x.pdf"] = document.Record{Path: "./x.pdf", Kind: document.KindOriginal, Status: document.StatusApplied}
	updated, err := SpliceState(data, state)
	if err != nil {
		t.Fatalf("SpliceState: %v", err)
	}

	newStart, newEnd, err := LocateStateBlock(updated)
	if err != nil {
		t.Fatalf("LocateStateBlock after splice: %v", err)
	}
	if !bytes.Equal(data[:start], updated[:newStart]) {
		t.Fatal("content before state block changed")
	}
	if !bytes.Equal(data[end:], updated[newEnd:]) {
		t.Fatal("content after state block changed")
	}
}

func TestParseStateMissingBlock(t *testing.T) {
	if _, err := ParseState([]byte("<html><body>no block</body></html>")); err != ErrNoStateBlock {
		t.Fatalf("expected ErrNoStateBlock, got %v", err)
	}
}

func TestParseStateRejectsMalformedBlock(t *testing.T) {
	doc := `<script id="dms-state" type="application/json">{not json}</script>`
	if _, err := ParseState([]byte(doc)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestOrphans(t *testing.T) {
	state := NewState()
	state.Documents["./a.pdf"] = document.Record{Path: "./a.pdf"}

	disk := []string{"./b.pdf", "./a.pdf", "./md_outputs/a.pdf.txt"}
	got := Orphans(state, disk)
	want := []string{"./b.pdf", "./md_outputs/a.pdf.txt"}
	if len(got) != len(want) {
		t.Fatalf("orphans = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("orphans = %v, want %v", got, want)
		}
	}
}

func TestLoadMissingStore(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.html")); err == nil {
		t.Fatal("expected error for missing store")
	}
}

func TestStateCountByStatus(t *testing.T) {
	state := NewState()
	state.Documents["./a"] = document.Record{Status: document.StatusApplied}
	state.Documents["./b"] = document.Record{Status: document.StatusApplied}
	state.Documents["./c"] = document.Record{Status: document.StatusUnchanged}

	counts := state.CountByStatus()
	if counts[document.StatusApplied] != 2 || counts[document.StatusUnchanged] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestHashChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	if err := WriteNew(path, ""); err != nil {
		t.Fatal(err)
	}
	before, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	state := NewState()
	state.Documents["./a.pdf"] = document.Record{Path: "./a.pdf", Status: document.StatusApplied}
	updated, err := SpliceState(before.Data, state)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		t.Fatal(err)
	}

	after, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.EqualFold(before.Hash, after.Hash) {
		t.Fatal("hash did not change with content")
	}
}
