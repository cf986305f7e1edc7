package pairing

import (
	"testing"

	"dms/internal/document"
	"dms/internal/logging"
	"dms/internal/testsupport"
)

func newPairer(t *testing.T) *Pairer {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return New(cfg, logging.NewNop())
}

func TestArtifactPathTransform(t *testing.T) {
	pairer := newPairer(t)
	got := pairer.ArtifactPath("./img.jpeg")
	want := "./md_outputs/img.jpeg.txt"
	if got != want {
		t.Fatalf("ArtifactPath = %q, want %q", got, want)
	}
	if original := pairer.OriginalPath(want); original != "./img.jpeg" {
		t.Fatalf("OriginalPath = %q, want ./img.jpeg", original)
	}
	if original := pairer.OriginalPath("./img.jpeg"); original != "" {
		t.Fatalf("OriginalPath outside artifact dir = %q, want empty", original)
	}
}

func TestFilterChangedArtifactSuppressesOriginal(t *testing.T) {
	pairer := newPairer(t)
	changes := []document.Record{
		{Path: "./img.jpeg", Kind: document.KindOriginal, Status: document.StatusNew},
		{Path: "./md_outputs/img.jpeg.txt", Kind: document.KindArtifact, Status: document.StatusNew},
	}
	disk := []string{"./img.jpeg", "./md_outputs/img.jpeg.txt"}

	result := pairer.Filter(changes, disk)
	if len(result.Work) != 1 {
		t.Fatalf("expected 1 work item, got %d", len(result.Work))
	}
	item := result.Work[0]
	if item.Path != "./md_outputs/img.jpeg.txt" {
		t.Fatalf("unexpected work item %q", item.Path)
	}
	if item.PairedWith != "./img.jpeg" {
		t.Fatalf("PairedWith = %q, want ./img.jpeg", item.PairedWith)
	}
	if len(result.Suppressed) != 1 || result.Suppressed[0] != "./img.jpeg" {
		t.Fatalf("Suppressed = %v", result.Suppressed)
	}
}

func TestFilterUnchangedArtifactSuppressesBoth(t *testing.T) {
	pairer := newPairer(t)
	changes := []document.Record{
		{Path: "./img.jpeg", Kind: document.KindOriginal, Status: document.StatusModified},
	}
	disk := []string{"./img.jpeg", "./md_outputs/img.jpeg.txt"}

	result := pairer.Filter(changes, disk)
	if len(result.Work) != 0 {
		t.Fatalf("expected empty work set, got %v", result.Work)
	}
	if len(result.Suppressed) != 1 {
		t.Fatalf("Suppressed = %v", result.Suppressed)
	}
}

func TestFilterNoArtifactKeepsOriginal(t *testing.T) {
	pairer := newPairer(t)
	changes := []document.Record{
		{Path: "./a.pdf", Kind: document.KindOriginal, Status: document.StatusNew},
	}
	disk := []string{"./a.pdf"}

	result := pairer.Filter(changes, disk)
	if len(result.Work) != 1 || result.Work[0].Path != "./a.pdf" {
		t.Fatalf("Work = %v", result.Work)
	}
	if len(result.Notes) != 0 {
		t.Fatalf("unexpected notes %v", result.Notes)
	}
}

func TestFilterAmbiguousCandidatesNeverSuppress(t *testing.T) {
	pairer := newPairer(t)
	changes := []document.Record{
		{Path: "./report.docx", Kind: document.KindOriginal, Status: document.StatusModified},
	}
	disk := []string{
		"./report.docx",
		"./md_outputs/report.docx.v1.txt",
		"./md_outputs/report.docx.final.txt",
	}

	result := pairer.Filter(changes, disk)
	if len(result.Work) != 1 || result.Work[0].Path != "./report.docx" {
		t.Fatalf("Work = %v", result.Work)
	}
	if len(result.Suppressed) != 0 {
		t.Fatalf("Suppressed = %v", result.Suppressed)
	}
	if len(result.Notes) != 1 {
		t.Fatalf("Notes = %v", result.Notes)
	}
	note := result.Notes[0]
	if note.OriginalPath != "./report.docx" || len(note.Candidates) != 2 {
		t.Fatalf("unexpected note %+v", note)
	}
}

func TestFilterDeletionsBypassWorkSet(t *testing.T) {
	pairer := newPairer(t)
	changes := []document.Record{
		{Path: "./gone.pdf", Kind: document.KindOriginal, Status: document.StatusDeleted},
		{Path: "./kept.pdf", Kind: document.KindOriginal, Status: document.StatusNew},
	}
	disk := []string{"./kept.pdf"}

	result := pairer.Filter(changes, disk)
	if len(result.Deleted) != 1 || result.Deleted[0].Path != "./gone.pdf" {
		t.Fatalf("Deleted = %v", result.Deleted)
	}
	if len(result.Work) != 1 || result.Work[0].Path != "./kept.pdf" {
		t.Fatalf("Work = %v", result.Work)
	}
}
