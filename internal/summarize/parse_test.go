package summarize

import (
	"errors"
	"testing"

	"dms/internal/services"
)

func TestParseStrictJSON(t *testing.T) {
	payload, err := Parse(`{"summary": "Quarterly financial report.", "category": "Finance"}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if payload.Summary != "Quarterly financial report." || payload.Category != "Finance" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestParseFencedJSON(t *testing.T) {
	response := "```json\n{\"summary\": \"Meeting notes from March.\", \"category\": \"Notes\"}\n```"
	payload, err := Parse(response)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if payload.Summary != "Meeting notes from March." || payload.Category != "Notes" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestParseJSONWithChatter(t *testing.T) {
	response := `Sure! Here is the requested JSON:
{"summary": "Project roadmap for next year.", "category": "Planning"}
Let me know if you need anything else.`
	payload, err := Parse(response)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if payload.Summary != "Project roadmap for next year." || payload.Category != "Planning" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestParseFieldRescue(t *testing.T) {
	// Trailing comma makes the object invalid JSON, but both fields are
	// present and recoverable.
	response := `{"summary": "Scanned invoice with \"special\" chars.", "category": "Finance",}`
	payload, err := Parse(response)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if payload.Summary != `Scanned invoice with "special" chars.` {
		t.Fatalf("unexpected summary %q", payload.Summary)
	}
	if payload.Category != "Finance" {
		t.Fatalf("unexpected category %q", payload.Category)
	}
}

func TestParseMissingFieldIsExtractionError(t *testing.T) {
	for _, response := range []string{
		"",
		"I could not summarize this document.",
		`{"summary": "no category here"}`,
		`{"category": "Finance"}`,
	} {
		if _, err := Parse(response); !errors.Is(err, services.ErrExtraction) {
			t.Errorf("Parse(%q): expected extraction error, got %v", response, err)
		}
	}
}

func TestParseExtractionErrorIsNotRunFatal(t *testing.T) {
	_, err := Parse("garbage")
	if err == nil {
		t.Fatal("expected error")
	}
	if services.IsRunFatal(err) {
		t.Fatal("extraction errors must stay localized to the item")
	}
}
