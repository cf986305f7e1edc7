package ollama

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// summaryPromptTemplate captures the instructions sent to the model when
// summarizing a document. Keep updates centralized here so it is easy to
// tweak without hunting through call sites.
const summaryPromptTemplate = `You are an assistant that catalogs documents for a small archive.

Summarize the document below in at most %d words and assign it a short
category (one or two words, for example "Finance", "Meeting Notes",
"Reference").

You must respond ONLY with a JSON object like:
{"summary": "short description of the document", "category": "Finance"}

Document path: %s

Document content:
%s`

// maxPromptContentBytes bounds how much of a document is sent to the model.
const maxPromptContentBytes = 16 * 1024

// SummaryPrompt renders the summarization prompt for one document.
func SummaryPrompt(path, content string, maxWords int) string {
	content = strings.TrimSpace(content)
	if len(content) > maxPromptContentBytes {
		cut := maxPromptContentBytes
		// Back off to a rune boundary so the cap never splits a character.
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	return fmt.Sprintf(summaryPromptTemplate, maxWords, path, content)
}
