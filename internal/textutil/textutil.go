// Package textutil provides text processing helpers for summaries and
// category labels.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// TruncateWords returns text limited to maxWords words. Truncation always
// lands on a word boundary; interior whitespace runs collapse to single
// spaces. maxWords <= 0 returns the collapsed text unmodified.
func TruncateWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if maxWords <= 0 || len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ")
}

// CollapseWhitespace trims text and collapses interior whitespace runs to
// single spaces.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeCategory canonicalizes a category label: whitespace collapsed,
// leading word characters title-cased. Already-capitalized acronyms are
// preserved.
func NormalizeCategory(label string) string {
	collapsed := CollapseWhitespace(label)
	if collapsed == "" {
		return ""
	}
	return titleCaser.String(collapsed)
}

// WordCount reports the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
