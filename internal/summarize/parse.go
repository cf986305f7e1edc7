package summarize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"dms/internal/services"
)

// Payload captures the JSON object the model is asked to produce.
type Payload struct {
	Summary  string `json:"summary"`
	Category string `json:"category"`
}

var (
	summaryFieldPattern  = regexp.MustCompile(`"summary"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	categoryFieldPattern = regexp.MustCompile(`"category"\s*:\s*"((?:[^"\\]|\\.)*)"`)
)

// Parse extracts the summary payload from a model response. Decoding is
// tiered: a strict unmarshal of the whole response, then a sanitized pass
// that strips code fences and cuts the outermost JSON object, then a field
// level rescue that pulls the two expected keys out of malformed JSON.
// A response that yields no summary or no category is an extraction error;
// the caller records it against the item and moves on.
func Parse(content string) (Payload, error) {
	var payload Payload
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return payload, services.Wrap(services.ErrExtraction, "summarize", "parse", "empty response", nil)
	}

	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil && complete(payload) {
		return normalize(payload), nil
	}

	if sanitized := sanitizePayload(trimmed); sanitized != "" {
		payload = Payload{}
		if err := json.Unmarshal([]byte(sanitized), &payload); err == nil && complete(payload) {
			return normalize(payload), nil
		}
	}

	payload = Payload{
		Summary:  rescueField(summaryFieldPattern, trimmed),
		Category: rescueField(categoryFieldPattern, trimmed),
	}
	if complete(payload) {
		return normalize(payload), nil
	}

	return Payload{}, services.Wrap(services.ErrExtraction, "summarize", "parse",
		"response missing summary or category: "+snippet(trimmed), nil)
}

func complete(payload Payload) bool {
	return strings.TrimSpace(payload.Summary) != "" && strings.TrimSpace(payload.Category) != ""
}

func normalize(payload Payload) Payload {
	payload.Summary = strings.TrimSpace(payload.Summary)
	payload.Category = strings.TrimSpace(payload.Category)
	return payload
}

func sanitizePayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFence(content))
	if trimmed == "" {
		return ""
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func rescueField(pattern *regexp.Regexp, content string) string {
	match := pattern.FindStringSubmatch(content)
	if match == nil {
		return ""
	}
	unquoted, err := strconv.Unquote(`"` + match[1] + `"`)
	if err != nil {
		return match[1]
	}
	return unquoted
}

func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
