package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for pipeline error classification. Callers tag errors
// with Wrap and branch with errors.Is rather than string matching.
var (
	// ErrScan marks a per-path scan failure (unreadable file). Non-fatal:
	// the path is excluded from the pending set and scanning continues.
	ErrScan = errors.New("scan error")

	// ErrPairingAmbiguity marks an original whose artifact pairing could
	// not be resolved safely. Resolved conservatively to no suppression.
	ErrPairingAmbiguity = errors.New("pairing ambiguity")

	// ErrConnectivity marks the summarization service as unreachable.
	// Reported once per run; halts remaining summarization calls.
	ErrConnectivity = errors.New("connectivity error")

	// ErrExtraction marks a response that produced no valid structured
	// result after all parse tiers. The item proceeds to review
	// unsummarized.
	ErrExtraction = errors.New("extraction error")

	// ErrApplyConflict marks a store that changed since the pending set
	// was scanned. The apply is refused and a re-scan is required.
	ErrApplyConflict = errors.New("apply conflict")

	// ErrApplyFailure marks a failed commit. The backup has been restored
	// by the time this error is returned.
	ErrApplyFailure = errors.New("apply failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = errors.New("pipeline failure")
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRunFatal reports whether the error should abort the remainder of the
// run. Per-item errors (scan, extraction) are localized; connectivity and
// apply errors are not.
func IsRunFatal(err error) bool {
	switch {
	case errors.Is(err, ErrConnectivity),
		errors.Is(err, ErrApplyConflict),
		errors.Is(err, ErrApplyFailure):
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
