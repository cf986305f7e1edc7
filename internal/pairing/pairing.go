package pairing

import (
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"dms/internal/config"
	"dms/internal/document"
	"dms/internal/logging"
	"dms/internal/services"
)

// artifactSuffix is the fixed suffix the external conversion tooling
// appends to an original's filename: Doc/img.jpeg -> md_outputs/img.jpeg.txt.
const artifactSuffix = ".txt"

// Note records an original whose artifact pairing was ambiguous. Ambiguity
// is resolved conservatively: the original stays in the work set.
type Note struct {
	OriginalPath string
	Candidates   []string
}

// Err returns the note as a classified error for reporting.
func (n Note) Err() error {
	return services.Wrap(services.ErrPairingAmbiguity, "pairing", "filter", n.OriginalPath, nil)
}

// Result is the filtered outstanding work derived from a scan.
type Result struct {
	// Work holds the items requiring summarization this run.
	Work []document.Record
	// Deleted holds removals that bypass summarization and go straight
	// to review.
	Deleted []document.Record
	// Suppressed lists originals removed from the work set because an
	// artifact represents them.
	Suppressed []string
	// Notes lists ambiguous pairings left unsuppressed.
	Notes []Note
}

// Pairer maps derived artifacts back to their originals and suppresses
// redundant work items so one logical document never yields two entries.
type Pairer struct {
	prefix string
	logger *slog.Logger
}

// New constructs a pairer for the configured artifact subtree.
func New(cfg *config.Config, logger *slog.Logger) *Pairer {
	return &Pairer{
		prefix: "./" + filepath.Base(cfg.Paths.ArtifactDir),
		logger: logging.NewComponentLogger(logger, "pairing"),
	}
}

// ArtifactPath returns the deterministic artifact key for an original
// logical path.
func (p *Pairer) ArtifactPath(originalPath string) string {
	return p.prefix + "/" + document.BaseName(originalPath) + artifactSuffix
}

// OriginalPath inverts the deterministic transform for an artifact key.
// Returns the empty string when the path is not artifact-shaped.
func (p *Pairer) OriginalPath(artifactPath string) string {
	if !strings.HasPrefix(artifactPath, p.prefix+"/") {
		return ""
	}
	base := document.BaseName(artifactPath)
	if !strings.HasSuffix(base, artifactSuffix) {
		return ""
	}
	return "./" + strings.TrimSuffix(base, artifactSuffix)
}

// Filter decides per-original whether an artifact represents it and
// produces the outstanding work set for the run.
//
// For an original with a changed artifact, the artifact alone surfaces.
// An unchanged artifact suppresses both. No artifact leaves the original
// unsuppressed (it may still be awaiting conversion). More than one
// plausible artifact without an exact transform match is never guessed at:
// the original stays, with a Note.
func (p *Pairer) Filter(changes []document.Record, diskPaths []string) Result {
	onDisk := make(map[string]struct{}, len(diskPaths))
	for _, diskPath := range diskPaths {
		onDisk[diskPath] = struct{}{}
	}
	changed := make(map[string]document.Status, len(changes))
	for _, record := range changes {
		changed[record.Path] = record.Status
	}

	var result Result
	suppressed := make(map[string]struct{})

	for _, record := range changes {
		if record.Status == document.StatusDeleted {
			result.Deleted = append(result.Deleted, record)
			continue
		}
		if record.Kind != document.KindOriginal {
			continue
		}

		exact := p.ArtifactPath(record.Path)
		if status, ok := changed[exact]; ok && status.IsChange() {
			// The changed artifact carries this original's content.
			suppressed[record.Path] = struct{}{}
			result.Suppressed = append(result.Suppressed, record.Path)
			continue
		}
		if _, exists := onDisk[exact]; exists {
			// Artifact present and unchanged: nothing new for the pair.
			suppressed[record.Path] = struct{}{}
			result.Suppressed = append(result.Suppressed, record.Path)
			continue
		}
		if candidates := p.plausibleArtifacts(record.Path, diskPaths); len(candidates) > 0 {
			p.logger.Warn("ambiguous artifact pairing left unsuppressed",
				logging.String(logging.FieldPath, record.Path),
				logging.Int("candidates", len(candidates)))
			result.Notes = append(result.Notes, Note{OriginalPath: record.Path, Candidates: candidates})
		}
	}

	for _, record := range changes {
		if !record.Status.IsChange() || record.Status == document.StatusDeleted {
			continue
		}
		if _, skip := suppressed[record.Path]; skip {
			continue
		}
		if record.Kind == document.KindArtifact {
			if original := p.OriginalPath(record.Path); original != "" {
				if _, exists := onDisk[original]; exists {
					record.PairedWith = original
				}
			}
		}
		result.Work = append(result.Work, record)
	}

	return result
}

// plausibleArtifacts lists artifact-tree files that share the original's
// full filename as a prefix but are not the exact deterministic transform.
func (p *Pairer) plausibleArtifacts(originalPath string, diskPaths []string) []string {
	base := document.BaseName(originalPath)
	exact := p.ArtifactPath(originalPath)
	var candidates []string
	for _, diskPath := range diskPaths {
		if diskPath == exact || !strings.HasPrefix(diskPath, p.prefix+"/") {
			continue
		}
		name := path.Base(diskPath)
		if strings.HasPrefix(name, base) {
			candidates = append(candidates, diskPath)
		}
	}
	return candidates
}
