package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"dms/internal/config"
	"dms/internal/document"
	"dms/internal/fileutil"
	"dms/internal/logging"
	"dms/internal/services"
)

// ScanError reports a single unreadable path. It never aborts a scan.
type ScanError struct {
	Path string
	Err  error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e ScanError) Unwrap() error { return e.Err }

// Result is the outcome of one scan pass over the document tree.
type Result struct {
	// Changes holds records classified New, Modified, or Deleted,
	// ordered by logical path.
	Changes []document.Record
	// Unchanged counts files whose fingerprint matched the prior state.
	Unchanged int
	// Errors holds per-path failures excluded from Changes.
	Errors []ScanError
	// DiskPaths lists every logical path seen on disk, for pairing
	// existence checks and orphan reporting.
	DiskPaths []string
}

// Scanner classifies documents against a prior state snapshot. It is
// read-only with respect to the persistent store: its only output is the
// ephemeral Result.
type Scanner struct {
	docDir      string
	artifactDir string
	indexPath   string
	backupDir   string
	ignore      []string
	logger      *slog.Logger
}

// New constructs a scanner from resolved configuration.
func New(cfg *config.Config, logger *slog.Logger) *Scanner {
	return &Scanner{
		docDir:      cfg.Paths.DocDir,
		artifactDir: cfg.Paths.ArtifactDir,
		indexPath:   cfg.Paths.IndexPath,
		backupDir:   cfg.Paths.BackupDir,
		ignore:      cfg.Paths.IgnoreGlobs,
		logger:      logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan walks the document root, fingerprints every file, and classifies
// each path against prior. Unchanged files are excluded from the change
// set entirely, so scanning an unchanged tree twice yields an empty set.
func (s *Scanner) Scan(ctx context.Context, prior map[string]document.Record) (*Result, error) {
	result := &Result{}
	seen := make(map[string]document.Record)
	unreadable := make(map[string]struct{})
	var unreadableDirs []string

	walk := func(root string) error {
		return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				if logical, ok := s.classifyPath(path); ok {
					unreadable[logical] = struct{}{}
					if entry != nil && entry.IsDir() {
						// Tracked files under an unreadable directory are
						// not deletions either.
						unreadableDirs = append(unreadableDirs, logical+"/")
					}
				}
				result.Errors = append(result.Errors, ScanError{Path: path, Err: err})
				if entry != nil && entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if entry.IsDir() {
				if s.skipDir(path) {
					return fs.SkipDir
				}
				return nil
			}
			logical, ok := s.classifyPath(path)
			if !ok {
				return nil
			}
			if _, dup := seen[logical]; dup {
				return nil
			}
			record, scanErr := s.fingerprint(path, logical)
			if scanErr != nil {
				s.logger.Warn("unreadable file excluded from scan",
					logging.String(logging.FieldPath, logical),
					logging.Error(scanErr.Err))
				unreadable[logical] = struct{}{}
				result.Errors = append(result.Errors, *scanErr)
				return nil
			}
			seen[logical] = record
			return nil
		})
	}

	if _, err := os.Stat(s.docDir); err != nil {
		return nil, services.Wrap(services.ErrScan, "scan", "stat", s.docDir, err)
	}
	if err := walk(s.docDir); err != nil {
		return nil, services.Wrap(services.ErrScan, "scan", "walk", s.docDir, err)
	}
	if !within(s.artifactDir, s.docDir) {
		// Artifact tree configured outside the document root gets its own
		// pass. A missing artifact tree just means no conversions ran yet.
		if _, err := os.Stat(s.artifactDir); err == nil {
			if err := walk(s.artifactDir); err != nil {
				return nil, services.Wrap(services.ErrScan, "scan", "walk", s.artifactDir, err)
			}
		}
	}

	for logical, record := range seen {
		result.DiskPaths = append(result.DiskPaths, logical)
		previous, tracked := prior[logical]
		switch {
		case !tracked:
			record.Status = document.StatusNew
			result.Changes = append(result.Changes, record)
		case previous.ContentHash != record.ContentHash:
			record.Status = document.StatusModified
			record.Category = previous.Category
			record.Summary = previous.Summary
			record.PairedWith = previous.PairedWith
			result.Changes = append(result.Changes, record)
		default:
			result.Unchanged++
		}
	}

	for logical, previous := range prior {
		if _, onDisk := seen[logical]; onDisk {
			continue
		}
		if _, errored := unreadable[logical]; errored {
			// The file exists but could not be read this pass. Deleting
			// its record would be destructive; leave it untouched.
			continue
		}
		if underAny(logical, unreadableDirs) {
			continue
		}
		record := previous
		record.Status = document.StatusDeleted
		result.Changes = append(result.Changes, record)
	}

	sort.Slice(result.Changes, func(i, j int) bool {
		return result.Changes[i].Path < result.Changes[j].Path
	})
	sort.Strings(result.DiskPaths)

	s.logger.Info("scan complete",
		logging.Int("changed", len(result.Changes)),
		logging.Int("unchanged", result.Unchanged),
		logging.Int("errors", len(result.Errors)))
	return result, nil
}

// classifyPath maps an absolute file path to its logical store key, or
// reports that the file is outside the tracked set.
func (s *Scanner) classifyPath(path string) (string, bool) {
	if path == s.indexPath || path == s.indexPath+".lock" {
		return "", false
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return "", false
	}

	var rel string
	var err error
	if within(path, s.artifactDir) {
		rel, err = filepath.Rel(filepath.Dir(s.artifactDir), path)
	} else {
		rel, err = filepath.Rel(s.docDir, path)
	}
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	for _, glob := range s.ignore {
		if ok, _ := doublestar.Match(glob, filepath.ToSlash(rel)); ok {
			return "", false
		}
	}
	return document.LogicalPath(rel), true
}

func (s *Scanner) skipDir(path string) bool {
	if path == s.backupDir {
		return true
	}
	base := filepath.Base(path)
	return path != s.docDir && path != s.artifactDir && strings.HasPrefix(base, ".")
}

func (s *Scanner) fingerprint(path, logical string) (document.Record, *ScanError) {
	hash, err := fileutil.HashFile(path)
	if err != nil {
		return document.Record{}, &ScanError{Path: logical, Err: err}
	}
	kind := document.KindOriginal
	if within(path, s.artifactDir) {
		kind = document.KindArtifact
	}
	return document.Record{
		Path:        logical,
		ContentHash: hash,
		Kind:        kind,
	}, nil
}

func within(path, dir string) bool {
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}

func underAny(logical string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(logical, prefix) {
			return true
		}
	}
	return false
}
