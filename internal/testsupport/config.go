package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"dms/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DocDir = filepath.Join(base, "Doc")
	cfg.Paths.ArtifactDir = filepath.Join(cfg.Paths.DocDir, "md_outputs")
	cfg.Paths.IndexPath = filepath.Join(cfg.Paths.DocDir, "index.html")
	cfg.Paths.BackupDir = filepath.Join(base, "backups")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	for _, dir := range []string{cfg.Paths.DocDir, cfg.Paths.ArtifactDir, cfg.Paths.BackupDir, cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	return &cfg
}

// WithSummaryWorkers overrides the summarization worker count.
func WithSummaryWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.SummaryWorkers = workers
	}
}

// WithIgnoreGlobs sets scanner ignore patterns on the test config.
func WithIgnoreGlobs(globs ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.IgnoreGlobs = globs
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DocDir)
}
