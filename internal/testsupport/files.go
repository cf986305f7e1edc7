package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"dms/internal/catalog"
	"dms/internal/config"
)

// WriteDoc writes a file under the document root and returns its absolute
// path.
func WriteDoc(t testing.TB, cfg *config.Config, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.Paths.DocDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// WriteArtifact writes a derived-artifact file and returns its absolute
// path.
func WriteArtifact(t testing.TB, cfg *config.Config, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.Paths.ArtifactDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact %s: %v", name, err)
	}
	return path
}

// InitStore creates a fresh store document for the test config.
func InitStore(t testing.TB, cfg *config.Config) {
	t.Helper()
	if err := catalog.WriteNew(cfg.Paths.IndexPath, "Test Catalog"); err != nil {
		t.Fatalf("init store: %v", err)
	}
}

// LoadStore reads the store document and fails the test on error.
func LoadStore(t testing.TB, cfg *config.Config) *catalog.Snapshot {
	t.Helper()
	snapshot, err := catalog.Load(cfg.Paths.IndexPath)
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return snapshot
}
