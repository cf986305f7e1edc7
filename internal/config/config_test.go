package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected config file not to exist")
	}
	if cfg.Ollama.Host != defaultOllamaHost {
		t.Fatalf("host = %q, want default", cfg.Ollama.Host)
	}
	if cfg.Ollama.MaxWords != defaultMaxWords {
		t.Fatalf("max_words = %d, want %d", cfg.Ollama.MaxWords, defaultMaxWords)
	}
	if cfg.Workflow.SummaryWorkers != defaultSummaryWorkers {
		t.Fatalf("summary_workers = %d, want %d", cfg.Workflow.SummaryWorkers, defaultSummaryWorkers)
	}
}

func TestLoadDerivesPathsFromDocDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dms.toml")
	content := "[paths]\ndoc_dir = \"" + filepath.Join(dir, "Docs") + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if got, want := cfg.Paths.ArtifactDir, filepath.Join(dir, "Docs", "md_outputs"); got != want {
		t.Fatalf("artifact_dir = %q, want %q", got, want)
	}
	if got, want := cfg.Paths.IndexPath, filepath.Join(dir, "Docs", "index.html"); got != want {
		t.Fatalf("index_path = %q, want %q", got, want)
	}
	if got, want := cfg.Paths.BackupDir, filepath.Join(dir, "Docs", "backups"); got != want {
		t.Fatalf("backup_dir = %q, want %q", got, want)
	}
}

func TestLoadRejectsBadHost(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dms.toml")
	if err := os.WriteFile(path, []byte("[ollama]\nhost = \"localhost:11434\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected scheme validation error")
	}
}

func TestValidateRejectsBadGlob(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Paths.IgnoreGlobs = []string{"[unclosed"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected glob validation error")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected log format validation error")
	}
}

func TestNormalizeTrimsHostSlash(t *testing.T) {
	cfg := Default()
	cfg.Ollama.Host = "http://10.0.0.5:11434/"
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	if cfg.Ollama.Host != "http://10.0.0.5:11434" {
		t.Fatalf("host = %q", cfg.Ollama.Host)
	}
}

func TestCreateSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "cfg", "config.toml")
	written, err := CreateSample(target)
	if err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[ollama]") {
		t.Fatal("sample config missing ollama section")
	}
	if _, err := CreateSample(target); err == nil {
		t.Fatal("expected error when sample already exists")
	}
}
