package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains document tree and working directory configuration.
type Paths struct {
	// DocDir is the document root the scanner walks.
	DocDir string `toml:"doc_dir"`
	// ArtifactDir is the derived-artifact subtree (OCR/text output).
	// Defaults to <doc_dir>/md_outputs.
	ArtifactDir string `toml:"artifact_dir"`
	// IndexPath is the persistent state store document.
	// Defaults to <doc_dir>/index.html.
	IndexPath string `toml:"index_path"`
	// BackupDir receives timestamped pre-apply copies of the store.
	BackupDir string `toml:"backup_dir"`
	// BackupKeep is the number of backups retained after a successful
	// apply. Zero disables pruning.
	BackupKeep int `toml:"backup_keep"`
	// LogDir holds the log file and the pending-work database.
	LogDir string `toml:"log_dir"`
	// IgnoreGlobs are doublestar patterns (relative to doc_dir) excluded
	// from scanning, in addition to hidden and office temp files.
	IgnoreGlobs []string `toml:"ignore_globs"`
}

// Ollama contains the summarization service connection settings.
type Ollama struct {
	Host           string  `toml:"host"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	MaxWords       int     `toml:"max_words"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Workflow contains pipeline execution settings.
type Workflow struct {
	// SummaryWorkers bounds concurrent summarization calls.
	SummaryWorkers int `toml:"summary_workers"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Apply          bool   `toml:"apply"`
	Errors         bool   `toml:"errors"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dms.
//
// Configuration sections by subsystem:
//   - Paths: document root, artifact subtree, store and backup locations
//   - Ollama: summarization service host, model, and sampling settings
//   - Workflow: summarization worker pool size
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Ollama        Ollama        `toml:"ollama"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dms/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dms.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the working directories the pipeline needs.
// The document root itself is never created implicitly; a missing doc tree
// is an operator error surfaced at scan time.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.BackupDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PendingDBPath returns the location of the pending-work database.
func (c *Config) PendingDBPath() string {
	return filepath.Join(c.Paths.LogDir, "pending.db")
}

// LockPath returns the advisory lock file guarding store writes.
func (c *Config) LockPath() string {
	return c.Paths.IndexPath + ".lock"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) (string, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(expanded); err == nil {
		return "", fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return "", fmt.Errorf("write sample config: %w", err)
	}
	return expanded, nil
}

// Sample returns the embedded sample configuration contents.
func Sample() string {
	return sampleConfig
}
