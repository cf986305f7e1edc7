package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOllama(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DocDir == "" {
		return errors.New("paths.doc_dir must be set")
	}
	if c.Paths.IndexPath == "" {
		return errors.New("paths.index_path must be set")
	}
	if c.Paths.BackupKeep < 0 {
		return errors.New("paths.backup_keep must not be negative")
	}
	for _, glob := range c.Paths.IgnoreGlobs {
		if !doublestar.ValidatePattern(glob) {
			return fmt.Errorf("paths.ignore_globs: invalid pattern %q", glob)
		}
	}
	return nil
}

func (c *Config) validateOllama() error {
	parsed, err := url.Parse(c.Ollama.Host)
	if err != nil {
		return fmt.Errorf("ollama.host: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("ollama.host must use http or https, got %q", c.Ollama.Host)
	}
	if parsed.Host == "" {
		return fmt.Errorf("ollama.host missing host component: %q", c.Ollama.Host)
	}
	if c.Ollama.Temperature < 0 || c.Ollama.Temperature > 2 {
		return errors.New("ollama.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.SummaryWorkers > 32 {
		return errors.New("workflow.summary_workers must be 32 or fewer")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
