// Package config loads, normalizes, and validates dms configuration.
//
// Configuration is TOML, resolved from an explicit --config flag, then
// ~/.config/dms/config.toml, then ./dms.toml. Missing files fall back to
// repository defaults; every recognized option has a documented default in
// the embedded sample config.
//
// Load performs three phases: decode, normalize (path expansion, derived
// defaults such as artifact_dir tracking doc_dir, env fallbacks like
// OLLAMA_HOST), and validate. Other packages receive a fully resolved
// *Config and never re-interpret raw values.
package config
