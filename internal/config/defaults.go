package config

const (
	defaultDocDir         = "Doc"
	defaultArtifactSubdir = "md_outputs"
	defaultIndexName      = "index.html"
	defaultBackupSubdir   = "backups"
	defaultBackupKeep     = 10
	defaultLogDir         = "~/.local/share/dms/logs"
	defaultOllamaHost     = "http://localhost:11434"
	defaultOllamaModel    = "qwen2.5-coder:14b"
	defaultTemperature    = 0.3
	defaultMaxWords       = 50
	defaultOllamaTimeout  = 120
	defaultSummaryWorkers = 2
	defaultNotifyTimeout  = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults. Derived
// paths (artifact_dir, index_path, backup_dir) are resolved during
// normalization so they track a customized doc_dir.
func Default() Config {
	return Config{
		Paths: Paths{
			DocDir:     defaultDocDir,
			BackupKeep: defaultBackupKeep,
			LogDir:     defaultLogDir,
		},
		Ollama: Ollama{
			Host:           defaultOllamaHost,
			Model:          defaultOllamaModel,
			Temperature:    defaultTemperature,
			MaxWords:       defaultMaxWords,
			TimeoutSeconds: defaultOllamaTimeout,
		},
		Workflow: Workflow{
			SummaryWorkers: defaultSummaryWorkers,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Apply:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
