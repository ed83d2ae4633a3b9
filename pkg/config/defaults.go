package config

import (
	"path/filepath"
	"strings"

	"github.com/marmos91/dittorepo/pkg/directory"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", nil) are replaced with defaults
//   - Explicit values are preserved
//   - Client-specific defaults are handled by the client implementations
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyRepositoryDefaults(&cfg.Repository)
	applyLocksDefaults(&cfg.Locks)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyRepositoryDefaults sets repository client defaults.
func applyRepositoryDefaults(cfg *RepositoryConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.Root == "" {
		cfg.Root = "/"
	}

	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}

	// A badger repository needs somewhere to live
	if cfg.Type == "badger" {
		_, hasPath := cfg.Badger["db_path"]
		inMemory, _ := cfg.Badger["in_memory"].(bool)
		if !hasPath && !inMemory {
			cfg.Badger["db_path"] = filepath.Join(getConfigDir(), "repository")
		}
	}
}

// applyLocksDefaults sets lock provider defaults.
func applyLocksDefaults(cfg *LocksConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.LookupConcurrency == 0 {
		cfg.LookupConcurrency = directory.DefaultLockLookupConcurrency
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
