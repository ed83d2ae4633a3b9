package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configHeader = `# dittorepo Configuration File
#
# Every key can be overridden with an environment variable using the
# DITTOREPO_ prefix and underscores, e.g. DITTOREPO_LOGGING_LEVEL=DEBUG.
#
# logging.level:             DEBUG, INFO, WARN, ERROR
# logging.format:            text, json
# repository.type:           memory, badger, s3
# repository.root:           repository path the directory tree starts at
# repository.rate_limit:     requests_per_second 0 disables throttling
# locks.type:                memory, none
# locks.lookup_concurrency:  parallel lock lookups per file listing
# metrics.enabled:           expose Prometheus metrics on metrics.port
#
# repository.memory.fixture:   YAML tree loaded at startup
# repository.badger.db_path:   BadgerDB directory
# repository.s3:               bucket, region, key_prefix, endpoint,
#                              access_key_id, secret_access_key, max_retries

`

// InitConfig writes the default configuration to the default location and
// returns its path. An existing file is only replaced when force is true.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes the default configuration to path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateYAMLWithComments renders cfg as YAML below the explanatory header.
func generateYAMLWithComments(cfg *Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	var b strings.Builder
	b.WriteString(configHeader)
	b.Write(data)
	return b.String(), nil
}
