// Package config provides configuration management for the application.
// This file handles creation of the initial configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default path for the configuration file
const DefaultConfigPath = "config/crimsight.yaml"

// Exists checks if a configuration file exists at path
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateDefault creates a default configuration file at path
func CreateDefault(path string) error {
	return WriteConfig(path, Default())
}

// WriteConfig writes a configuration to file with a documentation header
func WriteConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	content := configHeader + string(data)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// configHeader is the comment header for the generated configuration file
const configHeader = `# CrimSight Configuration
#
# Environment Variable Support:
#   - Use ${VAR_NAME} syntax in values to reference environment variables
#   - Or use CRIMSIGHT_* prefix environment variables to override:
#     CRIMSIGHT_SERVER_HOST, CRIMSIGHT_SERVER_PORT, CRIMSIGHT_SERVER_DEBUG
#     CRIMSIGHT_DATABASE_PATH
#     CRIMSIGHT_AUTH_USERNAME, CRIMSIGHT_AUTH_PASSWORD_HASH, CRIMSIGHT_AUTH_JWT_SECRET
#     CRIMSIGHT_EXPORT_OUTPUT_DIR, CRIMSIGHT_EXPORT_CHROME_PATH
#     CRIMSIGHT_DATASET_DIR
#     CRIMSIGHT_LOG_LEVEL, CRIMSIGHT_LOG_FORMAT, CRIMSIGHT_LOG_FILE
#

`
