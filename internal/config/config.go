// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crimsight/crimsight/pkg/logger"
)

// Default configuration values
const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 8090
	defaultDatabasePath    = "./data/crimsight.db"
	defaultDatasetDir      = "./data/datasets"
	defaultOutputDir       = "./exports"
	defaultPixelRatio      = 2
	defaultQuality         = 95
	defaultBulkQuality     = 85
	defaultSliceTolerance  = 1.05
	defaultSettleDelayMS   = 500
	defaultBulkSettleMS    = 2000
	defaultFitDebounceMS   = 500
	defaultCaptureTimeoutS = 60
	defaultTokenExpiry     = 24
	defaultScheduleSpec    = "0 6 * * 1" // Mondays at 06:00
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Export   ExportConfig   `yaml:"export"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Logging  logger.Config  `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file path
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Enabled      bool   `yaml:"enabled"`       // Enable JWT authentication on the API
	Username     string `yaml:"username"`      // Login username
	PasswordHash string `yaml:"password_hash"` // Login password (bcrypt hash)
	JWTSecret    string `yaml:"jwt_secret"`    // JWT signing secret key
	TokenExpiry  int    `yaml:"token_expiry"`  // Token expiry in hours (default: 24)
}

// ExportConfig holds capture and document assembly tuning.
// The delay and tolerance defaults come from measured browser behavior
// and should rarely need changing.
type ExportConfig struct {
	OutputDir       string  `yaml:"output_dir"`       // Directory for generated PDF files
	ChromePath      string  `yaml:"chrome_path"`      // Chrome/Chromium binary path (empty = auto-detect)
	PixelRatio      int     `yaml:"pixel_ratio"`      // Device scale factor for capture rendering
	Quality         int     `yaml:"quality"`          // JPEG quality for interactive exports (1-100)
	BulkQuality     int     `yaml:"bulk_quality"`     // JPEG quality for bulk exports (1-100)
	SliceTolerance  float64 `yaml:"slice_tolerance"`  // Oversize ratio before a capture is sliced into bands
	SettleDelayMS   int     `yaml:"settle_delay_ms"`  // Wait after navigation before interactive capture
	BulkSettleMS    int     `yaml:"bulk_settle_ms"`   // Wait after navigation before headless bulk capture
	FitDebounceMS   int     `yaml:"fit_debounce_ms"`  // Debounce window for layout fit recalculation
	CaptureTimeoutS int     `yaml:"capture_timeout_s"` // Hard timeout for a single page capture
}

// DatasetConfig holds dataset loading configuration
type DatasetConfig struct {
	Dir string `yaml:"dir"` // Root directory containing dataset JSON files
}

// ScheduleConfig holds scheduled bulk export configuration
type ScheduleConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable periodic bulk exports
	Spec    string `yaml:"spec"`    // Cron expression (5-field) for export runs
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:  defaultHost,
			Port:  defaultPort,
			Debug: false,
			CORSOrigins: []string{
				"http://localhost:5173",
				"http://localhost:8090",
			},
		},
		Database: DatabaseConfig{
			Path: defaultDatabasePath,
		},
		Auth: AuthConfig{
			Enabled:     false,
			Username:    "admin",
			TokenExpiry: defaultTokenExpiry,
		},
		Export: ExportConfig{
			OutputDir:       defaultOutputDir,
			ChromePath:      "",
			PixelRatio:      defaultPixelRatio,
			Quality:         defaultQuality,
			BulkQuality:     defaultBulkQuality,
			SliceTolerance:  defaultSliceTolerance,
			SettleDelayMS:   defaultSettleDelayMS,
			BulkSettleMS:    defaultBulkSettleMS,
			FitDebounceMS:   defaultFitDebounceMS,
			CaptureTimeoutS: defaultCaptureTimeoutS,
		},
		Dataset: DatasetConfig{
			Dir: defaultDatasetDir,
		},
		Schedule: ScheduleConfig{
			Enabled: false,
			Spec:    defaultScheduleSpec,
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSize:    100, // Max 100MB per log file
			MaxAge:     7,   // Retain logs for 7 days
			MaxBackups: 5,   // Keep 5 backup files
			Compress:   false,
		},
	}
}

// Load loads configuration from a YAML file with environment variable expansion.
// Environment variables can also override values using the CRIMSIGHT_ prefix:
//   - CRIMSIGHT_SERVER_HOST, CRIMSIGHT_SERVER_PORT, CRIMSIGHT_SERVER_DEBUG
//   - CRIMSIGHT_DATABASE_PATH
//   - CRIMSIGHT_AUTH_USERNAME, CRIMSIGHT_AUTH_PASSWORD_HASH, CRIMSIGHT_AUTH_JWT_SECRET
//   - CRIMSIGHT_EXPORT_OUTPUT_DIR, CRIMSIGHT_EXPORT_CHROME_PATH
//   - CRIMSIGHT_DATASET_DIR
//   - CRIMSIGHT_LOG_LEVEL, CRIMSIGHT_LOG_FORMAT, CRIMSIGHT_LOG_FILE
func Load(path string) (*Config, error) {
	cfg := Default()

	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables in the configuration
	expanded := expandEnvVars(string(data))

	// Parse YAML
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadOrDefault loads configuration from path, falling back to defaults
// (with environment overrides applied) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return Load(path)
}

// applyEnvOverrides applies CRIMSIGHT_* environment variable overrides
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if v := os.Getenv("CRIMSIGHT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CRIMSIGHT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CRIMSIGHT_SERVER_DEBUG"); v != "" {
		cfg.Server.Debug = parseBool(v)
	}

	// Database overrides
	if v := os.Getenv("CRIMSIGHT_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Auth overrides
	if v := os.Getenv("CRIMSIGHT_AUTH_USERNAME"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("CRIMSIGHT_AUTH_PASSWORD_HASH"); v != "" {
		cfg.Auth.PasswordHash = v
	}
	if v := os.Getenv("CRIMSIGHT_AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	// Export overrides
	if v := os.Getenv("CRIMSIGHT_EXPORT_OUTPUT_DIR"); v != "" {
		cfg.Export.OutputDir = v
	}
	if v := os.Getenv("CRIMSIGHT_EXPORT_CHROME_PATH"); v != "" {
		cfg.Export.ChromePath = v
	}

	// Dataset overrides
	if v := os.Getenv("CRIMSIGHT_DATASET_DIR"); v != "" {
		cfg.Dataset.Dir = v
	}

	// Logging overrides
	if v := os.Getenv("CRIMSIGHT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CRIMSIGHT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CRIMSIGHT_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}

// parseBool interprets common boolean environment values
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// Only matches ${VAR_NAME} format (not $VAR_NAME) to avoid conflicts with special
// characters like bcrypt hashes.
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := match[2 : len(match)-1]

		// Support default values: ${VAR_NAME:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}

		if len(parts) > 1 {
			return parts[1]
		}

		return ""
	})
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// SettleDelay returns the interactive capture settle delay as a duration
func (c *ExportConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// BulkSettleDelay returns the bulk capture settle delay as a duration
func (c *ExportConfig) BulkSettleDelay() time.Duration {
	return time.Duration(c.BulkSettleMS) * time.Millisecond
}

// FitDebounce returns the layout fit debounce window as a duration
func (c *ExportConfig) FitDebounce() time.Duration {
	return time.Duration(c.FitDebounceMS) * time.Millisecond
}

// CaptureTimeout returns the per-page capture timeout as a duration
func (c *ExportConfig) CaptureTimeout() time.Duration {
	return time.Duration(c.CaptureTimeoutS) * time.Second
}
