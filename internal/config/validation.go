// Package config provides configuration management for the application.
// This file contains validation functions for configuration values.
package config

import (
	"fmt"
	"strings"

	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/pkg/errors"
)

// MinJWTSecretLength is the minimum required length for JWT secret (256 bits for HS256)
const MinJWTSecretLength = 32

// Validate checks the configuration for values that would prevent the
// application from running correctly. It returns an AppError with
// ErrCodeConfigInvalid describing the first group of failures found.
func (c *Config) Validate() error {
	var failures []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		failures = append(failures, fmt.Sprintf("server.port must be in range 1-65535, got %d", c.Server.Port))
	}

	if c.Database.Path == "" {
		failures = append(failures, "database.path must not be empty")
	}

	if c.Auth.Enabled {
		if c.Auth.Username == "" {
			failures = append(failures, "auth.username must not be empty when auth is enabled")
		}
		if !strings.HasPrefix(c.Auth.PasswordHash, "$2") {
			failures = append(failures, "auth.password_hash must be a bcrypt hash when auth is enabled")
		}
		if len(c.Auth.JWTSecret) < MinJWTSecretLength {
			failures = append(failures, fmt.Sprintf("auth.jwt_secret must be at least %d characters", MinJWTSecretLength))
		}
		if c.Auth.TokenExpiry <= 0 {
			failures = append(failures, "auth.token_expiry must be positive")
		}
	}

	if c.Export.PixelRatio < 1 || c.Export.PixelRatio > 4 {
		failures = append(failures, fmt.Sprintf("export.pixel_ratio must be in range 1-4, got %d", c.Export.PixelRatio))
	}
	if c.Export.Quality < 1 || c.Export.Quality > 100 {
		failures = append(failures, fmt.Sprintf("export.quality must be in range 1-100, got %d", c.Export.Quality))
	}
	if c.Export.BulkQuality < 1 || c.Export.BulkQuality > 100 {
		failures = append(failures, fmt.Sprintf("export.bulk_quality must be in range 1-100, got %d", c.Export.BulkQuality))
	}
	if c.Export.SliceTolerance < 1.0 {
		failures = append(failures, fmt.Sprintf("export.slice_tolerance must be >= 1.0, got %g", c.Export.SliceTolerance))
	}
	if c.Export.SettleDelayMS < 0 || c.Export.BulkSettleMS < 0 || c.Export.FitDebounceMS < 0 {
		failures = append(failures, "export delay values must not be negative")
	}
	if c.Export.CaptureTimeoutS <= 0 {
		failures = append(failures, "export.capture_timeout_s must be positive")
	}
	if c.Export.OutputDir == "" {
		failures = append(failures, "export.output_dir must not be empty")
	}

	if c.Dataset.Dir == "" {
		failures = append(failures, "dataset.dir must not be empty")
	}

	if c.Schedule.Enabled && strings.TrimSpace(c.Schedule.Spec) == "" {
		failures = append(failures, "schedule.spec must not be empty when scheduling is enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "":
	default:
		failures = append(failures, fmt.Sprintf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json", "":
	default:
		failures = append(failures, fmt.Sprintf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	if len(failures) > 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"invalid configuration: "+strings.Join(failures, "; "))
	}
	return nil
}

// ValidateScale reports whether a preference scale override is acceptable.
// The same bounds apply to API input and saved configurations.
func ValidateScale(scale float64) error {
	if scale < model.MinScale || scale > model.MaxScale {
		return errors.New(errors.ErrCodeValidation,
			fmt.Sprintf("scale must be in range %.1f-%.1f, got %g", model.MinScale, model.MaxScale, scale))
	}
	return nil
}
