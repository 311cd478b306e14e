package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crimsight/crimsight/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != defaultPort {
		t.Errorf("expected default port %d, got %d", defaultPort, cfg.Server.Port)
	}
	if cfg.Export.PixelRatio != 2 {
		t.Errorf("expected pixel ratio 2, got %d", cfg.Export.PixelRatio)
	}
	if cfg.Export.SliceTolerance != 1.05 {
		t.Errorf("expected slice tolerance 1.05, got %g", cfg.Export.SliceTolerance)
	}
	if cfg.Export.Quality != 95 || cfg.Export.BulkQuality != 85 {
		t.Errorf("unexpected quality defaults: %d/%d", cfg.Export.Quality, cfg.Export.BulkQuality)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crimsight.yaml")

	content := `
server:
  host: 127.0.0.1
  port: 9001
export:
  quality: 90
  bulk_settle_ms: 3000
dataset:
  dir: /srv/datasets
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9001 {
		t.Errorf("server config not loaded: %+v", cfg.Server)
	}
	if cfg.Export.Quality != 90 {
		t.Errorf("expected quality 90, got %d", cfg.Export.Quality)
	}
	if cfg.Export.BulkSettleMS != 3000 {
		t.Errorf("expected bulk settle 3000, got %d", cfg.Export.BulkSettleMS)
	}
	// Unspecified values keep defaults
	if cfg.Export.SliceTolerance != defaultSliceTolerance {
		t.Errorf("expected default slice tolerance, got %g", cfg.Export.SliceTolerance)
	}
	if cfg.Dataset.Dir != "/srv/datasets" {
		t.Errorf("expected dataset dir /srv/datasets, got %s", cfg.Dataset.Dir)
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("CRIMSIGHT_TEST_SECRET", "supersecretvalue-supersecretvalue")

	dir := t.TempDir()
	path := filepath.Join(dir, "crimsight.yaml")
	content := `
auth:
  jwt_secret: ${CRIMSIGHT_TEST_SECRET}
  username: ${CRIMSIGHT_TEST_MISSING:-fallback}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.JWTSecret != "supersecretvalue-supersecretvalue" {
		t.Errorf("env var not expanded: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.Username != "fallback" {
		t.Errorf("default value not applied: %q", cfg.Auth.Username)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CRIMSIGHT_SERVER_PORT", "7777")
	t.Setenv("CRIMSIGHT_SERVER_DEBUG", "true")
	t.Setenv("CRIMSIGHT_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("CRIMSIGHT_LOG_LEVEL", "debug")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Server.Port != 7777 {
		t.Errorf("expected port override 7777, got %d", cfg.Server.Port)
	}
	if !cfg.Server.Debug {
		t.Error("expected debug override to be true")
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("expected database path override, got %s", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level override, got %s", cfg.Logging.Level)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault with missing file should not error: %v", err)
	}
	if cfg.Server.Port != defaultPort {
		t.Errorf("expected default config, got port %d", cfg.Server.Port)
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "bad port",
			mutate: func(c *Config) { c.Server.Port = 0 },
			want:   "server.port",
		},
		{
			name:   "empty database path",
			mutate: func(c *Config) { c.Database.Path = "" },
			want:   "database.path",
		},
		{
			name: "auth enabled without secret",
			mutate: func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.PasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
			},
			want: "auth.jwt_secret",
		},
		{
			name: "auth enabled with plaintext password",
			mutate: func(c *Config) {
				c.Auth.Enabled = true
				c.Auth.PasswordHash = "hunter2"
				c.Auth.JWTSecret = strings.Repeat("s", MinJWTSecretLength)
			},
			want: "auth.password_hash",
		},
		{
			name:   "bad slice tolerance",
			mutate: func(c *Config) { c.Export.SliceTolerance = 0.9 },
			want:   "slice_tolerance",
		},
		{
			name:   "bad quality",
			mutate: func(c *Config) { c.Export.Quality = 120 },
			want:   "export.quality",
		},
		{
			name: "schedule enabled without spec",
			mutate: func(c *Config) {
				c.Schedule.Enabled = true
				c.Schedule.Spec = "  "
			},
			want: "schedule.spec",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
			want:   "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %T", err)
			}
			if appErr.Code != errors.ErrCodeConfigInvalid {
				t.Errorf("expected code %s, got %s", errors.ErrCodeConfigInvalid, appErr.Code)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidateScale(t *testing.T) {
	if err := ValidateScale(0.7); err != nil {
		t.Errorf("0.7 should be valid: %v", err)
	}
	if err := ValidateScale(0.3); err == nil {
		t.Error("0.3 should be rejected")
	}
	if err := ValidateScale(1.2); err == nil {
		t.Error("1.2 should be rejected")
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "crimsight.yaml")

	cfg := Default()
	cfg.Server.Port = 9999
	if err := WriteConfig(path, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	if !Exists(path) {
		t.Fatal("written config file should exist")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.Port != 9999 {
		t.Errorf("expected port 9999 after round trip, got %d", loaded.Server.Port)
	}
}

func TestExportDurations(t *testing.T) {
	cfg := Default()
	if cfg.Export.SettleDelay().Milliseconds() != int64(defaultSettleDelayMS) {
		t.Errorf("unexpected settle delay: %v", cfg.Export.SettleDelay())
	}
	if cfg.Export.BulkSettleDelay().Milliseconds() != int64(defaultBulkSettleMS) {
		t.Errorf("unexpected bulk settle delay: %v", cfg.Export.BulkSettleDelay())
	}
	if cfg.Export.FitDebounce().Milliseconds() != int64(defaultFitDebounceMS) {
		t.Errorf("unexpected fit debounce: %v", cfg.Export.FitDebounce())
	}
}
