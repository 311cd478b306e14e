package check

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crimsight/crimsight/internal/config"
)

func TestRunNonInteractiveMissingConfig(t *testing.T) {
	c := NewChecker()
	c.configPath = filepath.Join(t.TempDir(), "crimsight.yaml")

	result := c.RunNonInteractive()
	if result.Success {
		t.Error("Expected failure when config file is missing")
	}
	if len(result.Errors) == 0 {
		t.Error("Expected an error for the missing config file")
	}
	if len(result.Suggestions) == 0 {
		t.Error("Expected a suggestion pointing at --check")
	}
}

func TestRunNonInteractiveValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crimsight.yaml")

	cfg := config.Default()
	cfg.Dataset.Dir = dir
	if err := config.WriteConfig(path, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	c := NewChecker()
	c.configPath = path

	result := c.RunNonInteractive()
	if !result.Success {
		t.Fatalf("Expected success, got errors: %v", result.Errors)
	}
	// No CSVs in the temp dataset directory
	foundDatasetWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "CSV") {
			foundDatasetWarning = true
		}
	}
	if !foundDatasetWarning {
		t.Errorf("Expected dataset warning, got %v", result.Warnings)
	}
}

func TestRunNonInteractiveInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crimsight.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: -5\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	c := NewChecker()
	c.configPath = path

	result := c.RunNonInteractive()
	if result.Success {
		t.Error("Expected failure for invalid configuration")
	}
}

func TestFindBrowserConfiguredPath(t *testing.T) {
	// A configured path that exists wins
	fake := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("failed to create fake binary: %v", err)
	}
	if got := FindBrowser(fake); got != fake {
		t.Errorf("Expected configured path, got %q", got)
	}

	// A configured path that does not exist fails outright
	if got := FindBrowser(filepath.Join(t.TempDir(), "missing")); got != "" {
		t.Errorf("Expected empty result for missing configured path, got %q", got)
	}
}

func TestFindBrowserEnvVar(t *testing.T) {
	fake := filepath.Join(t.TempDir(), "chromium")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("failed to create fake binary: %v", err)
	}
	t.Setenv("CHROME_PATH", fake)

	if got := FindBrowser(""); got != fake {
		t.Errorf("Expected CHROME_PATH binary, got %q", got)
	}
}

func TestDirHasDatasets(t *testing.T) {
	dir := t.TempDir()
	if dirHasDatasets(dir) {
		t.Error("Empty directory should have no datasets")
	}

	if err := os.WriteFile(filepath.Join(dir, "stop_data.csv"), []byte("a,b\n"), 0644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	if !dirHasDatasets(dir) {
		t.Error("Directory with a CSV should report datasets")
	}
}

func TestReportSummary(t *testing.T) {
	r := NewReport()
	r.AddFileResult(FileCheckResult{Path: "a", Exists: true})
	r.AddFileResult(FileCheckResult{Path: "b", Created: true})
	r.AddFileResult(FileCheckResult{Path: "c"})
	r.AddValidationResult(ValidationResult{Path: "d", Valid: true})
	r.AddValidationResult(ValidationResult{Path: "e", Valid: false, Error: os.ErrNotExist})

	summary := r.calculateSummary()
	if summary.FilesExist != 2 || summary.FilesCreated != 1 || summary.FilesMissing != 1 {
		t.Errorf("Unexpected file summary: %+v", summary)
	}
	if summary.ValidationsValid != 1 || summary.ValidationErrors != 1 || !summary.HasErrors {
		t.Errorf("Unexpected validation summary: %+v", summary)
	}
}
