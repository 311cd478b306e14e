package check

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"

	"github.com/crimsight/crimsight/internal/config"
)

// browserCandidates are the binaries probed on PATH, in preference order.
var browserCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
}

// ValidationResult represents the result of a config or environment validation
type ValidationResult struct {
	Path     string
	Valid    bool
	Error    error
	Warnings []string
}

// validateEnvironment validates the configuration file and checks that a
// browser binary is available for page capture.
func (c *Checker) validateEnvironment() error {
	configResult := c.validateConfigFile()
	c.report.AddValidationResult(configResult)
	printValidationResult(configResult)

	if !configResult.Valid {
		return fmt.Errorf("configuration validation failed: %w", configResult.Error)
	}

	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return err
	}

	browserResult := validateBrowser(cfg.Export.ChromePath)
	c.report.AddValidationResult(browserResult)
	printValidationResult(browserResult)

	datasetResult := validateDatasets(cfg.Dataset.Dir)
	c.report.AddValidationResult(datasetResult)
	printValidationResult(datasetResult)

	return nil
}

// validateConfigFile validates the main configuration file
func (c *Checker) validateConfigFile() ValidationResult {
	result := ValidationResult{Path: c.configPath}

	if !fileExists(c.configPath) {
		result.Valid = false
		result.Error = fmt.Errorf("file does not exist")
		return result
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		result.Valid = false
		result.Error = fmt.Errorf("format error: %v", err)
		return result
	}

	if err := cfg.Validate(); err != nil {
		result.Valid = false
		result.Error = err
		return result
	}

	result.Valid = true
	return result
}

// validateBrowser checks for a usable Chrome/Chromium binary.
// A missing browser is a warning: the server starts, captures fail.
func validateBrowser(configured string) ValidationResult {
	result := ValidationResult{Path: "chrome/chromium"}

	if browser := FindBrowser(configured); browser != "" {
		result.Path = browser
		result.Valid = true
		return result
	}

	result.Valid = true
	result.Warnings = append(result.Warnings,
		"No browser binary found; set export.chrome_path or CHROME_PATH")
	return result
}

// validateDatasets checks the dataset directory for CSV files.
func validateDatasets(dir string) ValidationResult {
	result := ValidationResult{Path: dir, Valid: true}
	if !dirHasDatasets(dir) {
		result.Warnings = append(result.Warnings,
			"No CSV datasets found; report pages render without figures")
	}
	return result
}

// FindBrowser locates a Chrome/Chromium binary. The configured path wins,
// then the CHROME_PATH environment variable, then well-known names on PATH.
func FindBrowser(configured string) string {
	if configured != "" {
		if fileExists(configured) {
			return configured
		}
		return ""
	}

	if env := os.Getenv("CHROME_PATH"); env != "" {
		if fileExists(env) {
			return env
		}
		return ""
	}

	for _, name := range browserCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// printValidationResult prints a single validation result
func printValidationResult(result ValidationResult) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	if result.Valid {
		green.Printf("  ✓ %s\n", result.Path)
	} else {
		red.Printf("  ✗ %s: %v\n", result.Path, result.Error)
	}

	for _, warning := range result.Warnings {
		yellow.Printf("    └─ %s\n", warning)
	}
}
