// Package check provides interactive environment checking and initialization.
// It helps users set up their local CrimSight configuration properly.
package check

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/crimsight/crimsight/internal/config"
)

// CheckResult represents the result of a non-interactive environment check
type CheckResult struct {
	// Success indicates whether all required checks passed
	Success bool
	// Errors contains critical errors that prevent server startup
	Errors []string
	// Warnings contains non-critical issues that don't block startup
	Warnings []string
	// Suggestions contains helpful tips for fixing issues
	Suggestions []string
}

// Checker handles environment checking and initialization
type Checker struct {
	// configPath is the main configuration file
	configPath string
	// report collects check results for final output
	report *Report
	// theme for consistent styling
	theme *huh.Theme
}

// NewChecker creates a new environment checker
func NewChecker() *Checker {
	return &Checker{
		configPath: config.DefaultConfigPath,
		report:     NewReport(),
		theme:      huh.ThemeCharm(),
	}
}

// Run executes the full environment check
func (c *Checker) Run() error {
	c.printHeader()

	// Step 1: Check and create the configuration file
	fmt.Println()
	printSection("Checking configuration file")
	if err := c.checkConfigFile(); err != nil {
		return fmt.Errorf("config file check failed: %w", err)
	}

	// Step 2: Check working directories (datasets, export output)
	fmt.Println()
	printSection("Checking working directories")
	if err := c.checkDirectories(); err != nil {
		return fmt.Errorf("directory check failed: %w", err)
	}

	// Step 3: Validate configuration and locate a browser binary
	fmt.Println()
	printSection("Validating configuration")
	if err := c.validateEnvironment(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Step 4: Print final report
	fmt.Println()
	c.report.Print()

	return nil
}

// printHeader prints the welcome header
func (c *Checker) printHeader() {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	fmt.Println(titleStyle.Render("🔍 CrimSight Environment Check"))
}

// printSection prints a section header
func printSection(title string) {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15"))
	fmt.Println(style.Render(title + "..."))
}

// ConfigPath returns the path to the main config file
func (c *Checker) ConfigPath() string {
	return c.configPath
}

// confirmCreate asks user to confirm file creation
func confirmCreate(path string) (bool, error) {
	var confirm bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Create %s from template?", path)).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		Run()
	if err != nil {
		return false, err
	}
	return confirm, nil
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ensureDir creates a file's parent directory if it doesn't exist
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// RunNonInteractive performs a non-interactive environment check.
// Unlike Run(), this method does not prompt for user input and does not create files.
// It returns a CheckResult with errors, warnings, and suggestions.
func (c *Checker) RunNonInteractive() *CheckResult {
	result := &CheckResult{
		Success:     true,
		Errors:      make([]string, 0),
		Warnings:    make([]string, 0),
		Suggestions: make([]string, 0),
	}

	// Step 1: Check if the configuration file exists
	if !fileExists(c.configPath) {
		result.Success = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Configuration file not found: %s", c.configPath))
		result.Suggestions = append(result.Suggestions,
			"Run 'crimsight serve --check' to interactively create the configuration file",
		)
		return result
	}

	// Step 2: Validate the configuration file
	cfg, err := config.Load(c.configPath)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Invalid configuration: %v", err))
		return result
	}
	if err := cfg.Validate(); err != nil {
		result.Success = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("Invalid configuration: %v", err))
		return result
	}

	// Step 3: Environment checks (as warnings, not errors)
	c.checkEnvironmentNonInteractive(cfg, result)

	return result
}

// checkEnvironmentNonInteractive checks browser and data availability as
// warnings. The server can start without them; captures fail at runtime.
func (c *Checker) checkEnvironmentNonInteractive(cfg *config.Config, result *CheckResult) {
	browser := FindBrowser(cfg.Export.ChromePath)
	if browser == "" {
		result.Warnings = append(result.Warnings,
			"No Chrome/Chromium binary found; page capture will not work")
		result.Suggestions = append(result.Suggestions,
			"Install Chromium or set export.chrome_path (or CHROME_PATH)")
	}

	if !dirHasDatasets(cfg.Dataset.Dir) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Dataset directory %s has no CSV files; pages render without figures", cfg.Dataset.Dir))
	}
}

// PrintCheckResult prints the check result in a formatted way
func PrintCheckResult(result *CheckResult) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	if len(result.Errors) > 0 {
		fmt.Println()
		red.Println("[ERROR] Environment check failed")
		fmt.Println()
		for _, err := range result.Errors {
			red.Printf("  ✗ %s\n", err)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Println()
		yellow.Println("[WARNING] Configuration warnings:")
		fmt.Println()
		for _, warn := range result.Warnings {
			yellow.Printf("  ⚠ %s\n", warn)
		}
	}

	if len(result.Suggestions) > 0 {
		cyan.Println("\nTo fix these issues:")
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  → %s\n", suggestion)
		}
	}

	fmt.Println()
}
