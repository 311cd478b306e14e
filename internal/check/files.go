package check

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/crimsight/crimsight/internal/config"
)

// FileCheckResult represents the result of a file or directory check
type FileCheckResult struct {
	Path        string
	Exists      bool
	Created     bool
	Description string
	Error       error
}

// checkConfigFile checks the main configuration file and offers to
// create it from the built-in template when missing.
func (c *Checker) checkConfigFile() error {
	result := FileCheckResult{
		Path:        c.configPath,
		Description: "Main configuration file (server, export, dataset, schedule)",
	}

	if fileExists(c.configPath) {
		result.Exists = true
		c.report.AddFileResult(result)
		printFileStatus(c.configPath, true, false)
		return nil
	}

	result.Exists = false
	printFileStatus(c.configPath, false, false)

	confirm, err := confirmCreate(c.configPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to get user confirmation: %w", err)
		c.report.AddFileResult(result)
		return result.Error
	}

	if confirm {
		if err := ensureDir(c.configPath); err != nil {
			result.Error = err
			c.report.AddFileResult(result)
			return err
		}
		if err := config.CreateDefault(c.configPath); err != nil {
			result.Error = fmt.Errorf("failed to create config file: %w", err)
			c.report.AddFileResult(result)
			return result.Error
		}
		result.Created = true
		printFileCreated(c.configPath)
	}

	c.report.AddFileResult(result)
	return nil
}

// checkDirectories ensures the dataset and export directories exist.
// Missing directories are created directly; they carry no template content.
func (c *Checker) checkDirectories() error {
	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return err
	}

	for _, dir := range []struct {
		path        string
		description string
	}{
		{cfg.Dataset.Dir, "Dataset directory"},
		{cfg.Export.OutputDir, "Export output directory"},
	} {
		result := FileCheckResult{
			Path:        dir.path,
			Description: dir.description,
		}
		if fileExists(dir.path) {
			result.Exists = true
			printFileStatus(dir.path, true, false)
		} else {
			if err := os.MkdirAll(dir.path, 0755); err != nil {
				result.Error = fmt.Errorf("failed to create %s: %w", dir.path, err)
				c.report.AddFileResult(result)
				return result.Error
			}
			result.Created = true
			printFileCreated(dir.path)
		}
		c.report.AddFileResult(result)
	}

	return nil
}

// dirHasDatasets reports whether the directory contains any CSV file.
func dirHasDatasets(dir string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return false
	}
	return len(matches) > 0
}

// printFileStatus prints the status of a file check
func printFileStatus(path string, exists bool, created bool) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if exists {
		green.Printf("  ✓ %s\n", path)
	} else if created {
		green.Printf("  ✓ %s (created)\n", path)
	} else {
		yellow.Printf("  ⚠ %s does not exist\n", path)
	}
}

// printFileCreated prints a message when a file is created
func printFileCreated(path string) {
	green := color.New(color.FgGreen)
	green.Printf("  ✓ Created %s\n", path)
}
