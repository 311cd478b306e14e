// Package main is the entry point for the CrimSight application.
// CrimSight is a municipal crime statistics dashboard with a print and
// PDF export pipeline.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimsight/crimsight/consts"
	"github.com/crimsight/crimsight/internal/bulk"
	"github.com/crimsight/crimsight/internal/capture"
	"github.com/crimsight/crimsight/internal/check"
	"github.com/crimsight/crimsight/internal/config"
	"github.com/crimsight/crimsight/internal/database"
	"github.com/crimsight/crimsight/internal/prefs"
	"github.com/crimsight/crimsight/internal/server"
	"github.com/crimsight/crimsight/internal/store"
	"github.com/crimsight/crimsight/pkg/idgen"
	"github.com/crimsight/crimsight/pkg/logger"
)

// Build information - set via ldflags during build
// These variables are linked to consts package for global access
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// init synchronizes build info to consts package for global access
func init() {
	consts.Version = Version
	consts.BuildTime = BuildTime
	consts.GitCommit = GitCommit
}

// configPath holds the path to the configuration file
var configPath string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "crimsight",
	Short: "CrimSight - Municipal Crime Statistics Dashboard",
	Long: `CrimSight serves a municipal crime statistics dashboard and exports
its report pages to print-ready PDF documents through a headless browser.`,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CrimSight server",
	Long: `Start the HTTP server for the dashboard, render pages and export API.

On first run, use --check flag to interactively set up your environment:
  crimsight serve --check

This will guide you through:
  - Creating the configuration file from a template
  - Creating the dataset and export directories
  - Validating the configuration and locating a browser binary

After initial setup, simply run:
  crimsight serve`,
	Run: runServe,
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the whole report to a PDF file",
	Long: `Capture every report page headlessly and assemble a single PDF
document in the configured output directory. Requires a running
CrimSight server unless --base-url points at another instance.`,
	Run: runExport,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("CrimSight %s\n", Version)
		fmt.Printf("  Build Time: %s\n", BuildTime)
		fmt.Printf("  Git Commit: %s\n", GitCommit)
	},
}

func init() {
	// Disable auto-generated completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: config/crimsight.yaml)")

	// Add commands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)

	// Serve command flags
	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	serveCmd.Flags().Bool("debug", false, "enable debug mode")
	serveCmd.Flags().Bool("check", false, "run interactive environment check before starting server")

	// Export command flags
	exportCmd.Flags().String("base-url", "", "dashboard base URL (default: the configured server address)")
	exportCmd.Flags().String("output", "", "output directory (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runServe starts the CrimSight server
func runServe(cmd *cobra.Command, args []string) {
	interactiveCheck, _ := cmd.Flags().GetBool("check")

	if interactiveCheck {
		checker := check.NewChecker()
		if err := checker.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Environment check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\n✓ Environment check completed successfully")
	} else {
		checker := check.NewChecker()
		result := checker.RunNonInteractive()

		if !result.Success {
			check.PrintCheckResult(result)
			os.Exit(1)
		}

		// Print warnings if any (but don't block startup)
		if len(result.Warnings) > 0 {
			for _, warn := range result.Warnings {
				fmt.Fprintf(os.Stderr, "[WARNING] %s\n", warn)
			}
			fmt.Fprintln(os.Stderr)
		}
	}

	// Record server start time
	consts.SetStartedAt(time.Now())

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	}

	// Auto-generate JWT secret if empty and save to config file
	if cfg.Auth.Enabled && strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		cfg.Auth.JWTSecret = idgen.NewSecureSecret(config.MinJWTSecretLength)

		path := configPath
		if path == "" {
			path = config.DefaultConfigPath
		}
		if err := config.WriteConfig(path, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "[WARNING] Failed to save JWT secret to config file: %v\n", err)
			fmt.Fprintf(os.Stderr, "Using auto-generated JWT secret for this session only.\n\n")
		} else {
			fmt.Fprintf(os.Stderr, "[INFO] JWT secret was empty, auto-generated and saved to config file.\n\n")
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "\n[ERROR] Configuration validation failed\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting CrimSight",
		zap.String("version", Version),
	)

	// Initialize database
	if err := database.InitWithPath(cfg.Database.Path); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	dataStore := store.NewStore(database.Get())

	// Create and start server
	srv, err := server.New(cfg, dataStore)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	if err := srv.Start(); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	logger.Info("CrimSight server is running",
		zap.String("address", cfg.Server.Address()),
	)

	// Log access URLs for user convenience
	port := cfg.Server.Port
	logger.Info(fmt.Sprintf("  Local:   http://localhost:%d", port))
	if lanIP := getLocalIP(); lanIP != "" {
		logger.Info(fmt.Sprintf("  Network: http://%s:%d", lanIP, port))
	}

	srv.WaitForShutdown()

	logger.Info("CrimSight stopped")
}

// runExport performs a one-shot headless export of the whole report
func runExport(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.Export.OutputDir = output
	}
	baseURL, _ := cmd.Flags().GetString("base-url")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s", cfg.Server.Address())
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := database.InitWithPath(cfg.Database.Path); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	dataStore := store.NewStore(database.Get())
	ps := prefs.NewService(dataStore)
	if err := ps.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load preferences: %v\n", err)
		os.Exit(1)
	}

	exporter := bulk.NewExporter(bulk.Options{
		Capturer: capture.NewEngine(capture.Options{
			ChromePath: cfg.Export.ChromePath,
			PixelRatio: cfg.Export.PixelRatio,
			Quality:    cfg.Export.BulkQuality,
			Timeout:    cfg.Export.CaptureTimeout(),
		}),
		Prefs:     ps,
		BaseURL:   baseURL,
		OutputDir: cfg.Export.OutputDir,
		Settle:    cfg.Export.BulkSettleDelay(),
		OnProgress: func(p bulk.Progress) {
			fmt.Printf("  [%d/%d] %s\n", p.Index, p.Total, p.Title)
		},
	})

	fmt.Println("Exporting report...")
	path, err := exporter.Export(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Report written to %s\n", path)
}

// loadConfig loads the configuration file, falling back to defaults
// when no file exists at the resolved path
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath
	}
	return config.LoadOrDefault(path)
}

// getLocalIP returns the first non-loopback IPv4 address
func getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return ""
}
