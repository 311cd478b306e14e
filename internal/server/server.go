// Package server provides the HTTP server for the application.
// It handles server lifecycle, API routes, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crimsight/crimsight/internal/api/router"
	"github.com/crimsight/crimsight/internal/bulk"
	"github.com/crimsight/crimsight/internal/capture"
	"github.com/crimsight/crimsight/internal/config"
	"github.com/crimsight/crimsight/internal/dataset"
	"github.com/crimsight/crimsight/internal/prefs"
	"github.com/crimsight/crimsight/internal/slicer"
	"github.com/crimsight/crimsight/internal/store"
	"github.com/crimsight/crimsight/internal/wizard"
	"github.com/crimsight/crimsight/pkg/logger"
)

// HTTP server timeout configuration
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 120 * time.Second // finish requests stream whole documents
	defaultIdleTimeout  = 60 * time.Second

	defaultShutdownTimeout = 30 * time.Second
	defaultStopTimeout     = 5 * time.Second
)

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	router     *gin.Engine
	store      store.Store
	scheduler  *bulk.Scheduler
}

// New creates a new server instance and wires the export services.
func New(cfg *config.Config, s store.Store) (*Server, error) {
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	ps := prefs.NewService(s)
	if err := ps.Load(); err != nil {
		return nil, err
	}

	baseURL := fmt.Sprintf("http://%s", cfg.Server.Address())
	loader := dataset.NewLoader(cfg.Dataset.Dir)

	capturer := capture.NewEngine(capture.Options{
		ChromePath: cfg.Export.ChromePath,
		PixelRatio: cfg.Export.PixelRatio,
		Quality:    cfg.Export.Quality,
		Timeout:    cfg.Export.CaptureTimeout(),
	})
	bulkCapturer := capture.NewEngine(capture.Options{
		ChromePath: cfg.Export.ChromePath,
		PixelRatio: cfg.Export.PixelRatio,
		Quality:    cfg.Export.BulkQuality,
		Timeout:    cfg.Export.CaptureTimeout(),
	})

	wizardSvc := wizard.NewService(wizard.Options{
		Capturer: capturer,
		Slicer:   slicer.New(cfg.Export.Quality, cfg.Export.SliceTolerance),
		Prefs:    ps,
		Store:    s,
		BaseURL:  baseURL,
		Settle:   cfg.Export.SettleDelay(),
	})

	newExporter := func(progress bulk.ProgressFunc) *bulk.Exporter {
		return bulk.NewExporter(bulk.Options{
			Capturer:   bulkCapturer,
			Prefs:      ps,
			BaseURL:    baseURL,
			OutputDir:  cfg.Export.OutputDir,
			Settle:     cfg.Export.BulkSettleDelay(),
			OnProgress: progress,
		})
	}

	router.Setup(r, router.Deps{
		Config:      cfg,
		Store:       s,
		Prefs:       ps,
		Wizard:      wizardSvc,
		Loader:      loader,
		NewExporter: newExporter,
	})

	srv := &Server{
		cfg:    cfg,
		router: r,
		store:  s,
	}

	if cfg.Schedule.Enabled {
		srv.scheduler = bulk.NewScheduler(newExporter(nil), cfg.Schedule.Spec)
	}

	return srv, nil
}

// Start starts the HTTP server and the export scheduler if enabled.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Address(),
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	logger.Info("Starting HTTP server",
		zap.String("address", s.cfg.Server.Address()),
		zap.Bool("debug", s.cfg.Server.Debug),
	)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			return err
		}
	}

	return nil
}

// WaitForShutdown waits for shutdown signal and gracefully stops the server
// First signal triggers graceful shutdown, second signal forces immediate exit
func (s *Server) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("Received shutdown signal, starting graceful shutdown (press Ctrl+C again to force exit)",
		zap.String("signal", sig.String()))

	go func() {
		sig := <-quit
		logger.Warn("Received second shutdown signal, forcing exit",
			zap.String("signal", sig.String()))
		os.Exit(1)
	}()

	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// Stop stops the server immediately
func (s *Server) Stop() error {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultStopTimeout)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// Router returns the underlying Gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}
