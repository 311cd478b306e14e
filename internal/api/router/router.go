// Package router sets up the API routes for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/crimsight/crimsight/internal/api/handler"
	"github.com/crimsight/crimsight/internal/api/middleware"
	"github.com/crimsight/crimsight/internal/bulk"
	"github.com/crimsight/crimsight/internal/config"
	"github.com/crimsight/crimsight/internal/database"
	"github.com/crimsight/crimsight/internal/dataset"
	"github.com/crimsight/crimsight/internal/prefs"
	"github.com/crimsight/crimsight/internal/store"
	"github.com/crimsight/crimsight/internal/wizard"
	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/telemetry"
)

// Deps carries the services the API routes depend on.
type Deps struct {
	Config      *config.Config
	Store       store.Store
	Prefs       *prefs.Service
	Wizard      *wizard.Service
	Loader      *dataset.Loader
	NewExporter func(progress bulk.ProgressFunc) *bulk.Exporter
}

// Setup configures all API routes
func Setup(r *gin.Engine, deps Deps) {
	cfg := deps.Config

	// Apply global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{
		AccessLog: cfg.Logging.AccessLog,
	}))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(cfg.Server.Debug))

	// Health check endpoint (public)
	r.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(503, gin.H{
				"status": "unavailable",
				"code":   errors.ErrCodeDBConnection,
			})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics (public)
	r.GET("/metrics", gin.WrapH(telemetry.GetMetrics().Handler()))

	// Print-ready page views, fetched by the headless browser during
	// capture. Public: the capture engine carries no credentials.
	renderHandler := handler.NewRenderHandler(deps.Prefs, deps.Loader)
	r.GET("/render/:pageId", renderHandler.RenderPage)

	// API v1 routes
	v1 := r.Group("/api/v1")

	// ============== Auth routes ==============

	authHandler := handler.NewAuthHandler(cfg)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// ============== API routes ==============

	// Protect the API group only when authentication is enabled
	api := v1.Group("")
	if cfg.Auth.Enabled {
		api.Use(middleware.JWTAuth(authHandler))
		api.GET("/auth/me", authHandler.Me)
	}

	// Page catalog
	api.GET("/pages", renderHandler.ListPages)

	// Print settings and saved configurations
	settingsHandler := handler.NewSettingsHandler(deps.Prefs, deps.Store, cfg.Export.FitDebounce())
	settings := api.Group("/settings")
	{
		settings.GET("", settingsHandler.GetAllSettings)
		settings.PUT("", settingsHandler.ReplaceSettings)
		settings.GET("/:pageId", settingsHandler.GetSettings)
		settings.PATCH("/:pageId", settingsHandler.UpdateSettings)
		settings.POST("/:pageId/measure", settingsHandler.MeasurePage)
	}
	api.GET("/configs", settingsHandler.ListConfigs)

	// Interactive export sessions
	wizardHandler := handler.NewWizardHandler(deps.Wizard)
	sessions := api.Group("/wizard/sessions")
	{
		sessions.POST("", wizardHandler.StartSession)
		sessions.GET("/:id", wizardHandler.GetSession)
		sessions.DELETE("/:id", wizardHandler.CloseSession)
		sessions.POST("/:id/advance", wizardHandler.Advance)
		sessions.POST("/:id/skip", wizardHandler.Skip)
		sessions.POST("/:id/previous", wizardHandler.Previous)
		sessions.POST("/:id/review", wizardHandler.Review)
		sessions.POST("/:id/duplicate", wizardHandler.Duplicate)
		sessions.POST("/:id/finish", wizardHandler.Finish)
	}

	// Background whole-report export
	if deps.NewExporter != nil {
		exportHandler := handler.NewExportHandler(deps.NewExporter)
		api.POST("/export", exportHandler.StartExport)
		api.GET("/export/status", exportHandler.GetExportStatus)
	}
}
