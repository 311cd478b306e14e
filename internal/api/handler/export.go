package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crimsight/crimsight/internal/bulk"
	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/logger"
)

// ExportStatus describes the current or last bulk export run.
type ExportStatus struct {
	Running bool   `json:"running"`
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Title   string `json:"title,omitempty"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ExportHandler runs background whole-report exports.
// Only one export runs at a time; concurrent requests are rejected.
type ExportHandler struct {
	newExporter func(progress bulk.ProgressFunc) *bulk.Exporter

	mu     sync.Mutex
	status ExportStatus
}

// NewExportHandler creates an export handler. The factory is invoked
// per run so each export gets its own progress callback.
func NewExportHandler(newExporter func(progress bulk.ProgressFunc) *bulk.Exporter) *ExportHandler {
	return &ExportHandler{newExporter: newExporter}
}

// StartExport handles POST /api/v1/export
func (h *ExportHandler) StartExport(c *gin.Context) {
	h.mu.Lock()
	if h.status.Running {
		h.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{
			"code":    errors.ErrCodeConflict,
			"message": "An export is already running",
		})
		return
	}
	h.status = ExportStatus{Running: true}
	h.mu.Unlock()

	exporter := h.newExporter(func(p bulk.Progress) {
		h.mu.Lock()
		h.status.Index = p.Index
		h.status.Total = p.Total
		h.status.Title = p.Title
		h.mu.Unlock()
	})

	go func() {
		path, err := exporter.Export(context.Background())

		h.mu.Lock()
		h.status.Running = false
		h.status.Title = ""
		if err != nil {
			h.status.Error = err.Error()
			logger.Error("Background export failed", zap.Error(err))
		} else {
			h.status.Path = path
		}
		h.mu.Unlock()
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Export started",
	})
}

// GetExportStatus handles GET /api/v1/export/status
func (h *ExportHandler) GetExportStatus(c *gin.Context) {
	h.mu.Lock()
	status := h.status
	h.mu.Unlock()
	c.JSON(http.StatusOK, status)
}
