package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crimsight/crimsight/internal/catalog"
	"github.com/crimsight/crimsight/internal/layout"
	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/internal/prefs"
	"github.com/crimsight/crimsight/internal/store"
	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/idgen"
)

// SettingsHandler exposes per-page print settings and saved configurations,
// and accepts page measurements that drive the debounced fit-to-page scale.
type SettingsHandler struct {
	prefs  *prefs.Service
	store  store.Store
	fitter *layout.Fitter
}

// NewSettingsHandler creates a settings handler. Fitted scales land in the
// preference service like any other settings change.
func NewSettingsHandler(ps *prefs.Service, s store.Store, debounce time.Duration) *SettingsHandler {
	return &SettingsHandler{
		prefs: ps,
		store: s,
		fitter: layout.NewFitter(debounce, func(pageID string, scale float64) {
			ps.UpdateSettings(pageID, model.PageSettingsPatch{Scale: &scale})
		}),
	}
}

// GetAllSettings handles GET /api/v1/settings
func (h *SettingsHandler) GetAllSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.prefs.Snapshot())
}

// GetSettings handles GET /api/v1/settings/:pageId
// Unknown pages resolve to default settings, never to an error.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	pageID := c.Param("pageId")
	c.JSON(http.StatusOK, gin.H{
		"page_id":  pageID,
		"settings": h.prefs.GetSettings(pageID),
		"explicit": h.prefs.HasSavedSettings(pageID),
	})
}

// UpdateSettings handles PATCH /api/v1/settings/:pageId
// Applies a partial update; omitted fields keep their current value.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	pageID := c.Param("pageId")
	if !catalog.Contains(idgen.BaseID(pageID)) {
		writeError(c, errors.ErrNotFound("page"))
		return
	}

	var patch model.PageSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	if patch.Orientation != nil && !patch.Orientation.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid orientation, expected portrait or landscape",
		})
		return
	}

	// Turning fit-to-page off invalidates any pending fit from an
	// earlier measurement.
	if patch.FitToPage != nil && !*patch.FitToPage {
		h.fitter.Cancel(pageID)
	}

	settings, changed := h.prefs.UpdateSettings(pageID, patch)
	c.JSON(http.StatusOK, gin.H{
		"page_id":  pageID,
		"settings": settings,
		"changed":  changed,
	})
}

// MeasureRequest carries a page's rendered size as observed by the
// dashboard client.
type MeasureRequest struct {
	BoxHeight    float64 `json:"box_height" binding:"required"`
	ScrollHeight float64 `json:"scroll_height"`
}

// MeasurePage handles POST /api/v1/settings/:pageId/measure
// Schedules a debounced fit for pages with fit-to-page enabled. Bursts of
// measurements for the same page replace each other; only the last one
// inside the debounce window updates the scale.
func (h *SettingsHandler) MeasurePage(c *gin.Context) {
	pageID := c.Param("pageId")
	if !catalog.Contains(idgen.BaseID(pageID)) {
		writeError(c, errors.ErrNotFound("page"))
		return
	}

	var req MeasureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	settings := h.prefs.GetSettings(pageID)
	if !settings.FitToPage {
		c.JSON(http.StatusOK, gin.H{"scheduled": false})
		return
	}

	h.fitter.Measure(pageID, layout.Measurement{
		BoxHeight:    req.BoxHeight,
		ScrollHeight: req.ScrollHeight,
	}, settings.Orientation, settings.Scale)
	c.JSON(http.StatusAccepted, gin.H{"scheduled": true})
}

// ReplaceSettings handles PUT /api/v1/settings
// Replaces the whole settings map, used when restoring a configuration.
func (h *SettingsHandler) ReplaceSettings(c *gin.Context) {
	var settings map[string]model.PageSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	h.prefs.SetAll(settings)
	c.JSON(http.StatusOK, h.prefs.Snapshot())
}

// ListConfigs handles GET /api/v1/configs
// Returns saved configurations, newest first.
func (h *SettingsHandler) ListConfigs(c *gin.Context) {
	configs, err := h.store.Configs().List()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"configs": configs,
		"total":   len(configs),
	})
}
