package handler

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/crimsight/crimsight/internal/catalog"
	"github.com/crimsight/crimsight/internal/dataset"
	"github.com/crimsight/crimsight/internal/prefs"
	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/idgen"
	"github.com/crimsight/crimsight/pkg/logger"
)

// RenderHandler serves the print-ready page views captured by the
// export pipeline. Synthetic page IDs (duplicates and slice parts)
// render the underlying catalog page with their own settings.
type RenderHandler struct {
	prefs  *prefs.Service
	loader *dataset.Loader

	summaryOnce sync.Once
	summary     map[string]interface{}
}

// NewRenderHandler creates a render handler.
func NewRenderHandler(ps *prefs.Service, loader *dataset.Loader) *RenderHandler {
	return &RenderHandler{prefs: ps, loader: loader}
}

// RenderPage handles GET /render/:pageId
func (h *RenderHandler) RenderPage(c *gin.Context) {
	pageID := c.Param("pageId")
	baseID := idgen.BaseID(pageID)
	if !catalog.Contains(baseID) {
		writeError(c, errors.ErrNotFound("page"))
		return
	}

	// Settings belong to the synthetic ID; the template and capture
	// region belong to the underlying catalog page.
	settings := h.prefs.GetSettings(pageID)

	var buf bytes.Buffer
	if err := catalog.Render(&buf, baseID, settings, h.datasetSummary(c)); err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// datasetSummary loads the dataset summary once and reuses it. A load
// failure renders pages without dataset figures instead of failing.
func (h *RenderHandler) datasetSummary(c *gin.Context) map[string]interface{} {
	h.summaryOnce.Do(func() {
		summary := h.loader.Summary(c.Request.Context())
		if len(summary) == 0 {
			logger.Warn("Dataset summary unavailable, rendering without figures")
		}
		h.summary = summary
	})
	return h.summary
}

// ListPages handles GET /api/v1/pages
func (h *RenderHandler) ListPages(c *gin.Context) {
	pages := catalog.Pages()
	c.JSON(http.StatusOK, gin.H{
		"pages": pages,
		"total": len(pages),
	})
}
