package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crimsight/crimsight/internal/wizard"
	"github.com/crimsight/crimsight/pkg/errors"
)

// WizardHandler exposes the interactive export session API.
type WizardHandler struct {
	service *wizard.Service
}

// NewWizardHandler creates a wizard session handler.
func NewWizardHandler(service *wizard.Service) *WizardHandler {
	return &WizardHandler{service: service}
}

// StartSessionRequest represents the session creation request body.
// PageID is empty for a whole-report session.
type StartSessionRequest struct {
	PageID string `json:"page_id"`
}

// StartSession handles POST /api/v1/wizard/sessions
func (h *WizardHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	state, err := h.service.Start(req.PageID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// GetSession handles GET /api/v1/wizard/sessions/:id
func (h *WizardHandler) GetSession(c *gin.Context) {
	state, err := h.service.State(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// CloseSession handles DELETE /api/v1/wizard/sessions/:id
func (h *WizardHandler) CloseSession(c *gin.Context) {
	h.service.Close(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// Advance handles POST /api/v1/wizard/sessions/:id/advance
// Captures the current page and moves to the next step.
func (h *WizardHandler) Advance(c *gin.Context) {
	state, err := h.service.Advance(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Skip handles POST /api/v1/wizard/sessions/:id/skip
func (h *WizardHandler) Skip(c *gin.Context) {
	state, err := h.service.Skip(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Previous handles POST /api/v1/wizard/sessions/:id/previous
func (h *WizardHandler) Previous(c *gin.Context) {
	state, err := h.service.Previous(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Review handles POST /api/v1/wizard/sessions/:id/review
// Returns from the download step to the last page.
func (h *WizardHandler) Review(c *gin.Context) {
	state, err := h.service.Review(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Duplicate handles POST /api/v1/wizard/sessions/:id/duplicate
func (h *WizardHandler) Duplicate(c *gin.Context) {
	state, err := h.service.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Finish handles POST /api/v1/wizard/sessions/:id/finish
// Assembles the captured pages and streams the PDF document.
func (h *WizardHandler) Finish(c *gin.Context) {
	var buf bytes.Buffer
	filename, err := h.service.Finish(c.Param("id"), &buf)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
