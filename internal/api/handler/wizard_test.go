package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/crimsight/crimsight/internal/wizard"
)

func setupWizardRouter(t *testing.T, cap *stubCapturer) (*gin.Engine, func()) {
	t.Helper()
	_, _, svc, cleanup := setupServices(t, cap)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewWizardHandler(svc)
	router.POST("/sessions", h.StartSession)
	router.GET("/sessions/:id", h.GetSession)
	router.DELETE("/sessions/:id", h.CloseSession)
	router.POST("/sessions/:id/advance", h.Advance)
	router.POST("/sessions/:id/skip", h.Skip)
	router.POST("/sessions/:id/previous", h.Previous)
	router.POST("/sessions/:id/review", h.Review)
	router.POST("/sessions/:id/duplicate", h.Duplicate)
	router.POST("/sessions/:id/finish", h.Finish)
	return router, cleanup
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = bytes.NewBufferString(body)
	}
	req, _ := http.NewRequest("POST", path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) wizard.State {
	t.Helper()
	var state wizard.State
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("Failed to parse state: %v (%s)", err, w.Body.String())
	}
	return state
}

func TestStartSessionEndpoint(t *testing.T) {
	router, cleanup := setupWizardRouter(t, &stubCapturer{})
	defer cleanup()

	w := postJSON(t, router, "/sessions", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	state := decodeState(t, w)
	if state.SessionID == "" || state.Total != 16 {
		t.Errorf("Unexpected session state: %+v", state)
	}
}

func TestStartSessionSinglePage(t *testing.T) {
	router, cleanup := setupWizardRouter(t, &stubCapturer{})
	defer cleanup()

	w := postJSON(t, router, "/sessions", `{"page_id":"crime-matrix"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	state := decodeState(t, w)
	if state.Total != 1 {
		t.Errorf("Expected single-page session, got %d pages", state.Total)
	}

	w = postJSON(t, router, "/sessions", `{"page_id":"bogus"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown page, got %d", w.Code)
	}
}

func TestSessionFlowEndpoints(t *testing.T) {
	router, cleanup := setupWizardRouter(t, &stubCapturer{image: testJPEG(t)})
	defer cleanup()

	w := postJSON(t, router, "/sessions", "")
	state := decodeState(t, w)
	id := state.SessionID

	// Advance captures and moves forward
	w = postJSON(t, router, "/sessions/"+id+"/advance", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Advance failed: %d %s", w.Code, w.Body.String())
	}
	state = decodeState(t, w)
	if state.Step != 1 || !state.Pages[0].Captured {
		t.Errorf("Unexpected state after advance: %+v", state)
	}

	// Skip moves forward without capture
	w = postJSON(t, router, "/sessions/"+id+"/skip", "")
	state = decodeState(t, w)
	if state.Step != 2 || state.Pages[1].Captured {
		t.Errorf("Unexpected state after skip: %+v", state)
	}

	// Previous moves back
	w = postJSON(t, router, "/sessions/"+id+"/previous", "")
	state = decodeState(t, w)
	if state.Step != 1 {
		t.Errorf("Unexpected step after previous: %d", state.Step)
	}

	// State endpoint reflects the session
	req, _ := http.NewRequest("GET", "/sessions/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GetSession failed: %d", rec.Code)
	}
	state = decodeState(t, rec)
	if state.Step != 1 {
		t.Errorf("State endpoint out of sync: %+v", state)
	}

	// Duplicate inserts a copy
	w = postJSON(t, router, "/sessions/"+id+"/duplicate", "")
	state = decodeState(t, w)
	if state.Total != 17 {
		t.Errorf("Expected 17 pages after duplicate, got %d", state.Total)
	}

	// Close removes the session
	req, _ = http.NewRequest("DELETE", "/sessions/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("CloseSession failed: %d", rec.Code)
	}

	req, _ = http.NewRequest("GET", "/sessions/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after close, got %d", rec.Code)
	}
}

func TestFinishEndpointStreamsPDF(t *testing.T) {
	router, cleanup := setupWizardRouter(t, &stubCapturer{image: testJPEG(t)})
	defer cleanup()

	w := postJSON(t, router, "/sessions", `{"page_id":"portada"}`)
	state := decodeState(t, w)
	id := state.SessionID

	if w := postJSON(t, router, "/sessions/"+id+"/advance", ""); w.Code != http.StatusOK {
		t.Fatalf("Advance failed: %d", w.Code)
	}

	w = postJSON(t, router, "/sessions/"+id+"/finish", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Finish failed: %d %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "portada_") || !strings.Contains(cd, ".pdf") {
		t.Errorf("Unexpected content disposition: %s", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("Response body is not a PDF")
	}
}

func TestFinishEndpointWithoutCaptures(t *testing.T) {
	router, cleanup := setupWizardRouter(t, &stubCapturer{})
	defer cleanup()

	w := postJSON(t, router, "/sessions", "")
	state := decodeState(t, w)

	w = postJSON(t, router, "/sessions/"+state.SessionID+"/finish", "")
	if w.Code == http.StatusOK {
		t.Error("Expected error status when nothing was captured")
	}
}

func TestAdvanceCaptureErrorSurfaced(t *testing.T) {
	cap := &stubCapturer{}
	router, cleanup := setupWizardRouter(t, cap)
	defer cleanup()

	w := postJSON(t, router, "/sessions", "")
	state := decodeState(t, w)

	// stubCapturer without an image reports a missing capture region
	w = postJSON(t, router, "/sessions/"+state.SessionID+"/advance", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing capture region, got %d: %s", w.Code, w.Body.String())
	}
}
