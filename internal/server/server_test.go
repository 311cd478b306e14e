package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crimsight/crimsight/internal/config"
	"github.com/crimsight/crimsight/internal/store"
)

func newTestServer(t *testing.T, cfg *config.Config) (*Server, func()) {
	t.Helper()
	st, cleanup := store.SetupTestDB(t)
	cfg.Dataset.Dir = t.TempDir()
	cfg.Export.OutputDir = t.TempDir()

	srv, err := New(cfg, st)
	if err != nil {
		cleanup()
		t.Fatalf("New failed: %v", err)
	}
	return srv, cleanup
}

func TestNewServerWiresRoutes(t *testing.T) {
	srv, cleanup := newTestServer(t, config.Default())
	defer cleanup()

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 from health route, got %d", w.Code)
	}

	req, _ = http.NewRequest("GET", "/render/portada", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 from render route, got %d", w.Code)
	}
}

func TestServerSchedulerDisabledByDefault(t *testing.T) {
	srv, cleanup := newTestServer(t, config.Default())
	defer cleanup()

	if srv.scheduler != nil {
		t.Error("Scheduler should be nil when schedule is disabled")
	}
}

func TestServerSchedulerEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Schedule.Enabled = true
	srv, cleanup := newTestServer(t, cfg)
	defer cleanup()

	if srv.scheduler == nil {
		t.Fatal("Scheduler should be created when schedule is enabled")
	}
}

func TestStopWithoutStart(t *testing.T) {
	srv, cleanup := newTestServer(t, config.Default())
	defer cleanup()

	if err := srv.Stop(); err != nil {
		t.Errorf("Stop before Start should be a no-op, got %v", err)
	}
}
