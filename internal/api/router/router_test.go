package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/crimsight/crimsight/internal/config"
	"github.com/crimsight/crimsight/internal/dataset"
	"github.com/crimsight/crimsight/internal/prefs"
	"github.com/crimsight/crimsight/internal/store"
	"github.com/crimsight/crimsight/internal/wizard"
)

func setupRouter(t *testing.T, cfg *config.Config) (*gin.Engine, func()) {
	t.Helper()
	st, cleanup := store.SetupTestDB(t)
	ps := prefs.NewService(st)
	if err := ps.Load(); err != nil {
		cleanup()
		t.Fatalf("prefs load failed: %v", err)
	}
	svc := wizard.NewService(wizard.Options{
		Prefs:   ps,
		Store:   st,
		BaseURL: "http://127.0.0.1:8090",
	})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	Setup(r, Deps{
		Config: cfg,
		Store:  st,
		Prefs:  ps,
		Wizard: svc,
		Loader: dataset.NewLoader(t.TempDir()),
	})
	return r, cleanup
}

func TestHealthEndpoint(t *testing.T) {
	router, cleanup := setupRouter(t, config.Default())
	defer cleanup()

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("Unexpected health body: %s", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, cleanup := setupRouter(t, config.Default())
	defer cleanup()

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRenderRoutePublic(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	router, cleanup := setupRouter(t, cfg)
	defer cleanup()

	// The headless browser fetches render pages without credentials
	req, _ := http.NewRequest("GET", "/render/portada", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Render route should be public, got %d", w.Code)
	}
}

func TestAPIRequiresAuthWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	router, cleanup := setupRouter(t, cfg)
	defer cleanup()

	req, _ := http.NewRequest("GET", "/api/v1/pages", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", w.Code)
	}
}

func TestAPIOpenWhenAuthDisabled(t *testing.T) {
	router, cleanup := setupRouter(t, config.Default())
	defer cleanup()

	req, _ := http.NewRequest("GET", "/api/v1/pages", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 with auth disabled, got %d", w.Code)
	}
}

func TestSettingsRoutes(t *testing.T) {
	router, cleanup := setupRouter(t, config.Default())
	defer cleanup()

	req, _ := http.NewRequest("GET", "/api/v1/settings/portada", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
