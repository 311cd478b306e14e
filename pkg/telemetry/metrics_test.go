package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestGetMetricsSingleton(t *testing.T) {
	m1 := GetMetrics()
	m2 := GetMetrics()
	if m1 != m2 {
		t.Error("GetMetrics() should return the same instance")
	}
}

func TestMetricsRegistered(t *testing.T) {
	m := newMetrics(prometheus.NewRegistry())

	m.CapturesTotal.WithLabelValues("success").Inc()
	m.CapturesTotal.WithLabelValues("error").Add(2)
	m.SlicesTotal.Inc()
	m.ExportsTotal.WithLabelValues("wizard", "success").Inc()
	m.ExportDuration.Observe(3.5)
	m.ExportPages.Observe(16)
	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/wizard/state", "200").Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics handler status = %d", rec.Code)
	}

	body := rec.Body.String()
	for _, name := range []string{
		"crimsight_captures_total",
		"crimsight_slices_total",
		"crimsight_exports_total",
		"crimsight_export_duration_seconds",
		"crimsight_export_pages",
		"crimsight_http_requests_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}
