// Package telemetry provides Prometheus metrics for the application.
// Metrics are registered on a dedicated registry and exposed via Handler()
// on the main HTTP server.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	registry *prometheus.Registry

	// Capture metrics
	CapturesTotal   *prometheus.CounterVec
	CaptureDuration prometheus.Histogram

	// Slicer metrics
	SlicesTotal prometheus.Counter

	// Export metrics
	ExportsTotal   *prometheus.CounterVec
	ExportDuration prometheus.Histogram
	ExportPages    prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = newMetrics(prometheus.NewRegistry())
	})
	return globalMetrics
}

// newMetrics registers all application metrics on the given registry
func newMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{registry: reg}

	m.CapturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimsight_captures_total",
		Help: "Total number of page captures by result",
	}, []string{"result"})

	m.CaptureDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crimsight_capture_duration_seconds",
		Help:    "Duration of page captures in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	m.SlicesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crimsight_slices_total",
		Help: "Total number of slice pages generated from over-tall captures",
	})

	m.ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimsight_exports_total",
		Help: "Total number of document exports by mode and result",
	}, []string{"mode", "result"})

	m.ExportDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crimsight_export_duration_seconds",
		Help:    "Duration of document assembly in seconds",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
	})

	m.ExportPages = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crimsight_export_pages",
		Help:    "Number of pages per exported document",
		Buckets: []float64{1, 2, 4, 8, 16, 32},
	})

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimsight_http_requests_total",
		Help: "Total number of HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	reg.MustRegister(
		m.CapturesTotal,
		m.CaptureDuration,
		m.SlicesTotal,
		m.ExportsTotal,
		m.ExportDuration,
		m.ExportPages,
		m.HTTPRequestsTotal,
	)
	return m
}

// Handler returns an HTTP handler serving the metrics registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ResetForTesting replaces the global metrics with a fresh registry.
// WARNING: Only use this function in tests!
func ResetForTesting() {
	globalMetrics = newMetrics(prometheus.NewRegistry())
	metricsOnce = sync.Once{}
	metricsOnce.Do(func() {})
}
