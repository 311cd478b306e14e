// Package catalog defines the ordered set of report pages and renders them
// as standalone HTML documents for capture.
package catalog

import (
	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/pkg/errors"
)

// CaptureRegionPrefix is the element ID prefix of the capturable region
// inside a rendered page.
const CaptureRegionPrefix = "wizard-capture-"

// RegionID returns the DOM element ID of the capture region for a page.
func RegionID(pageID string) string {
	return CaptureRegionPrefix + pageID
}

// pages is the canonical report page order. Bulk exports and the wizard
// walk this list front to back.
var pages = []model.PageDescriptor{
	{ID: "portada", Title: "Portada"},
	{ID: "executive-summary", Title: "Resumen Ejecutivo"},
	{ID: "communal-fact-sheet", Title: "Ficha Comunal"},
	{ID: "weekly-analysis", Title: "Análisis Semanal"},
	{ID: "tactical-traffic", Title: "Semáforo Delictual"},
	{ID: "tactical-daily", Title: "Perfil Diario"},
	{ID: "tactical-trend", Title: "Tendencia Táctica"},
	{ID: "crime-matrix", Title: "Matriz de Delitos"},
	{ID: "strategic-analysis", Title: "Análisis Estratégico"},
	{ID: "regional-benchmarking", Title: "Ranking Regional"},
	{ID: "historical-trends", Title: "Tendencias Históricas"},
	{ID: "forecasting", Title: "Proyección"},
	{ID: "demographics", Title: "Análisis Demográfico"},
	{ID: "seasonality", Title: "Estacionalidad"},
	{ID: "ai-projections", Title: "Proyecciones IA"},
	{ID: "impact-evaluator", Title: "Evaluador de Impacto"},
}

// Pages returns the report pages in presentation order.
func Pages() []model.PageDescriptor {
	out := make([]model.PageDescriptor, len(pages))
	copy(out, pages)
	return out
}

// Lookup returns the descriptor for a page ID.
func Lookup(pageID string) (model.PageDescriptor, error) {
	for _, p := range pages {
		if p.ID == pageID {
			return p, nil
		}
	}
	return model.PageDescriptor{}, errors.New(errors.ErrCodeNotFound, "unknown report page: "+pageID)
}

// Contains reports whether pageID names a known report page.
func Contains(pageID string) bool {
	_, err := Lookup(pageID)
	return err == nil
}

// IndexOf returns the position of pageID in the canonical order, or -1.
func IndexOf(pageID string) int {
	for i, p := range pages {
		if p.ID == pageID {
			return i
		}
	}
	return -1
}
