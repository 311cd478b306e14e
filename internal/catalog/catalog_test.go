package catalog

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/crimsight/crimsight/internal/model"
)

func TestPagesOrder(t *testing.T) {
	got := Pages()
	if len(got) != 16 {
		t.Fatalf("expected 16 report pages, got %d", len(got))
	}
	if got[0].ID != "portada" {
		t.Errorf("first page should be portada, got %s", got[0].ID)
	}
	if got[len(got)-1].ID != "impact-evaluator" {
		t.Errorf("last page should be impact-evaluator, got %s", got[len(got)-1].ID)
	}

	// IDs are unique
	seen := make(map[string]bool)
	for _, p := range got {
		if seen[p.ID] {
			t.Errorf("duplicate page ID %s", p.ID)
		}
		seen[p.ID] = true
		if p.Title == "" {
			t.Errorf("page %s has no title", p.ID)
		}
	}
}

func TestPagesIsCopy(t *testing.T) {
	got := Pages()
	got[0].ID = "mutated"
	if Pages()[0].ID != "portada" {
		t.Error("mutating the returned slice should not affect the catalog")
	}
}

func TestLookup(t *testing.T) {
	p, err := Lookup("crime-matrix")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if p.Title != "Matriz de Delitos" {
		t.Errorf("unexpected title: %s", p.Title)
	}

	if _, err := Lookup("nonexistent"); err == nil {
		t.Error("expected error for unknown page")
	}
	if Contains("nonexistent") {
		t.Error("Contains should be false for unknown page")
	}
}

func TestIndexOf(t *testing.T) {
	if i := IndexOf("portada"); i != 0 {
		t.Errorf("expected index 0, got %d", i)
	}
	if i := IndexOf("executive-summary"); i != 1 {
		t.Errorf("expected index 1, got %d", i)
	}
	if i := IndexOf("nope"); i != -1 {
		t.Errorf("expected -1 for unknown page, got %d", i)
	}
}

func TestRegionID(t *testing.T) {
	if got := RegionID("portada"); got != "wizard-capture-portada" {
		t.Errorf("unexpected region ID: %s", got)
	}
}

func TestRenderDefault(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "portada", model.DefaultPageSettings(), map[string]interface{}{
		"Casos": 1240,
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, `id="wizard-capture-portada"`) {
		t.Error("rendered page missing capture region element")
	}
	if !strings.Contains(html, "Portada") {
		t.Error("rendered page missing title")
	}
	if !strings.Contains(html, "width: 210mm") {
		t.Error("portrait page should be 210mm wide")
	}
	if !strings.Contains(html, "1240") {
		t.Error("rendered page missing dataset value")
	}
}

func TestRenderLandscape(t *testing.T) {
	settings := model.PageSettings{Orientation: model.OrientationLandscape, Scale: 0.8}

	var buf bytes.Buffer
	if err := Render(&buf, "crime-matrix", settings, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, "width: 297mm") {
		t.Error("landscape page should be 297mm wide")
	}
	if !strings.Contains(html, "scale(0.8)") {
		t.Error("scale transform missing")
	}
	if !strings.Contains(html, "Sin datos disponibles") {
		t.Error("empty dataset note missing")
	}
}

func TestRenderAppliesFittedScale(t *testing.T) {
	// Fit-to-page stores the fitted value in Scale; the rendered page
	// must carry that transform so the capture picks it up.
	settings := model.PageSettings{
		Orientation: model.OrientationPortrait,
		FitToPage:   true,
		Scale:       0.65,
	}

	var buf bytes.Buffer
	if err := Render(&buf, "portada", settings, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "scale(0.65)") {
		t.Error("fitted scale transform missing")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, "bogus", model.DefaultPageSettings(), nil); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestRegisterOverride(t *testing.T) {
	marker := rendererFunc(func(ctx RenderContext) string { return "custom:" + ctx.Page.ID })
	Register("seasonality", marker)
	defer func() {
		regMu.Lock()
		delete(overrides, "seasonality")
		regMu.Unlock()
	}()

	var buf bytes.Buffer
	if err := Render(&buf, "seasonality", model.DefaultPageSettings(), nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.String() != "custom:seasonality" {
		t.Errorf("override renderer not used: %q", buf.String())
	}
}

// rendererFunc adapts a function to the Renderer interface for tests.
type rendererFunc func(ctx RenderContext) string

func (f rendererFunc) Render(w io.Writer, ctx RenderContext) error {
	_, err := io.WriteString(w, f(ctx))
	return err
}
