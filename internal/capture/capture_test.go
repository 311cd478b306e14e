package capture

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(Options{})
	if e.options.PixelRatio != 2 {
		t.Errorf("expected pixel ratio 2, got %d", e.options.PixelRatio)
	}
	if e.options.Quality != 95 {
		t.Errorf("expected quality 95, got %d", e.options.Quality)
	}
	if e.options.Timeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", e.options.Timeout)
	}
}

func TestNewEngineKeepsExplicitOptions(t *testing.T) {
	e := NewEngine(Options{PixelRatio: 3, Quality: 85, Timeout: 10 * time.Second})
	if e.options.PixelRatio != 3 || e.options.Quality != 85 || e.options.Timeout != 10*time.Second {
		t.Errorf("explicit options overridden: %+v", e.options)
	}
}

func TestBackgroundOverrideIsOpaqueWhite(t *testing.T) {
	c := cdpColorWhite
	if c.R != 255 || c.G != 255 || c.B != 255 || c.A != 1 {
		t.Errorf("unexpected background override: %+v", c)
	}
}

func TestExpandScrollablesJS(t *testing.T) {
	js := expandScrollablesJS("wizard-capture-portada")
	if !strings.Contains(js, `"wizard-capture-portada"`) {
		t.Error("script missing quoted region ID")
	}
	if !strings.Contains(js, "__captureOrigStyles") {
		t.Error("script missing style record")
	}
	if !strings.Contains(js, "scrollHeight") {
		t.Error("script missing scroll height expansion")
	}
}

func TestExpandScrollablesJSEscapesID(t *testing.T) {
	js := expandScrollablesJS(`x"); alert(1); ("`)
	if strings.Contains(js, `getElementById("x");`) {
		t.Error("region ID not escaped")
	}
}

func TestRestoreScrollablesJS(t *testing.T) {
	js := restoreScrollablesJS()
	if !strings.Contains(js, "cssText") || !strings.Contains(js, "delete window.__captureOrigStyles") {
		t.Errorf("restore script incomplete: %s", js)
	}
}

func TestRegionRectDecode(t *testing.T) {
	raw := []byte(`{"x":10.5,"y":20,"width":793.7,"height":1122.5}`)
	var rect regionRect
	if err := json.Unmarshal(raw, &rect); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if rect.X != 10.5 || rect.Width != 793.7 {
		t.Errorf("unexpected rect: %+v", rect)
	}
}
