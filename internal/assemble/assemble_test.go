package assemble

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/crimsight/crimsight/internal/model"
)

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestAssembleSinglePage(t *testing.T) {
	var buf bytes.Buffer
	count, err := Assemble(&buf, []Page{
		{ID: "portada", Title: "Portada", Orientation: model.OrientationPortrait, Image: testJPEG(t, 210, 297)},
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 sheet, got %d", count)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output is not a PDF document")
	}
}

func TestAssembleMixedOrientations(t *testing.T) {
	var buf bytes.Buffer
	count, err := Assemble(&buf, []Page{
		{ID: "portada", Orientation: model.OrientationPortrait, Image: testJPEG(t, 210, 297)},
		{ID: "crime-matrix", Orientation: model.OrientationLandscape, Image: testJPEG(t, 297, 210)},
		{ID: "forecasting", Orientation: model.OrientationPortrait, Image: testJPEG(t, 210, 297)},
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 sheets, got %d", count)
	}
}

func TestAssembleSkipsMissingImages(t *testing.T) {
	var buf bytes.Buffer
	count, err := Assemble(&buf, []Page{
		{ID: "portada", Orientation: model.OrientationPortrait, Image: testJPEG(t, 210, 297)},
		{ID: "executive-summary", Orientation: model.OrientationPortrait}, // no capture
		{ID: "forecasting", Orientation: model.OrientationPortrait, Image: testJPEG(t, 210, 297)},
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected missing image to be skipped, got %d sheets", count)
	}
}

func TestAssembleEmpty(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Assemble(&buf, nil); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := Assemble(&buf, []Page{{ID: "portada"}}); err == nil {
		t.Error("expected error when no page has an image")
	}
}

func TestAssembleFirstImageFixesBaseOrientation(t *testing.T) {
	// First page has no image; the base orientation comes from the first
	// page that does.
	var buf bytes.Buffer
	count, err := Assemble(&buf, []Page{
		{ID: "portada", Orientation: model.OrientationPortrait},
		{ID: "crime-matrix", Orientation: model.OrientationLandscape, Image: testJPEG(t, 297, 210)},
	})
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 sheet, got %d", count)
	}
}

func TestFullReportFilename(t *testing.T) {
	ts := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	if got := FullReportFilename(ts); got != "Reporte_Completo_2026-08-30.pdf" {
		t.Errorf("unexpected filename: %s", got)
	}
}

func TestBulkReportFilename(t *testing.T) {
	ts := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	if got := BulkReportFilename(ts); got != "Reporte_Seguridad_2026-08-30.pdf" {
		t.Errorf("unexpected filename: %s", got)
	}
}

func TestPageFilename(t *testing.T) {
	ts := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		title string
		want  string
	}{
		{"Resumen Ejecutivo", "resumen_ejecutivo_2026-08-30.pdf"},
		{"Semáforo Delictual", "semáforo_delictual_2026-08-30.pdf"},
		{"a/b\\c:d", "a_b_c_d_2026-08-30.pdf"},
		{"", "reporte_2026-08-30.pdf"},
		{"///", "reporte_2026-08-30.pdf"},
	}
	for _, tt := range tests {
		if got := PageFilename(tt.title, ts); got != tt.want {
			t.Errorf("PageFilename(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("a  b??c"); got != "a_b_c" {
		t.Errorf("sanitizeFilename = %q", got)
	}
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	if got := sanitizeFilename(string(long)); len(got) != 100 {
		t.Errorf("expected truncation to 100, got %d", len(got))
	}
}
