// Package assemble builds the final PDF document from captured page images.
// Every image is stretched onto its own A4 sheet; the document's base
// orientation is fixed by the first page.
package assemble

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/logger"
)

// Page is one sheet of the assembled document.
type Page struct {
	ID          string
	Title       string
	Orientation model.Orientation

	// Image is the JPEG to place on the sheet. Pages with no image are
	// skipped silently; a failed capture must not block the document.
	Image []byte
}

// Assemble writes the PDF for the given pages to w and returns the number of
// sheets produced. An empty input (or one with only imageless pages) yields
// an error rather than a zero-page document.
func Assemble(w io.Writer, pages []Page) (int, error) {
	first := firstWithImage(pages)
	if first == -1 {
		return 0, errors.New(errors.ErrCodeAssembly, "no captured pages to assemble")
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientStr(pages[first].Orientation),
		UnitStr:        "mm",
		Size:           sizeFor(pages[first].Orientation),
	})
	doc.SetAutoPageBreak(false, 0)

	count := 0
	for i, p := range pages {
		if len(p.Image) == 0 {
			logger.Warn("Skipping page without capture",
				zap.String("page", p.ID),
				zap.String("title", p.Title),
			)
			continue
		}

		size := sizeFor(p.Orientation)
		doc.AddPageFormat(orientStr(p.Orientation), size)

		name := fmt.Sprintf("page-%d-%s", i, p.ID)
		doc.RegisterImageOptionsReader(name,
			fpdf.ImageOptions{ImageType: "JPG"},
			bytes.NewReader(p.Image),
		)
		// Stretch to the full sheet; aspect was already handled by the
		// fitter and slicer upstream.
		doc.ImageOptions(name, 0, 0, size.Wd, size.Ht, false,
			fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
		count++
	}

	if doc.Err() {
		return 0, errors.Wrap(errors.ErrCodeAssembly, "pdf generation failed", doc.Error())
	}
	if err := doc.Output(w); err != nil {
		return 0, errors.Wrap(errors.ErrCodeAssembly, "failed to write pdf", err)
	}

	logger.Info("Document assembled",
		zap.Int("sheets", count),
		zap.Int("input_pages", len(pages)),
	)
	return count, nil
}

func firstWithImage(pages []Page) int {
	for i, p := range pages {
		if len(p.Image) > 0 {
			return i
		}
	}
	return -1
}

func orientStr(o model.Orientation) string {
	if o == model.OrientationLandscape {
		return "L"
	}
	return "P"
}

func sizeFor(o model.Orientation) fpdf.SizeType {
	w, h := o.PageSizeMM()
	return fpdf.SizeType{Wd: w, Ht: h}
}

// FullReportFilename names the document produced by a complete wizard run.
func FullReportFilename(t time.Time) string {
	return "Reporte_Completo_" + t.Format("2006-01-02") + ".pdf"
}

// BulkReportFilename names the document produced by a headless bulk export.
func BulkReportFilename(t time.Time) string {
	return "Reporte_Seguridad_" + t.Format("2006-01-02") + ".pdf"
}

// PageFilename names a single-page document after its lowercased page title.
func PageFilename(title string, t time.Time) string {
	safe := strings.ToLower(sanitizeFilename(title))
	if safe == "" {
		safe = "reporte"
	}
	return safe + "_" + t.Format("2006-01-02") + ".pdf"
}
