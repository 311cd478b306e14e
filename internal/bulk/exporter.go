// Package bulk generates a whole-report PDF without an interactive session.
package bulk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/crimsight/crimsight/internal/assemble"
	"github.com/crimsight/crimsight/internal/capture"
	"github.com/crimsight/crimsight/internal/catalog"
	"github.com/crimsight/crimsight/internal/layout"
	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/internal/prefs"
	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/logger"
	"github.com/crimsight/crimsight/pkg/telemetry"
)

// DefaultSettleDelay gives chart animations time to finish before a
// headless capture. Longer than the interactive delay because nobody
// is watching the page stabilize first.
const DefaultSettleDelay = 2 * time.Second

// Progress reports per-page export progress to an optional callback.
type Progress struct {
	Index int
	Total int
	Title string
}

// ProgressFunc receives a Progress update after each page attempt.
type ProgressFunc func(Progress)

// Options configures an Exporter.
type Options struct {
	Capturer   capture.Capturer
	Prefs      *prefs.Service
	BaseURL    string
	OutputDir  string
	Settle     time.Duration
	OnProgress ProgressFunc
}

// Exporter walks the page catalog and assembles a single PDF document.
type Exporter struct {
	opts Options
}

// NewExporter creates a headless exporter.
func NewExporter(opts Options) *Exporter {
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettleDelay
	}
	return &Exporter{opts: opts}
}

// Export captures every catalog page in order and writes the assembled
// PDF to the output directory. Returns the path of the written file.
// A page that fails to capture aborts the whole run; a bulk report is
// never silently incomplete.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	metrics := telemetry.GetMetrics()
	start := time.Now()

	path, captured, err := e.export(ctx)
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.ExportsTotal.WithLabelValues("bulk", result).Inc()
	if err == nil {
		metrics.ExportDuration.Observe(time.Since(start).Seconds())
		metrics.ExportPages.Observe(float64(captured))
	}
	return path, err
}

func (e *Exporter) export(ctx context.Context) (string, int, error) {
	pages := catalog.Pages()
	total := len(pages)
	docPages := make([]assemble.Page, 0, total)
	captured := 0

	logger.Info("Starting bulk export", zap.Int("pages", total))

	for i, entry := range pages {
		if err := ctx.Err(); err != nil {
			return "", captured, errors.Wrap(errors.ErrCodeExport, "bulk export canceled", err)
		}

		settings := e.opts.Prefs.GetSettings(entry.ID)
		url := fmt.Sprintf("%s/render/%s", e.opts.BaseURL, entry.ID)
		region := catalog.RegionID(entry.ID)

		if settings.FitToPage {
			settings = e.fitToPage(ctx, entry.ID, url, region, settings)
		}

		img, err := e.opts.Capturer.CapturePage(ctx, url, region, e.opts.Settle)
		if err != nil {
			logger.Error("Page capture failed, aborting export",
				zap.String("page_id", entry.ID),
				zap.Error(err),
			)
			return "", captured, errors.Wrap(errors.ErrCodeExport,
				"failed to capture page "+entry.ID, err)
		}
		captured++

		docPages = append(docPages, assemble.Page{
			ID:          entry.ID,
			Title:       entry.Title,
			Orientation: settings.Orientation,
			Image:       img,
		})

		if e.opts.OnProgress != nil {
			e.opts.OnProgress(Progress{Index: i + 1, Total: total, Title: entry.Title})
		}
	}

	if captured == 0 {
		return "", 0, errors.New(errors.ErrCodeExport, "no pages could be captured")
	}

	if err := os.MkdirAll(e.opts.OutputDir, 0o755); err != nil {
		return "", captured, errors.Wrap(errors.ErrCodeExport, "failed to create output directory", err)
	}

	filename := assemble.BulkReportFilename(time.Now())
	path := filepath.Join(e.opts.OutputDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", captured, errors.Wrap(errors.ErrCodeExport, "failed to create output file", err)
	}
	defer file.Close()

	if _, err := assemble.Assemble(file, docPages); err != nil {
		os.Remove(path)
		return "", captured, err
	}

	logger.Info("Bulk export completed",
		zap.String("path", path),
		zap.Int("captured", captured),
		zap.Int("total", total),
	)
	return path, captured, nil
}

// fitToPage measures the rendered page and persists the fitted scale before
// the capture. Best effort: a failed measurement leaves the scale alone.
func (e *Exporter) fitToPage(ctx context.Context, pageID, url, region string, settings model.PageSettings) model.PageSettings {
	m, ok := e.opts.Capturer.(capture.Measurer)
	if !ok {
		return settings
	}

	size, err := m.MeasureRegion(ctx, url, region, e.opts.Settle)
	if err != nil {
		logger.Warn("Fit measurement failed, capturing at current scale",
			zap.String("page_id", pageID),
			zap.Error(err),
		)
		return settings
	}

	scale, apply := layout.FitScale(layout.Measurement{
		BoxHeight:    size.BoxHeight,
		ScrollHeight: size.ScrollHeight,
	}, settings.Orientation, settings.Scale)
	if !apply {
		return settings
	}

	updated, _ := e.opts.Prefs.UpdateSettings(pageID, model.PageSettingsPatch{Scale: &scale})
	return updated
}
