// Package capture rasterizes report pages with headless Chrome. It captures
// the page's designated region at its full scroll size, temporarily expanding
// scrollable containers so clipped content makes it into the image.
package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/logger"
	"github.com/crimsight/crimsight/pkg/telemetry"
)

// Capturer rasterizes one report page into a JPEG.
type Capturer interface {
	CapturePage(ctx context.Context, url, regionID string, settle time.Duration) ([]byte, error)
}

// RegionSize is the rendered size of a capture region.
type RegionSize struct {
	// BoxHeight is the region's layout box height after CSS transforms.
	BoxHeight float64

	// ScrollHeight is the full scrollable content height, unaffected
	// by transforms.
	ScrollHeight float64
}

// Measurer is implemented by capture engines that can report the rendered
// size of a region without taking a screenshot. Callers use it to compute
// the fit-to-page scale before capturing.
type Measurer interface {
	MeasureRegion(ctx context.Context, url, regionID string, settle time.Duration) (RegionSize, error)
}

// Options contains configuration for the capture engine
type Options struct {
	// ChromePath is the Chrome/Chromium binary. Empty uses chromedp's
	// auto-detection, or the CHROME_PATH environment variable.
	ChromePath string

	// PixelRatio is the device scale factor for rendering
	PixelRatio int

	// Quality is the JPEG quality (1-100)
	Quality int

	// Timeout bounds a single page capture
	Timeout time.Duration
}

// DefaultOptions returns capture options tuned for print output
func DefaultOptions() Options {
	return Options{
		PixelRatio: 2,
		Quality:    95,
		Timeout:    60 * time.Second,
	}
}

// Engine implements Capturer using headless Chrome
type Engine struct {
	options Options
}

// NewEngine creates a capture engine with the given options
func NewEngine(opts Options) *Engine {
	if opts.PixelRatio <= 0 {
		opts.PixelRatio = 2
	}
	if opts.Quality <= 0 {
		opts.Quality = 95
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Engine{options: opts}
}

// regionRect is the absolute bounding box of the capture region
type regionRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CapturePage navigates to url, waits for the region to settle, and returns
// a JPEG of the region at its full scroll size. Scrollable containers inside
// the region are expanded for the screenshot and always restored afterwards.
func (e *Engine) CapturePage(ctx context.Context, url, regionID string, settle time.Duration) ([]byte, error) {
	startTime := time.Now()
	metrics := telemetry.GetMetrics()

	logger.Info("[Capture] Starting page capture",
		zap.String("url", url),
		zap.String("region", regionID),
		zap.Duration("settle", settle),
	)

	ctx, cancel := context.WithTimeout(ctx, e.options.Timeout)
	defer cancel()

	browserCtx, browserCancel := e.newBrowser(ctx)
	defer browserCancel()

	var imageData []byte

	err := chromedp.Run(browserCtx,
		emulation.SetDeviceMetricsOverride(0, 0, float64(e.options.PixelRatio), false),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			imageData, err = e.captureRegion(ctx, regionID)
			return err
		}),
	)
	if err != nil {
		metrics.CapturesTotal.WithLabelValues("error").Inc()
		if errors.IsAppError(err) {
			return nil, err
		}
		logger.Error("[Capture] Browser session failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, errors.Wrap(errors.ErrCodeCaptureBrowser, "browser session failed", err)
	}

	metrics.CapturesTotal.WithLabelValues("success").Inc()
	metrics.CaptureDuration.Observe(time.Since(startTime).Seconds())

	logger.Info("[Capture] Page capture completed",
		zap.String("region", regionID),
		zap.Int("bytes", len(imageData)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return imageData, nil
}

// newBrowser builds the exec allocator and browser context shared by
// capture and measurement runs. The returned cancel releases both.
func (e *Engine) newBrowser(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)

	chromePath := e.options.ChromePath
	if chromePath == "" {
		chromePath = os.Getenv("CHROME_PATH")
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
		logger.Debug("[Capture] Using custom Chrome path", zap.String("chrome_path", chromePath))
	}

	opts = append(opts, chromedp.WSURLReadTimeout(60*time.Second))

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf("[Capture] chromedp: "+format, args...))
		}),
	)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}
}

// MeasureRegion loads the page and reports the region's rendered box height
// and full scroll height. No screenshot is taken; the result feeds the
// fit-to-page scale computation, after which the page is rendered again
// with the fitted scale and captured.
func (e *Engine) MeasureRegion(ctx context.Context, url, regionID string, settle time.Duration) (RegionSize, error) {
	ctx, cancel := context.WithTimeout(ctx, e.options.Timeout)
	defer cancel()

	browserCtx, browserCancel := e.newBrowser(ctx)
	defer browserCancel()

	var raw json.RawMessage
	err := chromedp.Run(browserCtx,
		emulation.SetDeviceMetricsOverride(0, 0, float64(e.options.PixelRatio), false),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		chromedp.Evaluate(measureRegionJS(regionID), &raw),
	)
	if err != nil {
		logger.Error("[Capture] Measurement session failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return RegionSize{}, errors.Wrap(errors.ErrCodeCaptureBrowser, "browser session failed", err)
	}

	var size struct {
		Box    float64 `json:"box"`
		Scroll float64 `json:"scroll"`
	}
	if err := json.Unmarshal(raw, &size); err != nil || size.Box <= 0 {
		return RegionSize{}, errors.New(errors.ErrCodeCaptureRegion, "capture region not found: "+regionID)
	}

	logger.Debug("[Capture] Region measured",
		zap.String("region", regionID),
		zap.Float64("box", size.Box),
		zap.Float64("scroll", size.Scroll),
	)
	return RegionSize{BoxHeight: size.Box, ScrollHeight: size.Scroll}, nil
}

// captureRegion expands scrollable containers, screenshots the region, and
// restores the original styles. Restoration runs even when the screenshot
// fails so an interactive session is never left with expanded containers.
func (e *Engine) captureRegion(ctx context.Context, regionID string) (data []byte, err error) {
	var found bool
	if err := chromedp.Evaluate(expandScrollablesJS(regionID), &found).Do(ctx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCaptureBrowser, "failed to prepare capture region", err)
	}
	if !found {
		return nil, errors.New(errors.ErrCodeCaptureRegion, "capture region not found: "+regionID)
	}

	defer func() {
		var restored bool
		if rerr := chromedp.Evaluate(restoreScrollablesJS(), &restored).Do(ctx); rerr != nil {
			logger.Warn("[Capture] Failed to restore container styles",
				zap.String("region", regionID),
				zap.Error(rerr),
			)
		}
	}()

	var raw json.RawMessage
	if err := chromedp.Evaluate(regionRectJS(regionID), &raw).Do(ctx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCaptureBrowser, "failed to measure capture region", err)
	}
	var rect regionRect
	if err := json.Unmarshal(raw, &rect); err != nil || rect.Width <= 0 || rect.Height <= 0 {
		return nil, errors.New(errors.ErrCodeCaptureRegion, "capture region has no size: "+regionID)
	}

	// White page background so transparent areas do not come out black
	// in the JPEG encoding.
	if err := emulation.SetDefaultBackgroundColorOverride().
		WithColor(&cdpColorWhite).Do(ctx); err != nil {
		logger.Warn("[Capture] Failed to set background color", zap.Error(err))
	}

	data, err = page.CaptureScreenshot().
		WithFormat(page.CaptureScreenshotFormatJpeg).
		WithQuality(int64(e.options.Quality)).
		WithClip(&page.Viewport{
			X:      rect.X,
			Y:      rect.Y,
			Width:  rect.Width,
			Height: rect.Height,
			Scale:  1,
		}).
		WithCaptureBeyondViewport(true).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCaptureRaster, "failed to rasterize capture region", err)
	}
	return data, nil
}
