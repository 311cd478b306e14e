package layout

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/pkg/logger"
)

// DefaultDebounce is the window during which successive measurements for the
// same page replace each other before a fit is computed.
const DefaultDebounce = 500 * time.Millisecond

// Fitter debounces measurement bursts per page and emits fitted scales.
// Pages re-measure continuously while their content settles; only the last
// measurement within the debounce window produces a scale update.
type Fitter struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
	apply  func(pageID string, scale float64)
	closed bool
}

// NewFitter creates a fitter that calls apply with the fitted scale of a page
// after its measurements settle.
func NewFitter(delay time.Duration, apply func(pageID string, scale float64)) *Fitter {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Fitter{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		apply:  apply,
	}
}

// Measure schedules a fit for the page. A newer measurement for the same page
// cancels the pending one. The fit is skipped entirely when the computed
// scale is within epsilon of currentScale at schedule time.
func (f *Fitter) Measure(pageID string, m Measurement, o model.Orientation, currentScale float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	if t, ok := f.timers[pageID]; ok {
		t.Stop()
	}

	f.timers[pageID] = time.AfterFunc(f.delay, func() {
		f.mu.Lock()
		delete(f.timers, pageID)
		closed := f.closed
		f.mu.Unlock()
		if closed {
			return
		}

		scale, apply := FitScale(m, o, currentScale)
		if !apply {
			return
		}
		logger.Debug("Fitted page scale",
			zap.String("page", pageID),
			zap.Float64("scale", scale))
		f.apply(pageID, scale)
	})
}

// Cancel drops any pending fit for the page. Used when the page's settings
// change underneath a scheduled fit, or fit-to-page is turned off.
func (f *Fitter) Cancel(pageID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.timers[pageID]; ok {
		t.Stop()
		delete(f.timers, pageID)
	}
}

// Close cancels all pending fits and rejects new measurements.
func (f *Fitter) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for id, t := range f.timers {
		t.Stop()
		delete(f.timers, id)
	}
}
