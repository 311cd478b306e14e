// Package layout computes the content scale that makes a captured page fit
// on a single sheet. Measurements arrive in CSS pixels; page sizes are in
// millimeters at the standard CSS print density.
package layout

import (
	"math"

	"github.com/crimsight/crimsight/internal/model"
)

const (
	// PxPerMM is the CSS reference pixel density (96dpi / 25.4).
	PxPerMM = 3.7795

	// SafeMarginPx is subtracted from the page height to keep content clear
	// of the physical print margins.
	SafeMarginPx = 80

	// scaleEpsilon suppresses oscillating sub-percent adjustments.
	scaleEpsilon = 0.01
)

// Measurement is the observed size of a page's content box.
type Measurement struct {
	// BoxHeight is the rendered height of the content box, after the
	// current scale transform.
	BoxHeight float64

	// ScrollHeight is the full scrollable height of the content,
	// unaffected by the transform.
	ScrollHeight float64
}

// SafeHeightPx returns the usable page height in pixels for an orientation.
func SafeHeightPx(o model.Orientation) float64 {
	_, heightMM := o.PageSizeMM()
	return heightMM*PxPerMM - SafeMarginPx
}

// FitScale computes the scale that fits the measured content into one page.
// The returned apply flag is false when the difference from currentScale is
// within epsilon, so callers can skip redundant updates.
//
// The unscaled content height is recovered from the measured box height by
// dividing out the current scale; the scroll height wins when it is larger,
// covering content that overflows its box.
func FitScale(m Measurement, o model.Orientation, currentScale float64) (float64, bool) {
	if currentScale <= 0 {
		currentScale = 1
	}

	unscaled := m.BoxHeight / currentScale
	if m.ScrollHeight > unscaled {
		unscaled = m.ScrollHeight
	}
	if unscaled <= 0 {
		return currentScale, false
	}

	scale := model.ClampScale(SafeHeightPx(o) / unscaled)

	if math.Abs(scale-currentScale) <= scaleEpsilon {
		return currentScale, false
	}
	return scale, true
}
