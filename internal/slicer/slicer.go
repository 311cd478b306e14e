// Package slicer splits over-tall page captures into page-sized bands.
// A capture whose height exceeds the page aspect ratio by more than the
// tolerance becomes several images, each filling one physical page.
package slicer

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"

	"go.uber.org/zap"

	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/logger"
	"github.com/crimsight/crimsight/pkg/telemetry"
)

// DefaultTolerance is the oversize ratio below which a capture is kept whole.
// Slightly over-tall content is stretched onto one page instead of spilling
// a thin strip onto a second one.
const DefaultTolerance = 1.05

// Slicer cuts captures into bands and re-encodes them as JPEG.
type Slicer struct {
	quality   int
	tolerance float64
}

// New creates a slicer with the given JPEG quality and oversize tolerance.
func New(quality int, tolerance float64) *Slicer {
	if quality <= 0 {
		quality = 95
	}
	if tolerance < 1 {
		tolerance = DefaultTolerance
	}
	return &Slicer{quality: quality, tolerance: tolerance}
}

// Slice returns the capture as one or more page-sized images. The input is
// returned unchanged when it fits within tolerance; otherwise it is cut into
// bands of floor(width * aspect) pixels, the last band padded with white.
func (s *Slicer) Slice(data []byte, o model.Orientation) ([][]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSliceDecode, "failed to decode capture", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeSliceDecode, "capture has no pixels")
	}

	targetRatio := o.HeightRatio()
	if float64(height) <= float64(width)*targetRatio*s.tolerance {
		return [][]byte{data}, nil
	}

	sliceHeight := int(math.Floor(float64(width) * targetRatio))
	if sliceHeight <= 0 {
		return nil, errors.New(errors.ErrCodeSliceDecode, "capture too narrow to slice")
	}
	count := (height + sliceHeight - 1) / sliceHeight

	logger.Info("Slicing over-tall capture",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("slice_height", sliceHeight),
		zap.Int("slices", count),
	)

	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		top := i * sliceHeight

		// Each band gets a full-height white canvas so the last,
		// partial band still fills its page.
		band := image.NewRGBA(image.Rect(0, 0, width, sliceHeight))
		draw.Draw(band, band.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

		srcRect := image.Rect(bounds.Min.X, bounds.Min.Y+top, bounds.Min.X+width, bounds.Min.Y+top+sliceHeight)
		draw.Draw(band, band.Bounds(), src, srcRect.Min, draw.Over)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, band, &jpeg.Options{Quality: s.quality}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeSliceEncode, "failed to encode slice", err)
		}
		out = append(out, buf.Bytes())
	}

	telemetry.GetMetrics().SlicesTotal.Add(float64(count))
	return out, nil
}
