package handler

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"testing"
	"time"

	"github.com/crimsight/crimsight/internal/prefs"
	"github.com/crimsight/crimsight/internal/slicer"
	"github.com/crimsight/crimsight/internal/store"
	"github.com/crimsight/crimsight/internal/wizard"
	"github.com/crimsight/crimsight/pkg/errors"
)

// stubCapturer serves one canned JPEG for every region, or a fixed error.
type stubCapturer struct {
	mu    sync.Mutex
	image []byte
	err   error
}

func (f *stubCapturer) CapturePage(ctx context.Context, url, regionID string, settle time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.image == nil {
		return nil, errors.New(errors.ErrCodeCaptureRegion, "no image configured")
	}
	return f.image, nil
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 210, 297))
	for y := 0; y < 297; y++ {
		for x := 0; x < 210; x++ {
			img.Set(x, y, color.RGBA{R: 245, G: 245, B: 245, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// setupServices builds the store, preference service and wizard service
// backing the handlers under test.
func setupServices(t *testing.T, cap *stubCapturer) (store.Store, *prefs.Service, *wizard.Service, func()) {
	t.Helper()
	st, cleanup := store.SetupTestDB(t)
	ps := prefs.NewService(st)
	if err := ps.Load(); err != nil {
		cleanup()
		t.Fatalf("prefs load failed: %v", err)
	}
	svc := wizard.NewService(wizard.Options{
		Capturer: cap,
		Slicer:   slicer.New(95, slicer.DefaultTolerance),
		Prefs:    ps,
		Store:    st,
		BaseURL:  "http://127.0.0.1:8090",
		Settle:   0,
	})
	return st, ps, svc, cleanup
}
