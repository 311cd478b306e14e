package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crimsight/crimsight/internal/assemble"
	"github.com/crimsight/crimsight/internal/capture"
	"github.com/crimsight/crimsight/internal/catalog"
	"github.com/crimsight/crimsight/internal/layout"
	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/internal/prefs"
	"github.com/crimsight/crimsight/internal/slicer"
	"github.com/crimsight/crimsight/internal/store"
	"github.com/crimsight/crimsight/pkg/errors"
	"github.com/crimsight/crimsight/pkg/idgen"
	"github.com/crimsight/crimsight/pkg/logger"
	"github.com/crimsight/crimsight/pkg/telemetry"
)

// Options configures the wizard service.
type Options struct {
	Capturer capture.Capturer
	Slicer   *slicer.Slicer
	Prefs    *prefs.Service
	Store    store.Store

	// BaseURL is the server's own address, used to render pages for capture
	BaseURL string

	// Settle is the wait between navigation and capture
	Settle time.Duration
}

// Service owns the active wizard sessions.
type Service struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService creates the wizard service.
func NewService(opts Options) *Service {
	return &Service{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Start opens a new session over the full catalog, or over a single page
// when pageID is non-empty. The most recent saved configuration, if any,
// is loaded into the preference service first.
func (s *Service) Start(pageID string) (State, error) {
	var pages []model.PageDescriptor
	if pageID != "" {
		page, err := catalog.Lookup(pageID)
		if err != nil {
			return State{}, err
		}
		pages = []model.PageDescriptor{page}
	} else {
		pages = catalog.Pages()
	}

	s.restoreLatestConfig()

	sess := &Session{
		ID:        idgen.NewSessionID(),
		CreatedAt: time.Now(),
		pages:     pages,
		images:    make(map[string][]byte),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	logger.Info("Wizard session started",
		zap.String("session", sess.ID),
		zap.Int("pages", len(pages)),
		zap.String("single_page", pageID),
	)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

// restoreLatestConfig loads the newest saved configuration into the
// preference service. Best effort: absence or corruption is logged only.
func (s *Service) restoreLatestConfig() {
	cfg, err := s.opts.Store.Configs().Latest()
	if err != nil {
		return
	}

	var settings map[string]model.PageSettings
	if err := json.Unmarshal([]byte(cfg.Settings), &settings); err != nil {
		logger.Warn("Ignoring corrupt saved configuration",
			zap.String("config", cfg.ID),
			zap.Error(err),
		)
		return
	}

	logger.Info("Restoring saved print configuration",
		zap.String("config", cfg.ID),
		zap.Int("pages", len(settings)),
	)
	s.opts.Prefs.SetAll(settings)
}

// get returns a session by ID.
func (s *Service) get(sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown wizard session: "+sessionID)
	}
	return sess, nil
}

// State returns the current snapshot of a session.
func (s *Service) State(sessionID string) (State, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

// Close removes a session and releases its captures.
func (s *Service) Close(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// renderURL builds the self-referential URL the capture engine loads.
func (s *Service) renderURL(pageID string) string {
	return fmt.Sprintf("%s/render/%s", s.opts.BaseURL, pageID)
}

// beginCapture marks the session as capturing and returns the current page.
// Rejects concurrent captures and sessions that are already on the
// download step.
func (s *Service) beginCapture(sess *Session) (model.PageDescriptor, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.capturing {
		return model.PageDescriptor{}, errors.ErrCaptureInFlight()
	}
	page, ok := sess.currentLocked()
	if !ok {
		return model.PageDescriptor{}, errors.New(errors.ErrCodeValidation, "session has no current page")
	}
	sess.capturing = true
	return page, nil
}

func (s *Service) endCapture(sess *Session) {
	sess.mu.Lock()
	sess.capturing = false
	sess.mu.Unlock()
}

// Advance captures the current page, slices it when over-tall, and moves the
// cursor forward. Extra slices become synthetic part pages inserted directly
// after the current one; stale parts from an earlier capture of the same page
// are dropped first.
func (s *Service) Advance(ctx context.Context, sessionID string) (State, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return State{}, err
	}

	page, err := s.beginCapture(sess)
	if err != nil {
		return State{}, err
	}
	defer s.endCapture(sess)

	// A part page already holds its slice from the split that created it.
	// Re-capturing would shoot the whole source page again, so advancing
	// off a part is just a cursor move.
	if idgen.IsPartID(page.ID) {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		sess.index++
		return sess.snapshotLocked(), nil
	}

	settings := s.opts.Prefs.GetSettings(page.ID)
	if settings.FitToPage {
		settings = s.fitToPage(ctx, page.ID, settings)
	}
	region := catalog.RegionID(idgen.BaseID(page.ID))

	img, err := s.opts.Capturer.CapturePage(ctx, s.renderURL(page.ID), region, s.opts.Settle)
	if err != nil {
		return State{}, err
	}

	slices, err := s.opts.Slicer.Slice(img, settings.Orientation)
	if err != nil {
		return State{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.images[page.ID] = slices[0]

	// Drop parts from any earlier capture of this page, whether or not the
	// new capture still needs them.
	kept := sess.pages[:0:0]
	for _, p := range sess.pages {
		if idgen.IsPartOf(p.ID, page.ID) {
			delete(sess.images, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	sess.pages = kept

	pos := indexOf(sess.pages, page.ID)
	if len(slices) > 1 {
		parts := make([]model.PageDescriptor, 0, len(slices)-1)
		for i, data := range slices[1:] {
			partID := idgen.PartID(page.ID, i+2)
			parts = append(parts, model.PageDescriptor{
				ID:    partID,
				Title: fmt.Sprintf("%s (Parte %d)", page.Title, i+2),
			})
			sess.images[partID] = data
			// Part pages inherit the source page's layout
			s.opts.Prefs.UpdateSettings(partID, settings.PatchFrom())
		}
		sess.pages = insertAfter(sess.pages, pos, parts...)

		logger.Info("Capture split into parts",
			zap.String("session", sess.ID),
			zap.String("page", page.ID),
			zap.Int("parts", len(slices)),
		)
	}

	sess.index = pos + 1
	return sess.snapshotLocked(), nil
}

// fitToPage measures the rendered page and persists the fitted scale so the
// capture that follows renders at that scale. Best effort: when the engine
// cannot measure, or measurement fails, the page is captured as-is.
func (s *Service) fitToPage(ctx context.Context, pageID string, settings model.PageSettings) model.PageSettings {
	m, ok := s.opts.Capturer.(capture.Measurer)
	if !ok {
		return settings
	}

	region := catalog.RegionID(idgen.BaseID(pageID))
	size, err := m.MeasureRegion(ctx, s.renderURL(pageID), region, s.opts.Settle)
	if err != nil {
		logger.Warn("Fit measurement failed, capturing at current scale",
			zap.String("page", pageID),
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

	updated, _ := s.opts.Prefs.UpdateSettings(pageID, model.PageSettingsPatch{Scale: &scale})
	logger.Info("Fitted page to one sheet",
		zap.String("page", pageID),
		zap.Float64("scale", scale),
	)
	return updated
}

// Skip moves past the current page without capturing it. The page simply
// ends up absent from the assembled document.
func (s *Service) Skip(sessionID string) (State, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.index < len(sess.pages) {
		sess.index++
	}
	return sess.snapshotLocked(), nil
}

// Previous moves the cursor back one page.
func (s *Service) Previous(sessionID string) (State, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.index > 0 {
		sess.index--
	}
	return sess.snapshotLocked(), nil
}

// Review returns from the download step to the last page.
func (s *Service) Review(sessionID string) (State, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if len(sess.pages) > 0 {
		sess.index = len(sess.pages) - 1
	}
	return sess.snapshotLocked(), nil
}

// Duplicate captures the current page, then inserts a copy of it right after
// the cursor and moves onto the copy. The copy inherits the source page's
// settings; a failed capture still duplicates, it just leaves the source
// image empty.
func (s *Service) Duplicate(ctx context.Context, sessionID string) (State, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return State{}, err
	}

	page, err := s.beginCapture(sess)
	if err != nil {
		return State{}, err
	}
	defer s.endCapture(sess)

	settings := s.opts.Prefs.GetSettings(page.ID)
	region := catalog.RegionID(idgen.BaseID(page.ID))

	// Part pages keep the slice stored at split time instead of
	// re-capturing, which would overwrite it with the full source page.
	var img []byte
	if !idgen.IsPartID(page.ID) {
		if settings.FitToPage {
			settings = s.fitToPage(ctx, page.ID, settings)
		}
		img, err = s.opts.Capturer.CapturePage(ctx, s.renderURL(page.ID), region, s.opts.Settle)
		if err != nil {
			logger.Warn("Capture before duplication failed",
				zap.String("session", sess.ID),
				zap.String("page", page.ID),
				zap.Error(err),
			)
		}
	}

	copyID := idgen.NewCopyID(page.ID, time.Now())
	s.opts.Prefs.UpdateSettings(copyID, settings.PatchFrom())

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(img) > 0 {
		sess.images[page.ID] = img
	}

	pos := indexOf(sess.pages, page.ID)
	sess.pages = insertAfter(sess.pages, pos, model.PageDescriptor{
		ID:    copyID,
		Title: page.Title + " (Copia)",
	})
	sess.index = pos + 1

	logger.Info("Page duplicated",
		zap.String("session", sess.ID),
		zap.String("page", page.ID),
		zap.String("copy", copyID),
	)
	return sess.snapshotLocked(), nil
}

// Finish assembles the captured pages into the final PDF, persists the
// settings snapshot as a saved configuration, and returns the document with
// its download filename. Pages that were never captured are left out.
func (s *Service) Finish(sessionID string, w io.Writer) (string, error) {
	sess, err := s.get(sessionID)
	if err != nil {
		return "", err
	}
	startTime := time.Now()
	metrics := telemetry.GetMetrics()

	sess.mu.Lock()
	pages := make([]assemble.Page, len(sess.pages))
	settingsMap := make(map[string]model.PageSettings, len(sess.pages))
	for i, p := range sess.pages {
		settings := s.opts.Prefs.GetSettings(p.ID)
		settingsMap[p.ID] = settings
		pages[i] = assemble.Page{
			ID:          p.ID,
			Title:       p.Title,
			Orientation: settings.Orientation,
			Image:       sess.images[p.ID],
		}
	}
	single := len(sess.pages) == 1
	var singleTitle string
	if single {
		singleTitle = sess.pages[0].Title
	}
	sess.mu.Unlock()

	count, err := assemble.Assemble(w, pages)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("interactive", "error").Inc()
		return "", err
	}

	s.saveConfig(settingsMap)

	now := time.Now()
	filename := assemble.FullReportFilename(now)
	if single {
		filename = assemble.PageFilename(singleTitle, now)
	}

	metrics.ExportsTotal.WithLabelValues("interactive", "success").Inc()
	metrics.ExportDuration.Observe(time.Since(startTime).Seconds())
	metrics.ExportPages.Observe(float64(count))

	logger.Info("Wizard export finished",
		zap.String("session", sessionID),
		zap.String("filename", filename),
		zap.Int("sheets", count),
		zap.Duration("duration", time.Since(startTime)),
	)
	return filename, nil
}

// saveConfig stores the session's settings snapshot for the next run.
// Best effort: a storage failure only costs the restore convenience.
func (s *Service) saveConfig(settings map[string]model.PageSettings) {
	data, err := json.Marshal(settings)
	if err != nil {
		logger.Warn("Failed to serialize settings snapshot", zap.Error(err))
		return
	}
	now := time.Now()
	cfg := &model.SavedConfig{
		ID:       idgen.NewConfigID(now),
		Date:     now.Format("2006-01-02"),
		Settings: string(data),
	}
	if err := s.opts.Store.Configs().Insert(cfg); err != nil {
		logger.Warn("Failed to save print configuration", zap.Error(err))
		return
	}
	logger.Info("Print configuration saved", zap.String("config", cfg.ID))
}

func indexOf(pages []model.PageDescriptor, id string) int {
	for i, p := range pages {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func insertAfter(pages []model.PageDescriptor, pos int, add ...model.PageDescriptor) []model.PageDescriptor {
	if pos < 0 || pos >= len(pages) {
		return append(pages, add...)
	}
	out := make([]model.PageDescriptor, 0, len(pages)+len(add))
	out = append(out, pages[:pos+1]...)
	out = append(out, add...)
	out = append(out, pages[pos+1:]...)
	return out
}
