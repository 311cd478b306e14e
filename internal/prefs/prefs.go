// Package prefs holds per-page print preferences in memory and mirrors them to
// the store. The in-memory map is authoritative; storage failures are logged
// and never propagate to callers, so preference edits keep working when the
// database is unavailable.
package prefs

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/internal/store"
	"github.com/crimsight/crimsight/pkg/logger"
)

// Service manages the per-page settings map.
type Service struct {
	mu       sync.RWMutex
	store    store.Store
	settings map[string]model.PageSettings
}

// NewService creates a preference service backed by the given store.
func NewService(s store.Store) *Service {
	return &Service{
		store:    s,
		settings: make(map[string]model.PageSettings),
	}
}

// Load populates the in-memory map from the store. It is best effort:
// a read failure leaves the map empty and returns nil.
func (s *Service) Load() error {
	rows, err := s.store.Preferences().GetAll()
	if err != nil {
		logger.Warn("Failed to load print settings, starting with defaults", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = make(map[string]model.PageSettings, len(rows))
	for _, row := range rows {
		s.settings[row.PageID] = model.PageSettings{
			Orientation: model.Orientation(row.Orientation),
			FitToPage:   row.FitToPage,
			Scale:       row.Scale,
			Maximize:    row.Maximize,
		}.Normalized()
	}
	logger.Info("Print settings loaded", zap.Int("pages", len(s.settings)))
	return nil
}

// GetSettings returns the settings for a page, falling back to defaults
// when the page has no stored entry.
func (s *Service) GetSettings(pageID string) model.PageSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.settings[pageID]; ok {
		return v
	}
	return model.DefaultPageSettings()
}

// HasSavedSettings reports whether the page has an explicit entry.
func (s *Service) HasSavedSettings(pageID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.settings[pageID]
	return ok
}

// UpdateSettings merges a partial update into the page's settings.
// A patch that re-states current values is a no-op: nothing is stored and
// changed is false, so callers can suppress redundant re-fit cycles.
func (s *Service) UpdateSettings(pageID string, patch model.PageSettingsPatch) (model.PageSettings, bool) {
	s.mu.Lock()

	current, ok := s.settings[pageID]
	if !ok {
		current = model.DefaultPageSettings()
	}

	merged, changed := current.Merge(patch)
	if !changed {
		s.mu.Unlock()
		return merged, false
	}

	s.settings[pageID] = merged
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot)
	return merged, true
}

// SetAll replaces the whole settings map, normalizing each entry.
// Used when restoring a saved configuration.
func (s *Service) SetAll(settings map[string]model.PageSettings) {
	s.mu.Lock()
	s.settings = make(map[string]model.PageSettings, len(settings))
	for id, v := range settings {
		s.settings[id] = v.Normalized()
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snapshot)
}

// Snapshot returns a copy of the full settings map.
func (s *Service) Snapshot() map[string]model.PageSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.PageSettings, len(s.settings))
	for id, v := range s.settings {
		out[id] = v
	}
	return out
}

// SnapshotJSON returns the settings map serialized as a JSON document,
// in the shape stored inside a saved configuration.
func (s *Service) SnapshotJSON() (string, error) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// snapshotLocked converts the in-memory map into store rows.
// Callers must hold at least a read lock.
func (s *Service) snapshotLocked() []model.PrintSetting {
	rows := make([]model.PrintSetting, 0, len(s.settings))
	for id, v := range s.settings {
		rows = append(rows, model.PrintSetting{
			PageID:      id,
			Orientation: string(v.Orientation),
			FitToPage:   v.FitToPage,
			Scale:       v.Scale,
			Maximize:    v.Maximize,
		})
	}
	return rows
}

// persist writes the snapshot to the store, logging failures instead of
// returning them.
func (s *Service) persist(rows []model.PrintSetting) {
	if err := s.store.Preferences().ReplaceAll(rows); err != nil {
		logger.Warn("Failed to persist print settings", zap.Error(err), zap.Int("pages", len(rows)))
	}
}
