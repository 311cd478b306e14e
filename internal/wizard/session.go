// Package wizard drives the interactive page-by-page export flow: capture,
// slice, reorder, duplicate, and finally assemble the reviewed pages into
// one document.
package wizard

import (
	"sync"
	"time"

	"github.com/crimsight/crimsight/internal/model"
)

// Session is one interactive export run. All mutation goes through the
// Service so the capture guard and page list stay consistent.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	pages     []model.PageDescriptor
	index     int
	images    map[string][]byte
	capturing bool
}

// PageView is the externally visible state of one session page.
type PageView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Captured bool   `json:"captured"`
	Current  bool   `json:"current"`
}

// State is a snapshot of the session for API consumers.
type State struct {
	SessionID string     `json:"session_id"`
	Step      int        `json:"step"`
	Total     int        `json:"total"`
	Done      bool       `json:"done"`
	Capturing bool       `json:"capturing"`
	Pages     []PageView `json:"pages"`
}

// snapshotLocked builds a State. Caller holds s.mu.
func (s *Session) snapshotLocked() State {
	views := make([]PageView, len(s.pages))
	for i, p := range s.pages {
		views[i] = PageView{
			ID:       p.ID,
			Title:    p.Title,
			Captured: len(s.images[p.ID]) > 0,
			Current:  i == s.index,
		}
	}
	return State{
		SessionID: s.ID,
		Step:      s.index,
		Total:     len(s.pages),
		Done:      s.index >= len(s.pages),
		Capturing: s.capturing,
		Pages:     views,
	}
}

// current returns the page at the cursor. Caller holds s.mu.
func (s *Session) currentLocked() (model.PageDescriptor, bool) {
	if s.index < 0 || s.index >= len(s.pages) {
		return model.PageDescriptor{}, false
	}
	return s.pages[s.index], true
}
