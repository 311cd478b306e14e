package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/pkg/idgen"
)

func newTestConfig(offset int) *model.SavedConfig {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Second)
	return &model.SavedConfig{
		ID:       idgen.NewConfigID(ts),
		Date:     ts.Format("2006-01-02"),
		Settings: fmt.Sprintf(`{"portada":{"orientation":"portrait","fitToPage":true,"scale":1,"maximize":false},"n":%d}`, offset),
	}
}

func TestSavedConfigInsertAndGet(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	cfg := newTestConfig(0)
	if err := s.Configs().Insert(cfg); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := s.Configs().Get(cfg.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Settings != cfg.Settings {
		t.Errorf("settings mismatch: %s != %s", got.Settings, cfg.Settings)
	}
}

func TestSavedConfigListNewestFirst(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		if err := s.Configs().Insert(newTestConfig(i)); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	list, err := s.Configs().List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 configs, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].ID <= list[i].ID {
			t.Errorf("list not newest first: %s before %s", list[i-1].ID, list[i].ID)
		}
	}
}

func TestSavedConfigRetentionCap(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	var inserted []*model.SavedConfig
	for i := 0; i < model.MaxSavedConfigs+3; i++ {
		cfg := newTestConfig(i)
		inserted = append(inserted, cfg)
		if err := s.Configs().Insert(cfg); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	count, err := s.Configs().Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != int64(model.MaxSavedConfigs) {
		t.Errorf("expected %d configs after eviction, got %d", model.MaxSavedConfigs, count)
	}

	// Oldest entries were evicted
	for _, old := range inserted[:3] {
		if _, err := s.Configs().Get(old.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("config %s should have been evicted, err=%v", old.ID, err)
		}
	}

	// Newest entry survives and is returned by Latest
	latest, err := s.Configs().Latest()
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest.ID != inserted[len(inserted)-1].ID {
		t.Errorf("expected latest %s, got %s", inserted[len(inserted)-1].ID, latest.ID)
	}
}

func TestSavedConfigLatestEmpty(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	_, err := s.Configs().Latest()
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSavedConfigDelete(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	cfg := newTestConfig(0)
	if err := s.Configs().Insert(cfg); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := s.Configs().Delete(cfg.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Configs().Get(cfg.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound after delete, got %v", err)
	}
}
