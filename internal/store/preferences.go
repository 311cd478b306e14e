package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crimsight/crimsight/internal/model"
)

// PreferenceStore defines operations for per-page print settings.
// Settings are persisted as a whole snapshot: the preference service keeps
// the authoritative in-memory map and replaces the stored rows on change.
type PreferenceStore interface {
	// Get returns the stored setting for a page, or gorm.ErrRecordNotFound.
	Get(pageID string) (*model.PrintSetting, error)

	// GetAll returns all stored page settings.
	GetAll() ([]model.PrintSetting, error)

	// Upsert creates or updates the setting row for a single page.
	Upsert(setting *model.PrintSetting) error

	// ReplaceAll atomically replaces every stored setting with the given snapshot.
	ReplaceAll(settings []model.PrintSetting) error

	// DeleteAll removes all stored settings.
	DeleteAll() error

	// Count returns the number of stored settings.
	Count() (int64, error)

	// WithTx returns a store bound to the given transaction.
	WithTx(tx *gorm.DB) PreferenceStore
}

// preferenceStore implements PreferenceStore using GORM.
type preferenceStore struct {
	db *gorm.DB
}

func newPreferenceStore(db *gorm.DB) PreferenceStore {
	return &preferenceStore{db: db}
}

func (s *preferenceStore) Get(pageID string) (*model.PrintSetting, error) {
	var setting model.PrintSetting
	err := s.db.Where("page_id = ?", pageID).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (s *preferenceStore) GetAll() ([]model.PrintSetting, error) {
	var settings []model.PrintSetting
	err := s.db.Order("page_id").Find(&settings).Error
	return settings, err
}

func (s *preferenceStore) Upsert(setting *model.PrintSetting) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "page_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"orientation", "fit_to_page", "scale", "maximize", "updated_at",
		}),
	}).Create(setting).Error
}

func (s *preferenceStore) ReplaceAll(settings []model.PrintSetting) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.PrintSetting{}).Error; err != nil {
			return err
		}
		if len(settings) == 0 {
			return nil
		}
		return tx.Create(&settings).Error
	})
}

func (s *preferenceStore) DeleteAll() error {
	return s.db.Where("1 = 1").Delete(&model.PrintSetting{}).Error
}

func (s *preferenceStore) Count() (int64, error) {
	var count int64
	err := s.db.Model(&model.PrintSetting{}).Count(&count).Error
	return count, err
}

func (s *preferenceStore) WithTx(tx *gorm.DB) PreferenceStore {
	return &preferenceStore{db: tx}
}
