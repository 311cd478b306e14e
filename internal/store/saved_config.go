package store

import (
	"gorm.io/gorm"

	"github.com/crimsight/crimsight/internal/model"
)

// SavedConfigStore defines operations for saved wizard configurations.
// Only the most recent model.MaxSavedConfigs entries are retained;
// inserting beyond the cap evicts the oldest entries.
type SavedConfigStore interface {
	// Get returns the configuration with the given ID, or gorm.ErrRecordNotFound.
	Get(id string) (*model.SavedConfig, error)

	// List returns all saved configurations, newest first.
	List() ([]model.SavedConfig, error)

	// Latest returns the most recent saved configuration,
	// or gorm.ErrRecordNotFound when none exist.
	Latest() (*model.SavedConfig, error)

	// Insert stores a new configuration and evicts entries beyond the cap.
	Insert(cfg *model.SavedConfig) error

	// Delete removes the configuration with the given ID.
	Delete(id string) error

	// Count returns the number of saved configurations.
	Count() (int64, error)

	// WithTx returns a store bound to the given transaction.
	WithTx(tx *gorm.DB) SavedConfigStore
}

// savedConfigStore implements SavedConfigStore using GORM.
type savedConfigStore struct {
	db *gorm.DB
}

func newSavedConfigStore(db *gorm.DB) SavedConfigStore {
	return &savedConfigStore{db: db}
}

func (s *savedConfigStore) Get(id string) (*model.SavedConfig, error) {
	var cfg model.SavedConfig
	err := s.db.Where("id = ?", id).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IDs are millisecond timestamps rendered with a fixed digit count, so
// lexicographic descending order matches chronological descending order.
func (s *savedConfigStore) List() ([]model.SavedConfig, error) {
	var configs []model.SavedConfig
	err := s.db.Order("id DESC").Find(&configs).Error
	return configs, err
}

func (s *savedConfigStore) Latest() (*model.SavedConfig, error) {
	var cfg model.SavedConfig
	err := s.db.Order("id DESC").First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *savedConfigStore) Insert(cfg *model.SavedConfig) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cfg).Error; err != nil {
			return err
		}

		// Evict entries beyond the retention cap, oldest first
		var stale []model.SavedConfig
		if err := tx.Order("id DESC").Offset(model.MaxSavedConfigs).Find(&stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		ids := make([]string, 0, len(stale))
		for _, c := range stale {
			ids = append(ids, c.ID)
		}
		return tx.Where("id IN ?", ids).Delete(&model.SavedConfig{}).Error
	})
}

func (s *savedConfigStore) Delete(id string) error {
	return s.db.Where("id = ?", id).Delete(&model.SavedConfig{}).Error
}

func (s *savedConfigStore) Count() (int64, error) {
	var count int64
	err := s.db.Model(&model.SavedConfig{}).Count(&count).Error
	return count, err
}

func (s *savedConfigStore) WithTx(tx *gorm.DB) SavedConfigStore {
	return &savedConfigStore{db: tx}
}
