// Package model defines the data models for the application.
package model

import "time"

// Orientation represents the physical page layout
type Orientation string

const (
	// OrientationPortrait is narrower than tall (210x297mm)
	OrientationPortrait Orientation = "portrait"
	// OrientationLandscape is wider than tall (297x210mm)
	OrientationLandscape Orientation = "landscape"
)

// Valid reports whether o is a known orientation
func (o Orientation) Valid() bool {
	return o == OrientationPortrait || o == OrientationLandscape
}

// PageSizeMM returns the physical page width and height in millimeters
func (o Orientation) PageSizeMM() (width, height float64) {
	if o == OrientationLandscape {
		return 297, 210
	}
	return 210, 297
}

// HeightRatio returns height/width for a full physical page.
// Used by the slicer to decide whether a captured image is over-tall.
func (o Orientation) HeightRatio() float64 {
	w, h := o.PageSizeMM()
	return h / w
}

// PageDescriptor identifies one report page in the orchestrator's working list.
// The render capability is resolved separately through the catalog registry,
// keyed by ID; slice pages and duplicates carry synthetic IDs.
type PageDescriptor struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CapturedImage is one rasterized page, held in memory for the lifetime of an
// export session.
type CapturedImage struct {
	PageID string `json:"page_id"`
	// Data holds the JPEG-encoded raster
	Data []byte `json:"-"`
}

// PrintSetting is the persisted per-page layout preference row.
// The whole table is overwritten on every preference change.
type PrintSetting struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PageID      string  `gorm:"size:120;not null;uniqueIndex" json:"page_id"`
	Orientation string  `gorm:"size:20;not null;default:portrait" json:"orientation"`
	FitToPage   bool    `gorm:"not null;default:false" json:"fit_to_page"`
	Scale       float64 `gorm:"not null;default:1" json:"scale"`
	Maximize    bool    `gorm:"not null;default:false" json:"maximize"`
}

// SavedConfig is a snapshot of the full settings map, written on every
// successful document assembly. At most 5 are retained, newest first.
type SavedConfig struct {
	// ID is the creation timestamp in milliseconds
	ID        string    `gorm:"primarykey;size:32" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Date is a human-readable label for the snapshot
	Date string `gorm:"size:64;not null" json:"date"`

	// Settings holds the pageID -> PageSettings map as a JSON document
	Settings string `gorm:"type:text;not null" json:"settings"`
}

// MaxSavedConfigs is the retention cap for saved configurations
const MaxSavedConfigs = 5

// AllModels returns all models for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&PrintSetting{},
		&SavedConfig{},
	}
}
