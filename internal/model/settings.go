// This file defines the in-memory page settings value type and its merge rules.
package model

// Scale bounds for page content. Values outside are clamped, never rejected.
const (
	MinScale = 0.4
	MaxScale = 1.0
)

// PageSettings holds the layout preferences for a single report page.
type PageSettings struct {
	Orientation Orientation `json:"orientation"`
	FitToPage   bool        `json:"fitToPage"`
	Scale       float64     `json:"scale"`
	Maximize    bool        `json:"maximize"`
}

// DefaultPageSettings returns the documented default settings object.
// Absent settings always resolve to this value, never to a zero struct.
func DefaultPageSettings() PageSettings {
	return PageSettings{
		Orientation: OrientationPortrait,
		FitToPage:   false,
		Scale:       1,
		Maximize:    false,
	}
}

// ClampScale restricts a scale value to [MinScale, MaxScale]
func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// Normalized returns a copy with the scale clamped and the orientation
// defaulted to portrait when invalid.
func (s PageSettings) Normalized() PageSettings {
	if !s.Orientation.Valid() {
		s.Orientation = OrientationPortrait
	}
	if s.Scale == 0 {
		s.Scale = 1
	}
	s.Scale = ClampScale(s.Scale)
	return s
}

// PageSettingsPatch is a partial update to a PageSettings. Nil fields are
// left untouched by Merge.
type PageSettingsPatch struct {
	Orientation *Orientation `json:"orientation,omitempty"`
	FitToPage   *bool        `json:"fitToPage,omitempty"`
	Scale       *float64     `json:"scale,omitempty"`
	Maximize    *bool        `json:"maximize,omitempty"`
}

// Merge applies the patch and reports whether any field actually changed.
// A patch that re-states current values produces changed == false so callers
// can suppress redundant persistence and re-fit cycles.
func (s PageSettings) Merge(p PageSettingsPatch) (PageSettings, bool) {
	out := s
	changed := false

	if p.Orientation != nil && *p.Orientation != out.Orientation && p.Orientation.Valid() {
		out.Orientation = *p.Orientation
		changed = true
	}
	if p.FitToPage != nil && *p.FitToPage != out.FitToPage {
		out.FitToPage = *p.FitToPage
		changed = true
	}
	if p.Scale != nil {
		v := ClampScale(*p.Scale)
		if v != out.Scale {
			out.Scale = v
			changed = true
		}
	}
	if p.Maximize != nil && *p.Maximize != out.Maximize {
		out.Maximize = *p.Maximize
		changed = true
	}
	return out, changed
}

// PatchFrom builds a patch that would turn the defaults into s.
// Used when cloning a page's full settings onto its duplicate.
func (s PageSettings) PatchFrom() PageSettingsPatch {
	o := s.Orientation
	f := s.FitToPage
	sc := s.Scale
	m := s.Maximize
	return PageSettingsPatch{Orientation: &o, FitToPage: &f, Scale: &sc, Maximize: &m}
}
