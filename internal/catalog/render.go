package catalog

import (
	"embed"
	"html/template"
	"io"
	"sync"
	"time"

	"github.com/crimsight/crimsight/internal/model"
	"github.com/crimsight/crimsight/pkg/errors"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// RenderContext carries everything a page template needs.
type RenderContext struct {
	Page     model.PageDescriptor
	Region   string
	Settings model.PageSettings
	Date     string
	Dataset  interface{}
}

// Renderer produces the HTML document for a report page.
type Renderer interface {
	Render(w io.Writer, ctx RenderContext) error
}

var (
	tmplOnce sync.Once
	tmpl     *template.Template
	tmplErr  error

	regMu     sync.RWMutex
	overrides = make(map[string]Renderer)
)

func templates() (*template.Template, error) {
	tmplOnce.Do(func() {
		tmpl, tmplErr = template.ParseFS(templateFS, "templates/*.html.tmpl")
	})
	return tmpl, tmplErr
}

// Register installs a custom renderer for a page, replacing the default
// template-based one. Intended for pages with bespoke layouts.
func Register(pageID string, r Renderer) {
	regMu.Lock()
	defer regMu.Unlock()
	overrides[pageID] = r
}

// templateRenderer renders a page through the embedded base template.
type templateRenderer struct{}

func (templateRenderer) Render(w io.Writer, ctx RenderContext) error {
	t, err := templates()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to parse page templates", err)
	}
	if err := t.ExecuteTemplate(w, "page.html.tmpl", ctx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to render page "+ctx.Page.ID, err)
	}
	return nil
}

// RendererFor returns the renderer responsible for a page.
func RendererFor(pageID string) Renderer {
	regMu.RLock()
	defer regMu.RUnlock()
	if r, ok := overrides[pageID]; ok {
		return r
	}
	return templateRenderer{}
}

// Render writes the HTML document for a page with the given settings and
// dataset. The capture region element carries the ID returned by RegionID.
func Render(w io.Writer, pageID string, settings model.PageSettings, dataset interface{}) error {
	page, err := Lookup(pageID)
	if err != nil {
		return err
	}
	ctx := RenderContext{
		Page:     page,
		Region:   RegionID(pageID),
		Settings: settings.Normalized(),
		Date:     time.Now().Format("2006-01-02"),
		Dataset:  dataset,
	}
	return RendererFor(pageID).Render(w, ctx)
}
