package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/conneroisu/prime-website/internal/config"
	"github.com/conneroisu/prime-website/internal/inventory"
)

// View renders the inventory page from an html/template file. The file is
// parsed on every render so edits show up without a restart.
type View struct {
	path        string
	partialsDir string
	slot        string
	liveReload  bool
	funcs       template.FuncMap
}

// NewView creates the view configured by cfg. Templates under
// <views>/partials are available to the view by file name.
func NewView(cfg config.ServerConfig) *View {
	return &View{
		path:        cfg.ViewPath(),
		partialsDir: filepath.Join(cfg.SiteDir, cfg.ViewsDir, "partials"),
		slot:        cfg.Slot,
		funcs:       viewFuncs(),
	}
}

// Render executes the view with records bound to the view's slot and
// returns the complete page. Nothing is returned on failure, so callers
// never send a half-rendered page.
func (v *View) Render(ctx context.Context, records inventory.Inventory) ([]byte, error) {
	tmpl, err := v.parse()
	if err != nil {
		return nil, err
	}

	data := map[string]any{v.slot: records}

	var buf bytes.Buffer
	if err := templ.FromGoHTML(tmpl, data).Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", v.path, err)
	}

	page := buf.Bytes()
	if v.liveReload {
		page = injectLiveReload(page)
	}
	return page, nil
}

func (v *View) parse() (*template.Template, error) {
	tmpl, err := template.New(filepath.Base(v.path)).Funcs(v.funcs).ParseFiles(v.path)
	if err != nil {
		return nil, fmt.Errorf("parse view: %w", err)
	}

	partials, err := filepath.Glob(filepath.Join(v.partialsDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("list partials: %w", err)
	}
	if len(partials) > 0 {
		if tmpl, err = tmpl.ParseFiles(partials...); err != nil {
			return nil, fmt.Errorf("parse partials: %w", err)
		}
	}
	return tmpl, nil
}

// viewFuncs returns the view helpers. A cases.Caser is stateful, so each
// call builds its own.
func viewFuncs() template.FuncMap {
	return template.FuncMap{
		"title": func(v any) string {
			return cases.Title(language.English).String(strings.ToLower(fmt.Sprint(v)))
		},
		"number": func(v any) string {
			return formatNumber(message.NewPrinter(language.English), v)
		},
	}
}

// formatNumber groups thousands. Non-numeric values print as they are.
func formatNumber(p *message.Printer, v any) string {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return p.Sprintf("%d", i)
		}
		if f, err := n.Float64(); err == nil {
			return p.Sprintf("%.2f", f)
		}
		return n.String()
	case int:
		return p.Sprintf("%d", n)
	case int64:
		return p.Sprintf("%d", n)
	case uint64:
		return p.Sprintf("%d", n)
	case float64:
		if n == float64(int64(n)) {
			return p.Sprintf("%d", int64(n))
		}
		return p.Sprintf("%.2f", n)
	default:
		return fmt.Sprint(v)
	}
}
