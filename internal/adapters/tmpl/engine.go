// Package tmpl implements ports.TemplateEngine with html/template.
package tmpl

import (
	"bytes"
	"context"
	"html/template"
	"slices"
	"strings"
	"time"

	"go.trai.ch/press/internal/core/domain"
	"go.trai.ch/press/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TemplateEngine = (*Engine)(nil)

// Engine renders layouts from a bundle of named template sources. Names are
// paths relative to the templates directory, so a layout includes a partial
// with {{template "partials/nav.html" .}}.
type Engine struct {
	funcs template.FuncMap
}

// New creates an Engine with the default function map.
func New() *Engine {
	return &Engine{funcs: Funcs()}
}

// Funcs is the function map available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		// safeHTML marks rendered document bodies as trusted.
		"safeHTML": func(s string) template.HTML { return template.HTML(s) }, //nolint:gosec // Bodies come from the markdown renderer
		"lower":    strings.ToLower,
		"upper":    strings.ToUpper,
		"join":     strings.Join,
		"default": func(def, v string) string {
			if v == "" {
				return def
			}
			return v
		},
		"date": func(layout, value string) string {
			t, err := time.Parse(time.DateOnly, value)
			if err != nil {
				return value
			}
			return t.Format(layout)
		},
	}
}

// Check parses every template of the bundle.
func (e *Engine) Check(bundle map[string]string) error {
	_, err := e.parse(bundle)
	return err
}

// Render executes entry from bundle with data.
func (e *Engine) Render(ctx context.Context, bundle map[string]string, entry string, data any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, zerr.Wrap(domain.ErrBuildCancelled, err.Error())
	}
	set, err := e.parse(bundle)
	if err != nil {
		return nil, err
	}
	if set.Lookup(entry) == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrTemplate, "template not in bundle"), "template", entry)
	}

	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, entry, data); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrTemplate, err.Error()), "template", entry)
	}
	return buf.Bytes(), nil
}

func (e *Engine) parse(bundle map[string]string) (*template.Template, error) {
	names := make([]string, 0, len(bundle))
	for name := range bundle {
		names = append(names, name)
	}
	slices.Sort(names)

	// The unnamed root only carries the function map; every bundle entry is
	// an associated template. Naming the root after an entry would let New
	// replace it with an empty template that has no functions.
	set := template.New("").Funcs(e.funcs)
	for _, name := range names {
		if _, err := set.New(name).Parse(bundle[name]); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrTemplate, err.Error()), "template", name)
		}
	}
	return set, nil
}
