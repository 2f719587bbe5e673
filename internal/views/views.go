// Package views renders the catalog HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mtg9ny/recipe-backend/internal/domain"
	"github.com/mtg9ny/recipe-backend/internal/validation"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

// Page names.
const (
	PageIndex  = "index"
	PageList   = "list"
	PageDetail = "detail"
	PageForm   = "form"
	PageDelete = "delete"
	PageError  = "error"
)

var pages = []string{PageIndex, PageList, PageDetail, PageForm, PageDelete, PageError}

// Count is one line of the index page.
type Count struct {
	Kind  domain.Kind
	Count int64
}

// Page is the view-model shared by every template. Each page reads the
// fields it needs.
type Page struct {
	Title   string
	Kind    domain.Kind
	Record  *domain.Record
	Records []*domain.Record
	Counts  []Count
	Errors  []validation.Violation
	// Action is the form target.
	Action  string
	Status  int
	Message string
}

// Renderer executes named pages.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page against the shared layout.
func New() (*Renderer, error) {
	strict := bluemonday.StrictPolicy()
	ugc := bluemonday.UGCPolicy()
	md := goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

	funcs := template.FuncMap{
		// stored values are escaped on write; emit them as markup once
		"stored": func(s string) template.HTML {
			return template.HTML(strict.Sanitize(s))
		},
		"markdown": func(s string) template.HTML {
			if strings.TrimSpace(s) == "" {
				return ""
			}
			var buf bytes.Buffer
			if err := md.Convert([]byte(s), &buf); err != nil {
				return template.HTML(strict.Sanitize(s))
			}
			return template.HTML(ugc.SanitizeBytes(buf.Bytes()))
		},
		"recordPath": func(k domain.Kind, r *domain.Record) string {
			return k.RecordPath(r)
		},
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFiles,
			"templates/layout.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render writes page name with the given status. The page is rendered into
// a buffer first so a template error never leaves a partial response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page *Page) {
	t, ok := r.templates[name]
	if !ok {
		slog.Error("unknown template", "name", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		slog.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("response write failed", "error", err)
	}
}

// Static serves the embedded stylesheet and other assets.
func Static() http.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	return http.FileServer(http.FS(sub))
}
