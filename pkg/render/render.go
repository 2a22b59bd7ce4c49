// Package render draws catalog grids and card details as HTML.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/ChoisMath/edutech/pkg/catalog"
	"github.com/ChoisMath/edutech/pkg/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PageData feeds the grid pages.
type PageData struct {
	Title          string
	Admin          bool
	Grid           catalog.Grid
	Query          catalog.Query
	Categories     []catalog.Category
	DragMode       bool
	ReorderAllowed bool
	Shown          int
	Total          int
}

// DetailData feeds the single card page.
type DetailData struct {
	Title string
	Admin bool
	Card  domain.Card
	Tile  catalog.Tile
}

type Renderer struct {
	pages map[string]*template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": Markdown,
		"date":     formatDate,
		"join":     strings.Join,
		"modeName": func(m catalog.MatchMode) string { return m.String() },
	}
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{"grid.html", "detail.html"} {
		t, err := template.New("layout.html").Funcs(funcs()).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/tile.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render writes the named page inside the layout.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

// RenderHTTP buffers the page so a template error can still become a 500.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the page scripts under their file names.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(sub)
}

// Markdown converts card text to HTML. Raw HTML in the input is not passed through.
func Markdown(input string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(input), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(input))
	}
	return template.HTML(buf.String())
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
