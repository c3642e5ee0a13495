package render

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	ginrender "github.com/gin-gonic/gin/render"
)

const layoutFile = "layout.html"

// HTML is a gin HTMLRender where each page template is parsed together with
// the shared layout and the partials (files named _*.html), so every page can
// define its own "title" and "content" blocks.
type HTML struct {
	fsys   fs.FS
	reload bool
	pages  map[string]*template.Template
}

// NewHTML parses every page in fsys up front. With reload set, pages are
// re-parsed on every render (for editing templates on disk).
func NewHTML(fsys fs.FS, reload bool) (*HTML, error) {
	h := &HTML{fsys: fsys, reload: reload, pages: map[string]*template.Template{}}
	if reload {
		return h, nil
	}

	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	for _, name := range names {
		if name == layoutFile || isPartial(name) {
			continue
		}
		t, err := h.parse(name)
		if err != nil {
			return nil, err
		}
		h.pages[name] = t
	}
	return h, nil
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": markdownHTML,
		"excerpt":  Excerpt,
		"date": func(t time.Time) string {
			return t.Format("January 2, 2006")
		},
		"datetime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
		"year": func() int { return time.Now().Year() },
	}
}

func isPartial(name string) bool {
	return strings.HasPrefix(path.Base(name), "_")
}

func (h *HTML) parse(name string) (*template.Template, error) {
	patterns := []string{layoutFile, name}
	partials, err := fs.Glob(h.fsys, "_*.html")
	if err != nil {
		return nil, fmt.Errorf("list partials: %w", err)
	}
	if len(partials) > 0 {
		patterns = append(patterns, "_*.html")
	}

	t, err := template.New(layoutFile).Funcs(funcs()).ParseFS(h.fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("parse template %q: %w", name, err)
	}
	return t, nil
}

func (h *HTML) lookup(name string) (*template.Template, error) {
	if !strings.HasSuffix(name, ".html") {
		name += ".html"
	}
	name = path.Clean(name)

	if h.reload {
		return h.parse(name)
	}

	t, ok := h.pages[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return t, nil
}

// Instance implements gin's render.HTMLRender.
func (h *HTML) Instance(name string, data any) ginrender.Render {
	t, err := h.lookup(name)
	if err != nil {
		return errRender{err: err}
	}
	return ginrender.HTML{Template: t, Name: layoutFile, Data: data}
}

var htmlContentType = []string{"text/html; charset=utf-8"}

type errRender struct{ err error }

func (r errRender) Render(http.ResponseWriter) error { return r.err }

func (r errRender) WriteContentType(w http.ResponseWriter) {
	w.Header()["Content-Type"] = htmlContentType
}
