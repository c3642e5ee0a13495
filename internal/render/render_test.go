package render

import (
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layout.html": {Data: []byte(`<html><title>{{template "title" .}}</title><body>{{template "content" .}}</body></html>`)},
		"index.html":  {Data: []byte(`{{define "title"}}Home{{end}}{{define "content"}}<main>{{.}}</main>{{end}}`)},
		"post.html":   {Data: []byte(`{{define "title"}}Post{{end}}{{define "content"}}{{markdown .}}{{end}}`)},
	}
}

func TestHTML_RendersPageInsideLayout(t *testing.T) {
	h, err := NewHTML(testFS(), false)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, h.Instance("index", "hello").Render(w))
	assert.Equal(t, `<html><title>Home</title><body><main>hello</main></body></html>`, w.Body.String())

	// pages don't leak blocks into each other
	w = httptest.NewRecorder()
	require.NoError(t, h.Instance("post.html", "**bold**").Render(w))
	assert.Contains(t, w.Body.String(), "<title>Post</title>")
	assert.Contains(t, w.Body.String(), "<strong>bold</strong>")
}

func TestHTML_UnknownTemplate(t *testing.T) {
	h, err := NewHTML(testFS(), false)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := h.Instance("missing", nil)
	r.WriteContentType(w)
	assert.Error(t, r.Render(w))
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestHTML_ReloadParsesOnDemand(t *testing.T) {
	fsys := testFS()
	h, err := NewHTML(fsys, true)
	require.NoError(t, err)

	fsys["index.html"] = &fstest.MapFile{Data: []byte(`{{define "title"}}Changed{{end}}{{define "content"}}x{{end}}`)}

	w := httptest.NewRecorder()
	require.NoError(t, h.Instance("index", nil).Render(w))
	assert.Contains(t, w.Body.String(), "Changed")
}

func TestHTML_BrokenTemplateFailsFast(t *testing.T) {
	fsys := testFS()
	fsys["broken.html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{.Missing`)}

	_, err := NewHTML(fsys, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.html")
}

func TestMarkdownPassesEditorHTMLThrough(t *testing.T) {
	out, err := Markdown("<p>from <em>CKEditor</em></p>")
	require.NoError(t, err)
	assert.Contains(t, out, "<em>CKEditor</em>")

	out, err = Markdown("# Title\n\nsome *text*")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<em>text</em>")
}

func TestPlainText(t *testing.T) {
	got := PlainText("<p>Hello   <b>world</b></p><script>alert(1)</script><style>p{}</style><p>again</p>")
	assert.Equal(t, "Hello world again", got)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short text", Excerpt("short *text*", 50))

	long := strings.Repeat("word ", 40)
	got := Excerpt(long, 12)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), 13)

	assert.Equal(t, "unbounded", Excerpt("unbounded", 0))
}

func TestHTML_PartialsAreSharedNotPages(t *testing.T) {
	fsys := testFS()
	fsys["_card.html"] = &fstest.MapFile{Data: []byte(`{{define "card"}}<div class="card">{{.}}</div>{{end}}`)}
	fsys["list.html"] = &fstest.MapFile{Data: []byte(`{{define "title"}}List{{end}}{{define "content"}}{{template "card" .}}{{end}}`)}

	h, err := NewHTML(fsys, false)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, h.Instance("list", "x").Render(w))
	assert.Contains(t, w.Body.String(), `<div class="card">x</div>`)

	assert.Error(t, h.Instance("_card", nil).Render(httptest.NewRecorder()))
}
