package render

import (
	"bytes"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	nethtml "golang.org/x/net/html"
)

// Post bodies come from the rich-text editor as HTML or are typed as markdown;
// raw HTML is passed through, so only authenticated authors may write them.
var mdParser = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithUnsafe(),
	),
)

// Markdown converts a post body to HTML.
func Markdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// markdownHTML is the template func; a conversion failure falls back to escaped text.
func markdownHTML(source string) template.HTML {
	out, err := Markdown(source)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(out)
}

// Excerpt returns at most max runes of the body's visible text.
func Excerpt(source string, max int) string {
	rendered, err := Markdown(source)
	if err != nil {
		rendered = source
	}
	text := PlainText(rendered)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "…"
}

// PlainText strips markup, skipping script and style contents, and collapses whitespace.
func PlainText(fragment string) string {
	doc, err := nethtml.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var b strings.Builder
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == nethtml.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " ")
}
