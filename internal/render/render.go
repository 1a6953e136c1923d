// Package render turns note Markdown into preview HTML.
package render

import (
	"bytes"
	"regexp"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

const DefaultStyle = "github"

// scriptTag only drops <script> elements. It is not an HTML sanitiser: event
// handler attributes and javascript: URLs in raw HTML pass through.
var scriptTag = regexp.MustCompile(`(?is)<script[\s\S]*?>[\s\S]*?</script>`)

// Renderer renders GFM with hard line breaks and raw HTML, since alignment
// blocks and coloured spans are stored as inline HTML.
type Renderer struct {
	md    goldmark.Markdown
	style *chroma.Style
}

func New(styleName string) *Renderer {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithCustomStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md, style: style}
}

// Render converts markdown to HTML with <script> elements removed.
func (r *Renderer) Render(markdown string) (string, error) {
	var b bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &b); err != nil {
		return "", err
	}
	return scriptTag.ReplaceAllString(b.String(), ""), nil
}

// CSS returns the stylesheet for highlighted code blocks.
func (r *Renderer) CSS() (string, error) {
	var b bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&b, r.style); err != nil {
		return "", err
	}
	return b.String(), nil
}
