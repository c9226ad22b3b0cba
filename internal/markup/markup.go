// Package markup converts stored entry text to display HTML.
package markup

import (
	"bytes"
	"html/template"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// Renderer converts markdown to HTML with fenced code blocks highlighted
// and line-numbered. It holds no state beyond the configured pipeline.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds the markdown pipeline.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				highlighting.NewHighlighting(
					highlighting.WithStyle("friendly"),
					highlighting.WithFormatOptions(
						chromahtml.WithLineNumbers(true),
					),
				),
			),
		),
	}
}

// Render converts markdown text to HTML. It never fails: unrecognized
// syntax passes through as regular markdown output, and a conversion error
// falls back to the escaped source text.
func (r *Renderer) Render(text string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(text) + "</pre>")
	}
	return template.HTML(buf.String())
}
