package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown bodies (frontmatter already removed) into HTML
// fragments. It is safe for reuse across pages; goldmark instances are
// stateless between Convert calls.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer constructs a Renderer with CommonMark + GFM semantics.
//
// Raw HTML in page bodies passes through unescaped: sites are built from
// trusted local content, and authors routinely embed snippets.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Render converts a Markdown body into an HTML fragment.
func (r *Renderer) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
