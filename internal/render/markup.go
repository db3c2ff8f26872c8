package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markup converts passage Markdown to HTML.
// Raw HTML in passages is passed through unchanged.
type Markup struct {
	md goldmark.Markdown
}

// NewMarkup creates a converter for CommonMark plus tables and strikethrough.
func NewMarkup() *Markup {
	return &Markup{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Convert returns the HTML for src.
func (m *Markup) Convert(src string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
