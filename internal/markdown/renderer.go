// Package markdown renders article bodies to HTML for the editor's preview
// surface.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options tunes preview rendering.
type Options struct {
	// HardWraps renders single newlines as <br> tags.
	HardWraps bool
	// Unsafe allows raw HTML in the source through to the output. Only the
	// article author writes previews, so this defaults on in the blog editor.
	Unsafe bool
}

// Renderer converts Markdown to HTML using the goldmark engine with GFM
// extensions. The renderer is stateless, so a single instance can be shared
// across requests without locking.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer builds a Renderer with the supplied options.
func NewRenderer(opts Options) *Renderer {
	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parserOptions...),
		goldmark.WithRendererOptions(rendererOptions...),
	)
	return &Renderer{engine: engine}
}

// Render converts the Markdown source into HTML.
func (r *Renderer) Render(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}
