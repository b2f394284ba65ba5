package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultMediaPrefix is the URL path under which transcoded media is published.
const DefaultMediaPrefix = "/media/"

// Options configures a Converter.
type Options struct {
	// MediaPrefix selects the image sources eligible for the WebP rewrite.
	// Empty means DefaultMediaPrefix.
	MediaPrefix string
	// DisableRawHTML escapes inline HTML instead of passing it through.
	DisableRawHTML bool
}

// Converter renders Markdown to HTML. It is safe for sequential reuse.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter builds a Converter for the given options.
func NewConverter(opts Options) *Converter {
	if opts.MediaPrefix == "" {
		opts.MediaPrefix = DefaultMediaPrefix
	}

	rendererOpts := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(newImageRenderer(opts.MediaPrefix), 100)),
	}
	if !opts.DisableRawHTML {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &Converter{md: md}
}

// Convert renders a Markdown body (front matter already removed) to HTML.
func (c *Converter) Convert(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}
