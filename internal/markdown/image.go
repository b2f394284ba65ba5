package markdown

import (
	"path"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// WebPExt is the extension substituted for transcoded raster images.
const WebPExt = ".webp"

var transcodable = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// IsTranscodable reports whether a file name carries a raster extension that
// the media transcoder converts to WebP. The check is case-insensitive.
func IsTranscodable(name string) bool {
	_, ok := transcodable[strings.ToLower(path.Ext(name))]
	return ok
}

// RewriteImageSource maps a media image reference to its WebP counterpart.
// Sources outside prefix, or with other extensions, are returned unchanged.
func RewriteImageSource(src, prefix string) string {
	if !strings.HasPrefix(src, prefix) || !IsTranscodable(src) {
		return src
	}
	return strings.TrimSuffix(src, path.Ext(src)) + WebPExt
}

type imageRenderer struct {
	mediaPrefix string
}

func newImageRenderer(mediaPrefix string) renderer.NodeRenderer {
	return &imageRenderer{mediaPrefix: mediaPrefix}
}

func (r *imageRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindImage, r.renderImage)
}

func (r *imageRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)

	src := RewriteImageSource(string(n.Destination), r.mediaPrefix)

	_, _ = w.WriteString(`<img src="`)
	if !html.IsDangerousURL([]byte(src)) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(src), true)))
	}
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(altText(n, source)))
	_ = w.WriteByte('"')
	if n.Title != nil {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` loading="lazy">`)
	return ast.WalkSkipChildren, nil
}

// altText flattens the inline children of an image into plain text.
func altText(n ast.Node, source []byte) []byte {
	var buf []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf = append(buf, t.Segment.Value(source)...)
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf = append(buf, ' ')
			}
		case *ast.String:
			buf = append(buf, t.Value...)
		default:
			buf = append(buf, altText(c, source)...)
		}
	}
	return buf
}
