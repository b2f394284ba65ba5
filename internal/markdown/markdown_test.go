package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func convert(t *testing.T, src string) string {
	t.Helper()
	out, err := NewConverter(Options{}).Convert([]byte(src))
	require.NoError(t, err)
	return string(out)
}

func TestConvert_Heading(t *testing.T) {
	out := convert(t, "# Hi\n")
	require.Contains(t, out, "<h1>Hi</h1>")
}

func TestConvert_TableAndStrikethrough(t *testing.T) {
	out := convert(t, "| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n")
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "<td>1</td>")
	require.Contains(t, out, "<del>gone</del>")
}

func TestConvert_RawHTMLPassthrough(t *testing.T) {
	out := convert(t, "<div class=\"note\">x</div>\n")
	require.Contains(t, out, `<div class="note">x</div>`)

	escaped, err := NewConverter(Options{DisableRawHTML: true}).Convert([]byte("<div>x</div>\n"))
	require.NoError(t, err)
	require.NotContains(t, string(escaped), "<div>")
}

func TestConvert_ImageRewrite(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "jpg under media", src: "![Cat](/media/cat.jpg)", want: `<img src="/media/cat.webp" alt="Cat" loading="lazy">`},
		{name: "upper case JPG", src: "![Cat](/media/cat.JPG)", want: `<img src="/media/cat.webp" alt="Cat" loading="lazy">`},
		{name: "jpeg", src: "![x](/media/a.b.jpeg)", want: `<img src="/media/a.b.webp" alt="x" loading="lazy">`},
		{name: "png", src: "![p](/media/shot.png)", want: `<img src="/media/shot.webp" alt="p" loading="lazy">`},
		{name: "gif passes through", src: "![g](/media/anim.gif)", want: `<img src="/media/anim.gif" alt="g" loading="lazy">`},
		{name: "outside media", src: "![e](https://example.com/a.jpg)", want: `<img src="https://example.com/a.jpg" alt="e" loading="lazy">`},
		{name: "relative media", src: "![r](media/a.jpg)", want: `<img src="media/a.jpg" alt="r" loading="lazy">`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Contains(t, convert(t, tt.src+"\n"), tt.want)
		})
	}
}

func TestConvert_ImageAltVerbatimAndEscaped(t *testing.T) {
	out := convert(t, "![A \"quoted\" *cat* & dog](/media/c.png)\n")
	require.Contains(t, out, `alt="A &quot;quoted&quot; cat &amp; dog"`)
	require.Contains(t, out, `loading="lazy"`)
}

func TestConvert_ImageTitle(t *testing.T) {
	out := convert(t, "![a](/media/c.png \"Caption\")\n")
	require.Contains(t, out, `<img src="/media/c.webp" alt="a" title="Caption" loading="lazy">`)
}

func TestConvert_CustomMediaPrefix(t *testing.T) {
	out, err := NewConverter(Options{MediaPrefix: "/assets/"}).Convert([]byte("![a](/assets/x.png) ![b](/media/y.png)\n"))
	require.NoError(t, err)
	require.Contains(t, string(out), `src="/assets/x.webp"`)
	require.Contains(t, string(out), `src="/media/y.png"`)
}

func TestRewriteImageSource(t *testing.T) {
	require.Equal(t, "/media/a.webp", RewriteImageSource("/media/a.PNG", DefaultMediaPrefix))
	require.Equal(t, "/media/a.svg", RewriteImageSource("/media/a.svg", DefaultMediaPrefix))
	require.Equal(t, "/img/a.png", RewriteImageSource("/img/a.png", DefaultMediaPrefix))
	require.Equal(t, "/media/noext", RewriteImageSource("/media/noext", DefaultMediaPrefix))
}

func TestIsTranscodable(t *testing.T) {
	for _, name := range []string{"a.jpg", "a.JPEG", "b.Png"} {
		require.True(t, IsTranscodable(name), name)
	}
	for _, name := range []string{"a.gif", "a.webp", "jpg", "a.jpg.txt"} {
		require.False(t, IsTranscodable(name), name)
	}
}

func TestExcerpt(t *testing.T) {
	html := "<h1>Title</h1>\n<p>First   <em>para</em>\ngraph.</p>\n<p>Second.</p>"
	require.Equal(t, "First para graph.", Excerpt(html, 0))
	require.Empty(t, Excerpt("<h1>Only heading</h1>", 0))
	require.Empty(t, Excerpt("", 10))
}

func TestExcerpt_SkipsEmptyParagraphs(t *testing.T) {
	require.Equal(t, "Text", Excerpt("<p><img src=\"x\"></p><p>Text</p>", 0))
}

func TestExcerpt_Truncates(t *testing.T) {
	long := "<p>" + strings.Repeat("word ", 50) + "</p>"
	got := Excerpt(long, 20)
	require.True(t, strings.HasSuffix(got, "…"))
	require.LessOrEqual(t, len([]rune(got)), 21)
}
