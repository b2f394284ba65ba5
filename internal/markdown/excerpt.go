package markdown

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Excerpt returns the text of the first non-empty paragraph of an HTML
// fragment, whitespace-collapsed and cut to at most limit runes (0 disables the cut).
func Excerpt(fragment string, limit int) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return ""
	}

	for _, n := range nodes {
		if p := firstParagraph(n); p != "" {
			return truncate(p, limit)
		}
	}
	return ""
}

func firstParagraph(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.P {
		var sb strings.Builder
		collectText(n, &sb)
		if text := strings.Join(strings.Fields(sb.String()), " "); text != "" {
			return text
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if p := firstParagraph(c); p != "" {
			return p
		}
	}
	return ""
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimRight(string(runes[:limit]), " ")
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
