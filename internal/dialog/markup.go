package dialog

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"
)

var (
	strongStyle = lipgloss.NewStyle().Bold(true)
	smallStyle  = lipgloss.NewStyle().Faint(true)
)

// Markup reduces dialog HTML to terminal text. <strong>/<b> render bold,
// <small> faint, <br> and block elements break lines and <i> icon tags are
// dropped. Unparseable input is returned as-is.
func Markup(s string) string {
	return reduce(s, true)
}

// PlainText is Markup without styling, for labels such as button texts
// that may carry icon tags.
func PlainText(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	return reduce(s, false)
}

func reduce(s string, styled bool) string {
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type: html.ElementNode,
		Data: "div",
	})
	if err != nil {
		return s
	}

	r := reducer{styled: styled}
	for _, n := range nodes {
		r.node(n, nil)
	}
	return strings.TrimSpace(r.b.String())
}

type reducer struct {
	b      strings.Builder
	styled bool
}

func (r *reducer) node(n *html.Node, style *lipgloss.Style) {
	switch n.Type {
	case html.TextNode:
		if style != nil && r.styled && !strings.Contains(n.Data, "\n") {
			r.b.WriteString(style.Render(n.Data))
		} else {
			r.b.WriteString(n.Data)
		}
		return
	case html.ElementNode:
		switch n.Data {
		case "br":
			r.b.WriteString("\n")
			return
		case "i":
			return
		case "strong", "b":
			style = &strongStyle
		case "small":
			style = &smallStyle
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c, style)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "ul":
			r.b.WriteString("\n")
		}
	}
}
