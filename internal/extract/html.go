package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is text extracted from markup, with its title if any
type Document struct {
	Title string
	Text  string
}

// ParseHTML extracts the title and visible text of an HTML page
func ParseHTML(htmlContent string) (*Document, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	return &Document{
		Title: findTitle(doc),
		Text:  VisibleText(doc),
	}, nil
}

// VisibleText extracts text nodes from HTML, skipping scripts/styles.
// Block elements end with a newline so paragraphs do not run together.
func VisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head", "nav", "footer":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) && buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
			buf.WriteString("\n")
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "tr", "section", "article":
		return true
	}
	return false
}

// findTitle returns the text of the first <title> element
func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// StripTags returns the plain text of an HTML fragment such as a search
// result title. Invalid markup is returned unchanged.
func StripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return fragment
	}
	var parts []string
	for _, n := range nodes {
		if t := VisibleText(n); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
