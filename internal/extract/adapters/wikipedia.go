package adapters

import (
	"net/url"
	"strings"

	"github.com/ppiankov/antiplagiat/internal/extract"
	"golang.org/x/net/html"
)

// WikipediaAdapter reads only the article body of Wikipedia pages,
// leaving out navigation, infoboxes, footnote markers and reference lists
type WikipediaAdapter struct{}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter() *WikipediaAdapter {
	return &WikipediaAdapter{}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string {
	return "wikipedia"
}

// CanHandle checks if this is a Wikipedia URL
func (a *WikipediaAdapter) CanHandle(rawURL string, contentType string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org")
}

// Extract returns the article heading and body text
func (a *WikipediaAdapter) Extract(data []byte, name string, contentType string) (*extract.Document, error) {
	doc, err := parseHTML(data, contentType)
	if err != nil {
		return nil, err
	}

	title := ""
	if h := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h1" && attr(n, "id") == "firstHeading"
	}); h != nil {
		title = strings.TrimSpace(nodeText(h))
	}

	content := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" &&
			(hasClass(n, "mw-parser-output") || attr(n, "id") == "mw-content-text")
	})
	if content == nil {
		content = doc
	}

	removeAll(content, isWikiChrome)

	return &extract.Document{Title: title, Text: extract.VisibleText(content)}, nil
}

// isWikiChrome matches elements that are not article prose
func isWikiChrome(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.Data == "sup" && hasClass(n, "reference") {
		return true
	}
	if n.Data == "ol" && hasClass(n, "references") {
		return true
	}
	for _, class := range []string{"mw-editsection", "infobox", "navbox", "reflist", "toc", "thumb", "hatnote", "metadata"} {
		if hasClass(n, class) {
			return true
		}
	}
	return attr(n, "id") == "toc"
}
