package adapters

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ppiankov/antiplagiat/internal/extract"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// HTMLAdapter extracts the visible text of a web page
type HTMLAdapter struct{}

// NewHTMLAdapter creates a new HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle matches HTML content types and .html/.htm names
func (a *HTMLAdapter) CanHandle(name string, contentType string) bool {
	switch mediaType(contentType) {
	case "text/html", "application/xhtml+xml":
		return true
	}
	return hasExt(name, ".html", ".htm", ".xhtml")
}

// Extract parses the page and returns its <title> and visible text
func (a *HTMLAdapter) Extract(data []byte, name string, contentType string) (*extract.Document, error) {
	doc, err := parseHTML(data, contentType)
	if err != nil {
		return nil, err
	}

	title := ""
	if t := findFirst(doc, isElement("title")); t != nil {
		title = strings.TrimSpace(nodeText(t))
	}

	body := findFirst(doc, isElement("main"))
	if body == nil {
		body = findFirst(doc, isElement("article"))
	}
	if body == nil {
		body = doc
	}

	return &extract.Document{Title: title, Text: extract.VisibleText(body)}, nil
}

func parseHTML(data []byte, contentType string) (*html.Node, error) {
	r, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}

func isElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}
