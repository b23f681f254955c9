// Package adapters turns uploaded documents and fetched pages into plain text.
package adapters

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppiankov/antiplagiat/internal/extract"
	"golang.org/x/net/html"
)

// Adapter extracts text from one kind of document
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter understands the document.
	// name is a file path or URL; contentType may be empty.
	CanHandle(name string, contentType string) bool

	// Extract returns the document title and body text
	Extract(data []byte, name string, contentType string) (*extract.Document, error)
}

// Registry picks the adapter for a document
type Registry struct {
	adapters []Adapter
	fallback Adapter
}

// NewRegistry creates a registry with the built-in adapters
func NewRegistry() *Registry {
	r := &Registry{fallback: NewPlainAdapter()}
	r.Register(NewPDFAdapter())
	r.Register(NewDocxAdapter())
	r.Register(NewWikipediaAdapter())
	r.Register(NewHTMLAdapter())
	return r
}

// Register adds an adapter; earlier registrations win
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// FindAdapter returns the first adapter that can handle the document,
// or the plain-text fallback
func (r *Registry) FindAdapter(name string, contentType string) Adapter {
	for _, a := range r.adapters {
		if a.CanHandle(name, contentType) {
			return a
		}
	}
	return r.fallback
}

// Extract runs the matching adapter and normalizes whitespace in the result
func (r *Registry) Extract(data []byte, name string, contentType string) (*extract.Document, error) {
	a := r.FindAdapter(name, contentType)
	doc, err := a.Extract(data, name, contentType)
	if err != nil {
		return nil, fmt.Errorf("%s adapter: %w", a.Name(), err)
	}
	doc.Text = normalizeWhitespace(doc.Text)
	if doc.Title == "" {
		doc.Title = titleFromName(name)
	}
	return doc, nil
}

func hasExt(name string, exts ...string) bool {
	// Drop a URL query before looking at the extension
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

func titleFromName(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	base := filepath.Base(strings.TrimRight(name, "/"))
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.NewReplacer("_", " ", "-", " ").Replace(base)
}

// normalizeWhitespace collapses runs of spaces and drops blank lines
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func hasClass(n *html.Node, className string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		if class == className {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// findFirst returns the first node in document order matching pred
func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// removeAll detaches every node matching pred
func removeAll(n *html.Node, pred func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if pred(c) {
			n.RemoveChild(c)
		} else {
			removeAll(c, pred)
		}
		c = next
	}
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return extract.VisibleText(n)
}
