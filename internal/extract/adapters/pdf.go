package adapters

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ppiankov/antiplagiat/internal/extract"
)

// PDFAdapter extracts the text layer of PDF documents
type PDFAdapter struct{}

// NewPDFAdapter creates a new PDF adapter
func NewPDFAdapter() *PDFAdapter {
	return &PDFAdapter{}
}

// Name returns the adapter name
func (a *PDFAdapter) Name() string {
	return "pdf"
}

// CanHandle matches application/pdf and .pdf names
func (a *PDFAdapter) CanHandle(name string, contentType string) bool {
	return mediaType(contentType) == "application/pdf" || hasExt(name, ".pdf")
}

// Extract concatenates the plain text of every page. Pages without a text
// layer are skipped; a document with no text at all is an error.
func (a *PDFAdapter) Extract(data []byte, name string, contentType string) (*extract.Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, fmt.Errorf("not a PDF document")
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if strings.TrimSpace(b.String()) == "" {
		return nil, fmt.Errorf("no extractable text found in pdf")
	}

	title := ""
	if info := r.Trailer().Key("Info"); !info.IsNull() {
		title = strings.TrimSpace(info.Key("Title").Text())
	}
	return &extract.Document{Title: title, Text: b.String()}, nil
}
