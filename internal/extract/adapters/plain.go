package adapters

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/antiplagiat/internal/extract"
	"golang.org/x/net/html/charset"
)

// PlainAdapter is the fallback for .txt and unknown documents
type PlainAdapter struct{}

// NewPlainAdapter creates a new plain text adapter
func NewPlainAdapter() *PlainAdapter {
	return &PlainAdapter{}
}

// Name returns the adapter name
func (a *PlainAdapter) Name() string {
	return "plain"
}

// CanHandle always returns true (fallback adapter)
func (a *PlainAdapter) CanHandle(name string, contentType string) bool {
	return true
}

// Extract decodes the bytes as text. Invalid UTF-8 is decoded with the
// declared charset, or windows-1251 when none is declared.
func (a *PlainAdapter) Extract(data []byte, name string, contentType string) (*extract.Document, error) {
	text, err := decodeText(data, contentType)
	if err != nil {
		return nil, err
	}
	return &extract.Document{Text: strings.TrimPrefix(text, "\uFEFF")}, nil
}

func decodeText(data []byte, contentType string) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	enc, _, certain := charset.DetermineEncoding(data, contentType)
	if !certain && !strings.Contains(strings.ToLower(contentType), "charset=") {
		if cyr, _ := charset.Lookup("windows-1251"); cyr != nil {
			enc = cyr
		}
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
