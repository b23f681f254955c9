package adapters

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/antiplagiat/internal/extract"
)

const docxMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocxAdapter reads the paragraphs of Word documents
type DocxAdapter struct{}

// NewDocxAdapter creates a new DOCX adapter
func NewDocxAdapter() *DocxAdapter {
	return &DocxAdapter{}
}

// Name returns the adapter name
func (a *DocxAdapter) Name() string {
	return "docx"
}

// CanHandle matches the DOCX content type and .docx names
func (a *DocxAdapter) CanHandle(name string, contentType string) bool {
	return mediaType(contentType) == docxMime || hasExt(name, ".docx")
}

// Extract reads word/document.xml, one line per paragraph
func (a *DocxAdapter) Extract(data []byte, name string, contentType string) (*extract.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx zip: %w", err)
	}

	var xmlData []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open document.xml: %w", err)
		}
		xmlData, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(xmlData) == 0 {
		return nil, fmt.Errorf("word/document.xml not found")
	}

	decoder := xml.NewDecoder(bytes.NewReader(xmlData))
	var b strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "p":
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			case "tab":
				b.WriteString(" ")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return &extract.Document{Text: b.String()}, nil
}
