// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse extracts text, structure, citations, and key
// information from cached PDF artifacts.
package parse

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is the per-page plain text of one artifact.
type Document struct {
	Pages []string
}

// ReadDocument extracts plain text from the PDF at path, one string per
// page. Pages the library cannot decode become empty strings rather
// than failing the whole document.
func ReadDocument(path string) (*Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer file.Close()

	n := reader.NumPage()
	doc := &Document{Pages: make([]string, 0, n)}
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			doc.Pages = append(doc.Pages, "")
			continue
		}
		doc.Pages = append(doc.Pages, text)
	}
	return doc, nil
}

// FullText joins all pages into one string.
func (d *Document) FullText() string {
	return strings.Join(d.Pages, "\n")
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}
