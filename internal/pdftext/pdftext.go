// Package pdftext extracts plain text from PDF documents held in memory.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls text out of PDF attachments.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract returns the concatenated plain text of every page in the document.
func (e *Extractor) Extract(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf document")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
