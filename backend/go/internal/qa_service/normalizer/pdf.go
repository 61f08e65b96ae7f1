package normalizer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PdfConverter extracts the plain text of every page of a PDF document.
type PdfConverter struct{}

// NewPdfConverter creates a new PdfConverter.
func NewPdfConverter() *PdfConverter {
	return &PdfConverter{}
}

func (c *PdfConverter) Extensions() []string { return []string{"pdf"} }

// Convert joins the text of each page with newlines. Pages without
// extractable text are skipped.
func (c *PdfConverter) Convert(data []byte) (text string, err error) {
	// The reader panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", malformed(fmt.Errorf("invalid PDF structure: %v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", malformed(err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return "", malformed(fmt.Errorf("page %d: %w", i, err))
		}
		// GetPlainText starts each page with a line break.
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		pages = append(pages, pageText)
	}
	if r.NumPage() == 0 {
		return "", malformed(errors.New("document has no pages"))
	}
	return strings.Join(pages, "\n"), nil
}

// compile-time check to ensure PdfConverter implements the Converter interface
var _ Converter = (*PdfConverter)(nil)
