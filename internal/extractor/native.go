package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeExtractor reads a PDF's embedded text layer.
type NativeExtractor interface {
	Extract(data []byte) (text string, pages int, err error)
}

// PDFText extracts the text layer with ledongthuc/pdf, page by page.
type PDFText struct{}

// Extract joins page texts with newlines. The reader panics on some malformed
// files; a panic is returned as an error.
func (PDFText) Extract(data []byte) (text string, pages int, err error) {
	if len(data) == 0 {
		return "", 0, errors.New("empty PDF content")
	}
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	pages = r.NumPage()
	texts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		pt, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		texts = append(texts, pt)
	}
	return strings.Join(texts, "\n"), pages, nil
}
