package pdftext

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"NewsDigest/internal/ports"
)

// Reader extracts per-page plain text from a PDF via its embedded text layer.
type Reader struct{}

var _ ports.PageTextExtractor = (*Reader)(nil)

// NewReader returns the direct-text adapter.
func NewReader() *Reader {
	return &Reader{}
}

// PageTexts returns one string per page in document order. Pages without a
// text layer or failing to decode yield an empty string rather than an error
// so the slice always matches the page count.
func (r *Reader) PageTexts(ctx context.Context, pdfPath string) ([]string, error) {
	file, doc, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", pdfPath, err)
	}
	defer file.Close()

	total := doc.NumPage()
	texts := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := doc.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}

	return texts, nil
}
