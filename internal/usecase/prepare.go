package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// PreparerOptions are the scanned-PDF detection heuristics.
type PreparerOptions struct {
	// MinPageChars is the minimum direct-text length for a page to count as
	// machine readable; shorter pages fall back to OCR.
	MinPageChars int
	// MinDocChars / MinDocPages detect fully scanned documents: when the
	// direct pass yields fewer readable pages or characters than these, the
	// whole document is re-read through OCR.
	MinDocChars int
	MinDocPages int
}

// Preparer turns one newspaper PDF into an ordered SourceDocument.
type Preparer struct {
	pdf    ports.PageTextExtractor
	ocr    ports.OCREngine
	opts   PreparerOptions
	logger *slog.Logger
}

// NewPreparer wires the direct-text and OCR adapters.
func NewPreparer(pdf ports.PageTextExtractor, ocr ports.OCREngine, opts PreparerOptions, logger *slog.Logger) *Preparer {
	if opts.MinPageChars <= 0 {
		opts.MinPageChars = 50
	}
	if opts.MinDocChars <= 0 {
		opts.MinDocChars = 5000
	}
	if opts.MinDocPages <= 0 {
		opts.MinDocPages = 2
	}
	return &Preparer{pdf: pdf, ocr: ocr, opts: opts, logger: logger}
}

// Prepare produces one PageText per page in document order. Pages where both
// direct extraction and OCR come up empty are kept with a no-content flag so
// page numbering stays intact for citations.
func (p *Preparer) Prepare(ctx context.Context, ref ports.DocumentRef, day time.Time) (domain.SourceDocument, error) {
	direct, err := p.pdf.PageTexts(ctx, ref.PDFPath)
	if err != nil {
		p.debug("direct extraction failed", "newspaper", ref.Newspaper, "error", err)
		direct = nil
	}

	readable := 0
	totalChars := 0
	for _, text := range direct {
		trimmed := strings.TrimSpace(text)
		if len(trimmed) >= p.opts.MinPageChars {
			readable++
			totalChars += len(trimmed)
		}
	}

	scanned := readable < p.opts.MinDocPages || totalChars < p.opts.MinDocChars

	var recognized []string
	if scanned || readable < len(direct) {
		if p.ocr == nil {
			p.debug("ocr unavailable", "newspaper", ref.Newspaper)
		} else {
			recognized, err = p.ocr.RecognizePages(ctx, ref.PDFPath)
			if err != nil {
				p.debug("ocr failed", "newspaper", ref.Newspaper, "error", err)
				recognized = nil
			}
		}
	}

	pageCount := len(direct)
	if len(recognized) > pageCount {
		pageCount = len(recognized)
	}
	if pageCount == 0 {
		return domain.SourceDocument{}, fmt.Errorf("no pages extracted from %s", ref.PDFPath)
	}

	pages := make([]domain.PageText, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		var directText, ocrText string
		if i < len(direct) {
			directText = strings.TrimSpace(direct[i])
		}
		if i < len(recognized) {
			ocrText = strings.TrimSpace(recognized[i])
		}

		page := domain.PageText{Number: i + 1}
		switch {
		case !scanned && len(directText) >= p.opts.MinPageChars:
			page.Text = directText
			page.Method = domain.MethodDirect
		case ocrText != "":
			page.Text = ocrText
			page.Method = domain.MethodOCR
		case directText != "":
			page.Text = directText
			page.Method = domain.MethodDirect
		default:
			page.Method = domain.MethodNone
			page.NoContent = true
		}
		pages = append(pages, page)
	}

	p.debug("document prepared", "newspaper", ref.Newspaper, "pages", len(pages), "scanned", scanned)

	return domain.SourceDocument{
		Newspaper: ref.Newspaper,
		Date:      day,
		Pages:     pages,
	}, nil
}

func (p *Preparer) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
