package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"NewsDigest/internal/ports"
)

// Engine recognizes scanned pages with the poppler/tesseract CLI pair:
// pdftoppm renders pages to images, tesseract reads each one.
type Engine struct {
	pdftoppm  string
	tesseract string
	dpi       int
	language  string
}

var _ ports.OCREngine = (*Engine)(nil)

// NewEngine builds the adapter; empty binary paths resolve from PATH.
func NewEngine(dpi int, language string) *Engine {
	if dpi <= 0 {
		dpi = 150
	}
	if language == "" {
		language = "eng"
	}
	return &Engine{pdftoppm: "pdftoppm", tesseract: "tesseract", dpi: dpi, language: language}
}

// RecognizePages renders the whole document once and OCRs every page,
// returning one string per page in order. A page that fails recognition
// yields an empty string; only rendering failure is an error.
func (e *Engine) RecognizePages(ctx context.Context, pdfPath string) ([]string, error) {
	workDir, err := os.MkdirTemp("", "newsdigest-ocr-")
	if err != nil {
		return nil, fmt.Errorf("ocr tempdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	prefix := filepath.Join(workDir, "page")
	render := exec.CommandContext(ctx, e.pdftoppm,
		"-r", strconv.Itoa(e.dpi),
		"-png",
		pdfPath,
		prefix,
	)
	if out, err := render.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm %s: %w (%s)", pdfPath, err, firstLine(out))
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages for %s", pdfPath)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(images)

	texts := make([]string, 0, len(images))
	for _, image := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		recognize := exec.CommandContext(ctx, e.tesseract,
			image,
			"stdout",
			"-l", e.language,
			"--psm", "3",
		)
		out, err := recognize.Output()
		if err != nil {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, string(out))
	}

	return texts, nil
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}
