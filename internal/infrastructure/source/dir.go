package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/ports"
)

// DirSource lists the day's newspaper PDFs from a local directory the
// acquisition stage (Telegram download, external to this system) fills.
// Files are matched to configured newspapers by a normalized filename
// keyword.
type DirSource struct {
	dir    string
	papers []config.NewspaperConfig
	logger *slog.Logger
}

var _ ports.DocumentSource = (*DirSource)(nil)

// NewDirSource wires the input directory with the configured newspaper list.
func NewDirSource(dir string, papers []config.NewspaperConfig, logger *slog.Logger) *DirSource {
	return &DirSource{dir: dir, papers: papers, logger: logger}
}

// Collect returns one DocumentRef per configured newspaper found on disk, in
// configured (priority) order. A paper without a matching PDF is logged and
// skipped; the pipeline treats the day as a partial batch.
func (s *DirSource) Collect(ctx context.Context, day time.Time) ([]ports.DocumentRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", s.dir, err)
	}

	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pdfs = append(pdfs, entry.Name())
		}
	}

	refs := make([]ports.DocumentRef, 0, len(s.papers))
	for _, paper := range s.papers {
		name, ok := matchKeyword(pdfs, paper.Keyword)
		if !ok {
			s.warn("no PDF for newspaper", "newspaper", paper.Name, "keyword", paper.Keyword)
			continue
		}
		refs = append(refs, ports.DocumentRef{
			Newspaper: paper.Name,
			PDFPath:   filepath.Join(s.dir, name),
		})
	}

	return refs, nil
}

// matchKeyword finds the first file whose normalized name contains the
// normalized keyword. Normalization strips separators so "The_Hindu-25.pdf"
// matches "thehindu".
func matchKeyword(names []string, keyword string) (string, bool) {
	want := normalize(keyword)
	if want == "" {
		return "", false
	}
	for _, name := range names {
		if strings.Contains(normalize(name), want) {
			return name, true
		}
	}
	return "", false
}

func normalize(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '.':
			return -1
		}
		return r
	}, name)
}

func (s *DirSource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
