package ports

import (
	"context"
	"time"

	"NewsDigest/internal/domain"
)

// DocumentRef identifies one newspaper PDF handed over by the acquisition stage.
type DocumentRef struct {
	Newspaper string
	PDFPath   string
}

// DocumentSource lists the day's downloaded newspaper PDFs.
type DocumentSource interface {
	Collect(ctx context.Context, day time.Time) ([]DocumentRef, error)
}

// PageTextExtractor pulls machine-readable text out of a PDF, one entry per page.
type PageTextExtractor interface {
	PageTexts(ctx context.Context, pdfPath string) ([]string, error)
}

// OCREngine recognizes text on scanned pages, one entry per page.
type OCREngine interface {
	RecognizePages(ctx context.Context, pdfPath string) ([]string, error)
}

// ArticleEntry is the untrusted per-article shape returned by the extraction oracle.
// Validation and repair into domain.Article happen in the usecase layer.
type ArticleEntry struct {
	Headline   string
	Summary    string
	Category   string
	Pages      []int
	Importance int
}

// MatchItem is one article presented to the matching oracle.
type MatchItem struct {
	Index    int
	Headline string
	Summary  string
}

// Oracle is the external AI extraction/matching service, a black-box capability.
type Oracle interface {
	ExtractArticles(ctx context.Context, newspaper, pageTaggedText string) ([]ArticleEntry, error)
	MatchArticles(ctx context.Context, items []MatchItem) ([][]int, error)
}

// DigestRepository persists run outcomes and digests for audit/history.
type DigestRepository interface {
	SaveRun(ctx context.Context, status domain.RunStatus, digest domain.Digest) error
}

// Notifier announces a finished run to Telegram or other channels.
type Notifier interface {
	PublishRunReport(ctx context.Context, digest domain.Digest, status domain.RunStatus) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
