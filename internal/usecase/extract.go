package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// ExtractorOptions tune the single-call extraction behavior.
type ExtractorOptions struct {
	// MaxChars caps the page-tagged text sent to the oracle.
	MaxChars int
	// MaxRetries bounds re-attempts after a failed oracle call. Retries ride
	// on the budget slot acquired for the first attempt.
	MaxRetries int
	// RetryBackoff is the initial backoff, doubled per attempt.
	RetryBackoff time.Duration
}

// Extractor sends one prepared document to the oracle and repairs the
// response into canonical Article records.
type Extractor struct {
	oracle     ports.Oracle
	budget     *CallBudget
	vocabulary map[string]string
	opts       ExtractorOptions
	logger     *slog.Logger
}

// NewExtractor wires the oracle, the run-wide call budget and the controlled
// category vocabulary (matched case-insensitively).
func NewExtractor(oracle ports.Oracle, budget *CallBudget, vocabulary []string, opts ExtractorOptions, logger *slog.Logger) *Extractor {
	if opts.MaxChars <= 0 {
		opts.MaxChars = 900_000
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	vocab := make(map[string]string, len(vocabulary))
	for _, category := range vocabulary {
		vocab[strings.ToLower(category)] = category
	}
	return &Extractor{oracle: oracle, budget: budget, vocabulary: vocab, opts: opts, logger: logger}
}

// ExtractArticles makes exactly one budgeted oracle call for the document and
// validates the response. A quota or oracle failure marks the whole newspaper
// as failed; the caller degrades the run instead of aborting it.
func (e *Extractor) ExtractArticles(ctx context.Context, doc domain.SourceDocument) ([]domain.Article, error) {
	text := pageTaggedText(doc, e.opts.MaxChars)
	if text == "" {
		return nil, fmt.Errorf("no readable text in %s", doc.Newspaper)
	}

	if e.budget != nil {
		if err := e.budget.Acquire(); err != nil {
			return nil, fmt.Errorf("extract %s: %w", doc.Newspaper, err)
		}
	}

	entries, err := e.callWithRetry(ctx, doc.Newspaper, text)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", doc.Newspaper, err)
	}

	articles := e.repair(doc, entries)
	e.debug("extraction complete", "newspaper", doc.Newspaper, "raw", len(entries), "kept", len(articles))
	return articles, nil
}

func (e *Extractor) callWithRetry(ctx context.Context, newspaper, text string) ([]ports.ArticleEntry, error) {
	backoff := e.opts.RetryBackoff
	var lastErr error

	for attempt := 0; attempt <= e.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			e.debug("retrying oracle call", "newspaper", newspaper, "attempt", attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		entries, err := e.oracle.ExtractArticles(ctx, newspaper, text)
		if err == nil {
			return entries, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("oracle call failed after %d attempts: %w", e.opts.MaxRetries+1, lastErr)
}

// repair applies the validation policy: drop entries without a headline or
// with any page reference outside the document, coerce categories into the
// vocabulary, clamp importance, inherit the extraction method from the pages.
func (e *Extractor) repair(doc domain.SourceDocument, entries []ports.ArticleEntry) []domain.Article {
	articles := make([]domain.Article, 0, len(entries))

	for _, entry := range entries {
		headline := strings.TrimSpace(entry.Headline)
		if headline == "" {
			continue
		}

		pages := normalizePages(entry.Pages, len(doc.Pages))
		if pages == nil {
			continue
		}

		category := domain.CategoryGeneral
		if canonical, ok := e.vocabulary[strings.ToLower(strings.TrimSpace(entry.Category))]; ok {
			category = canonical
		}

		importance := entry.Importance
		if importance < 1 || importance > 10 {
			importance = 5
		}

		method := domain.MethodDirect
		for _, page := range pages {
			if doc.Pages[page-1].Method == domain.MethodOCR {
				method = domain.MethodOCR
				break
			}
		}

		articles = append(articles, domain.Article{
			Newspaper:  doc.Newspaper,
			Headline:   headline,
			Summary:    strings.TrimSpace(entry.Summary),
			Category:   category,
			Pages:      pages,
			Importance: importance,
			Method:     method,
		})
	}

	return articles
}

// normalizePages dedupes and sorts page references. Any reference outside
// [1, pageCount] invalidates the whole entry, as does an empty set.
func normalizePages(pages []int, pageCount int) []int {
	if len(pages) == 0 {
		return nil
	}

	seen := make(map[int]struct{}, len(pages))
	out := make([]int, 0, len(pages))
	for _, page := range pages {
		if page < 1 || page > pageCount {
			return nil
		}
		if _, ok := seen[page]; ok {
			continue
		}
		seen[page] = struct{}{}
		out = append(out, page)
	}
	sort.Ints(out)
	return out
}

// pageTaggedText builds the oracle input with explicit [PAGE N] boundaries,
// truncated at maxChars. No-content pages are skipped; their numbering is
// still visible to the oracle through the markers of surrounding pages.
func pageTaggedText(doc domain.SourceDocument, maxChars int) string {
	var sb strings.Builder
	for _, page := range doc.Pages {
		if page.NoContent || page.Text == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n\n[PAGE %d]\n%s", page.Number, page.Text)
	}

	text := sb.String()
	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	return strings.TrimSpace(text)
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
