package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// ErrNoDocuments means the acquisition stage delivered nothing for the day.
var ErrNoDocuments = errors.New("no newspaper documents for the day")

// ErrEmptyDigest means zero newspapers extracted successfully; the run is a
// terminal failure for the orchestrator.
var ErrEmptyDigest = errors.New("no newspapers extracted successfully")

// PipelineDeps wires all driven adapters into the daily digest pipeline.
type PipelineDeps struct {
	Source     ports.DocumentSource
	Preparer   *Preparer
	Extractor  *Extractor
	Matcher    *Matcher
	Merger     *Merger
	Assembler  *Assembler
	Budget     *CallBudget
	Repository ports.DigestRepository
	Notifier   ports.Notifier
	Rank       PaperRank
	Workers    int
	Logger     *slog.Logger
}

// Pipeline implements the extract-match-merge-assemble workflow.
type Pipeline struct {
	source     ports.DocumentSource
	preparer   *Preparer
	extractor  *Extractor
	matcher    *Matcher
	merger     *Merger
	assembler  *Assembler
	budget     *CallBudget
	repository ports.DigestRepository
	notifier   ports.Notifier
	rank       PaperRank
	workers    int
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		source:     deps.Source,
		preparer:   deps.Preparer,
		extractor:  deps.Extractor,
		matcher:    deps.Matcher,
		merger:     deps.Merger,
		assembler:  deps.Assembler,
		budget:     deps.Budget,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		rank:       deps.Rank,
		workers:    workers,
		logger:     deps.Logger,
	}
}

// extractionResult carries one newspaper's outcome across the barrier.
// Failure is a value here, not a fault, so the barrier inspects all
// outcomes uniformly.
type extractionResult struct {
	newspaper string
	articles  []domain.Article
	err       error
}

// ProcessDay runs the whole pipeline for one day's batch of PDFs. The digest
// is produced whenever at least one newspaper extracts successfully; the
// RunStatus reports the rest.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) (domain.Digest, domain.RunStatus, error) {
	status := domain.RunStatus{RunID: uuid.NewString(), Date: day}
	if p.budget != nil {
		p.budget.Reset()
	}

	refs, err := p.source.Collect(ctx, day)
	if err != nil {
		return domain.Digest{}, status, fmt.Errorf("collect documents: %w", err)
	}
	if len(refs) == 0 {
		return domain.Digest{}, status, ErrNoDocuments
	}

	results := p.extractAll(ctx, refs, day)

	var articles []domain.Article
	for _, res := range results {
		switch {
		case res.err == nil:
			status.Extracted = append(status.Extracted, res.newspaper)
			articles = append(articles, res.articles...)
		case errors.Is(res.err, ErrQuotaExhausted):
			p.warn("newspaper skipped for quota", "newspaper", res.newspaper)
			status.SkippedForQuota = append(status.SkippedForQuota, res.newspaper)
		default:
			p.warn("newspaper extraction failed", "newspaper", res.newspaper, "error", res.err)
			status.Failed = append(status.Failed, res.newspaper)
		}
	}
	p.sortByRank(status.Extracted)
	p.sortByRank(status.Failed)
	p.sortByRank(status.SkippedForQuota)

	if len(status.Extracted) == 0 {
		status.OracleCalls = p.budgetUsed()
		return domain.Digest{}, status, ErrEmptyDigest
	}

	// Barrier passed: every extraction task has completed or failed.
	clusters, fellBack := p.matcher.Match(ctx, articles)
	status.MatcherFallback = fellBack

	stories := make([]domain.MergedStory, 0, len(clusters))
	for _, cluster := range clusters {
		stories = append(stories, p.merger.Build(cluster))
	}

	digest := p.assembler.Assemble(day, status.Extracted, stories)
	status.OracleCalls = p.budgetUsed()

	p.info("digest assembled",
		"articles", len(articles),
		"stories", len(stories),
		"newspapers", len(status.Extracted),
		"failed", len(status.Failed),
		"oracle_calls", status.OracleCalls)

	if p.repository != nil {
		if err := p.repository.SaveRun(ctx, status, digest); err != nil {
			p.warn("persist run failed", "error", err)
		}
	}
	if p.notifier != nil {
		if err := p.notifier.PublishRunReport(ctx, digest, status); err != nil {
			p.warn("run notification failed", "error", err)
		}
	}

	return digest, status, nil
}

// extractAll fans out per-newspaper prepare+extract tasks bounded by the
// worker limit and joins them at a single barrier. Articles keep their
// in-document order; papers are then ordered by the fixed newspaper priority
// so the matcher sees a deterministic input.
func (p *Pipeline) extractAll(ctx context.Context, refs []ports.DocumentRef, day time.Time) []extractionResult {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(p.workers)
	results := make(chan extractionResult, len(refs))

	for _, ref := range refs {
		ref := ref
		group.Go(func() error {
			results <- p.extractOne(ctx, ref, day)
			return nil
		})
	}

	_ = group.Wait()
	close(results)

	collected := make([]extractionResult, 0, len(refs))
	for res := range results {
		collected = append(collected, res)
	}
	sort.SliceStable(collected, func(i, j int) bool {
		return p.rank.Rank(collected[i].newspaper) < p.rank.Rank(collected[j].newspaper)
	})
	return collected
}

func (p *Pipeline) extractOne(ctx context.Context, ref ports.DocumentRef, day time.Time) extractionResult {
	if err := ctx.Err(); err != nil {
		return extractionResult{newspaper: ref.Newspaper, err: err}
	}

	doc, err := p.preparer.Prepare(ctx, ref, day)
	if err != nil {
		return extractionResult{newspaper: ref.Newspaper, err: fmt.Errorf("prepare: %w", err)}
	}

	articles, err := p.extractor.ExtractArticles(ctx, doc)
	if err != nil {
		return extractionResult{newspaper: ref.Newspaper, err: err}
	}

	return extractionResult{newspaper: ref.Newspaper, articles: articles}
}

func (p *Pipeline) sortByRank(papers []string) {
	sort.SliceStable(papers, func(i, j int) bool {
		return p.rank.Rank(papers[i]) < p.rank.Rank(papers[j])
	})
}

func (p *Pipeline) budgetUsed() int {
	if p.budget == nil {
		return 0
	}
	return p.budget.Used()
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
