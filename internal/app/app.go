package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/llm"
	"NewsDigest/internal/infrastructure/ocr"
	"NewsDigest/internal/infrastructure/pdftext"
	"NewsDigest/internal/infrastructure/scheduler"
	"NewsDigest/internal/infrastructure/source"
	"NewsDigest/internal/infrastructure/storage"
	"NewsDigest/internal/infrastructure/telegram"
	"NewsDigest/internal/logging"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	driver   ports.Scheduler
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	rank := usecase.NewPaperRank(cfg.NewspaperOrder())
	budget := usecase.NewCallBudget(cfg.OracleBudget())
	oracle := llm.NewGeminiClient(cfg.Oracle, cfg.Categories.Vocabulary)

	preparer := usecase.NewPreparer(
		pdftext.NewReader(),
		ocr.NewEngine(cfg.Preparer.OCRDPI, cfg.Preparer.OCRLanguage),
		usecase.PreparerOptions{
			MinPageChars: cfg.Preparer.MinPageChars,
			MinDocChars:  cfg.Preparer.MinDocChars,
			MinDocPages:  cfg.Preparer.MinDocPages,
		},
		baseLogger.With("component", "preparer"),
	)

	extractor := usecase.NewExtractor(oracle, budget, cfg.Categories.Vocabulary,
		usecase.ExtractorOptions{
			MaxChars:     cfg.Oracle.MaxChars,
			MaxRetries:   cfg.Oracle.MaxRetries,
			RetryBackoff: cfg.Oracle.RetryBackoff,
		},
		baseLogger.With("component", "extractor"),
	)

	var repository ports.DigestRepository
	var db *sql.DB
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("database unavailable, run history disabled", "error", err)
		} else {
			db = opened
			repository = storage.NewPostgresRepository(db)
		}
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID,
			cfg.Notifications.Telegram.SiteURL,
		)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source.NewDirSource(cfg.Input.Dir, cfg.Newspapers, baseLogger.With("component", "source")),
		Preparer:   preparer,
		Extractor:  extractor,
		Matcher:    usecase.NewMatcher(oracle, budget, baseLogger.With("component", "matcher")),
		Merger:     usecase.NewMerger(rank),
		Assembler:  usecase.NewAssembler(cfg.Categories.Priority, rank),
		Budget:     budget,
		Repository: repository,
		Notifier:   notifier,
		Rank:       rank,
		Workers:    cfg.Workers,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		driver:   scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
		db:       db,
	}
}

// Run performs a single pipeline execution and writes the digest artifact.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	day := time.Now().In(a.cfg.Scheduler.Location())
	digest, status, err := a.pipeline.ProcessDay(ctx, day)
	if err != nil {
		return fmt.Errorf("process day: %w", err)
	}

	if err := a.writeArtifact(digest); err != nil {
		return err
	}

	a.logger.Info("run complete",
		"run_id", status.RunID,
		"stories", digest.TotalCount,
		"newspapers", len(status.Extracted),
		"failed", len(status.Failed),
		"oracle_calls", status.OracleCalls)
	return nil
}

// RunScheduled registers the daily job with the cron driver and blocks until
// the context is cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	if a.driver == nil {
		return a.Run(ctx)
	}

	job := func(trigger time.Time) {
		if err := a.Run(ctx); err != nil {
			a.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
		}
	}

	if err := a.driver.Start(ctx, job); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.driver.Stop(stopCtx)
}

// Close releases long-lived resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// writeArtifact persists digest.json, the sole artifact site generation
// consumes.
func (a *Application) writeArtifact(digest domain.Digest) error {
	dir := a.cfg.Output.Dir
	if dir == "" {
		dir = "docs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	payload, err := json.MarshalIndent(digest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}

	path := filepath.Join(dir, "digest.json")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	a.logger.Info("digest artifact written", "path", path)
	return nil
}
