package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// PostgresRepository persists run outcomes and digest snapshots for audit.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.DigestRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRun upserts the run status together with the full digest payload.
func (r *PostgresRepository) SaveRun(ctx context.Context, status domain.RunStatus, digest domain.Digest) error {
	if r.db == nil {
		return nil
	}

	payload, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}

	query, args, err := r.builder.
		Insert("digest_runs").
		Columns(
			"run_id",
			"run_date",
			"newspapers_extracted",
			"newspapers_failed",
			"skipped_for_quota",
			"matcher_fallback",
			"oracle_calls",
			"story_count",
			"payload",
		).
		Values(
			status.RunID,
			status.Date,
			pq.StringArray(status.Extracted),
			pq.StringArray(status.Failed),
			pq.StringArray(status.SkippedForQuota),
			status.MatcherFallback,
			status.OracleCalls,
			digest.TotalCount,
			payload,
		).
		Suffix(`ON CONFLICT (run_id) DO UPDATE
                SET newspapers_extracted = EXCLUDED.newspapers_extracted,
                    newspapers_failed = EXCLUDED.newspapers_failed,
                    skipped_for_quota = EXCLUDED.skipped_for_quota,
                    matcher_fallback = EXCLUDED.matcher_fallback,
                    oracle_calls = EXCLUDED.oracle_calls,
                    story_count = EXCLUDED.story_count,
                    payload = EXCLUDED.payload,
                    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}

	return nil
}
