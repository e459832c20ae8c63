// SPDX-License-Identifier: Apache-2.0

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TraceRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewTraceRepository(pool *pgxpool.Pool, logger *slog.Logger) *TraceRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &TraceRepository{
		pool:   pool,
		logger: logger,
	}
}

// CreateExecutionRecord persists one record. There is no update path;
// records are immutable once written.
func (r *TraceRepository) CreateExecutionRecord(ctx context.Context, rec domain.ExecutionRecord) error {
	steps, err := json.Marshal(rec.Steps)
	if err != nil {
		return fmt.Errorf("marshal trace steps: %w", err)
	}

	if _, err := r.pool.Exec(ctx, `
		INSERT INTO execution_records (query_id, question, steps, final_answer, total_duration_ms)
		VALUES ($1, $2, $3::jsonb, $4, $5)
	`,
		rec.QueryID,
		rec.Question,
		steps,
		rec.FinalAnswer,
		rec.TotalDurationMs,
	); err != nil {
		r.logger.Error("insert execution record failed", "query_id", rec.QueryID, "error", err)
		return err
	}

	r.logger.Info("execution record persisted",
		"query_id", rec.QueryID,
		"steps", len(rec.Steps),
		"duration_ms", rec.TotalDurationMs,
	)

	return nil
}

// FindByQueryID is a point lookup. Missing ids surface pgx.ErrNoRows.
func (r *TraceRepository) FindByQueryID(ctx context.Context, queryID uuid.UUID) (domain.ExecutionRecord, error) {
	var rec domain.ExecutionRecord
	var steps []byte

	if err := r.pool.QueryRow(ctx, `
		SELECT query_id, question, steps, final_answer, total_duration_ms, created_at
		FROM execution_records
		WHERE query_id = $1
	`, queryID).Scan(
		&rec.QueryID,
		&rec.Question,
		&steps,
		&rec.FinalAnswer,
		&rec.TotalDurationMs,
		&rec.CreatedAt,
	); err != nil {
		return domain.ExecutionRecord{}, err
	}

	if err := json.Unmarshal(steps, &rec.Steps); err != nil {
		return domain.ExecutionRecord{}, fmt.Errorf("unmarshal trace steps: %w", err)
	}

	return rec, nil
}
