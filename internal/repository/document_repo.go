// SPDX-License-Identifier: Apache-2.0

package repository

import (
	"context"
	"log/slog"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DocumentRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, logger *slog.Logger) *DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &DocumentRepository{
		pool:   pool,
		logger: logger,
	}
}

// SearchDocuments runs a full-text query over title+content and returns the
// top matches by rank. The tsvector column is generated by the schema.
func (r *DocumentRepository) SearchDocuments(ctx context.Context, query string, limit int) ([]domain.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, topic, content, created_at
		FROM documents
		WHERE search_tsv @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(search_tsv, plainto_tsquery('english', $1)) DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		r.logger.Error("document search query failed", "query", query, "error", err)
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Document, 0, limit)
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Topic, &doc.Content, &doc.CreatedAt); err != nil {
			r.logger.Error("scan document row failed", "query", query, "error", err)
			return nil, err
		}
		out = append(out, doc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("document rows iteration failed", "query", query, "error", err)
		return nil, err
	}

	return out, nil
}

// InsertDocument validates and stores one document. Topic defaults when
// absent; missing title or content is rejected before anything is written.
func (r *DocumentRepository) InsertDocument(ctx context.Context, doc domain.NewDocument) (domain.Document, error) {
	if err := doc.Validate(); err != nil {
		return domain.Document{}, err
	}

	stored := domain.Document{
		ID:      uuid.New(),
		Title:   doc.Title,
		Topic:   doc.Topic,
		Content: doc.Content,
	}
	if stored.Topic == "" {
		stored.Topic = domain.DefaultTopic
	}

	if err := r.pool.QueryRow(ctx, `
		INSERT INTO documents (id, title, topic, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`,
		stored.ID,
		stored.Title,
		stored.Topic,
		stored.Content,
	).Scan(&stored.CreatedAt); err != nil {
		r.logger.Error("insert document failed", "title", stored.Title, "error", err)
		return domain.Document{}, err
	}

	r.logger.Info("document inserted", "document_id", stored.ID, "topic", stored.Topic)
	return stored, nil
}

// InsertDocuments stores a batch in one transaction. Any invalid entry
// rejects the whole batch before any write happens.
func (r *DocumentRepository) InsertDocuments(ctx context.Context, docs []domain.NewDocument) ([]domain.Document, error) {
	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return nil, err
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error("begin tx failed", "error", err)
		return nil, err
	}
	defer tx.Rollback(ctx)

	out := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		stored := domain.Document{
			ID:      uuid.New(),
			Title:   doc.Title,
			Topic:   doc.Topic,
			Content: doc.Content,
		}
		if stored.Topic == "" {
			stored.Topic = domain.DefaultTopic
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO documents (id, title, topic, content)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`,
			stored.ID,
			stored.Title,
			stored.Topic,
			stored.Content,
		).Scan(&stored.CreatedAt); err != nil {
			r.logger.Error("insert document failed", "title", stored.Title, "error", err)
			return nil, err
		}
		out = append(out, stored)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("commit failed", "error", err)
		return nil, err
	}

	r.logger.Info("documents inserted", "count", len(out))
	return out, nil
}
