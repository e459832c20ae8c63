// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"context"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/adiadia/research-engine/internal/workflow"
	"github.com/google/uuid"
)

type WorkflowRunner interface {
	Run(ctx context.Context, question string) (workflow.RunResult, error)
	Stream(ctx context.Context, question string) <-chan workflow.Event
}

type DocumentStore interface {
	InsertDocument(ctx context.Context, doc domain.NewDocument) (domain.Document, error)
	InsertDocuments(ctx context.Context, docs []domain.NewDocument) ([]domain.Document, error)
}

type TraceFinder interface {
	FindByQueryID(ctx context.Context, queryID uuid.UUID) (domain.ExecutionRecord, error)
}

type HealthChecker interface {
	Check(ctx context.Context) error
}
