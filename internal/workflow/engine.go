// SPDX-License-Identifier: Apache-2.0

// Package workflow implements the six-stage research pipeline: Decompose,
// Retrieve, Rank, Summarize, CrossCheck, Synthesize. The chain is a fixed
// ordered list of stage functions over an accumulating State; there is no
// branching, no cycles and no conditional routing.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/adiadia/research-engine/internal/llm"
	"github.com/adiadia/research-engine/internal/metrics"
	"github.com/google/uuid"
)

const (
	defaultSearchLimit = 3
	defaultTopN        = 5
)

// DocumentSearcher is the full-text search contract issued against the
// document store.
type DocumentSearcher interface {
	SearchDocuments(ctx context.Context, query string, limit int) ([]domain.Document, error)
}

// TraceStore persists execution records. Records are immutable once written.
type TraceStore interface {
	CreateExecutionRecord(ctx context.Context, rec domain.ExecutionRecord) error
}

type Deps struct {
	Documents DocumentSearcher
	Traces    TraceStore
	Model     llm.Client
	Logger    *slog.Logger

	// SearchLimit caps documents fetched per sub-question; TopN caps the
	// ranked set. Zero values take the defaults (3 and 5).
	SearchLimit int
	TopN        int

	// WebhookURL, when set, receives a signed completion notification after
	// each persisted run.
	WebhookURL    string
	WebhookSecret string
	HTTPClient    *http.Client
}

// Engine drives one workflow invocation at a time per call; concurrent
// invocations are independent, each owning its own State and query id.
type Engine struct {
	docs          DocumentSearcher
	traces        TraceStore
	model         llm.Client
	logger        *slog.Logger
	searchLimit   int
	topN          int
	webhookURL    string
	webhookSecret string
	httpClient    *http.Client
}

func New(deps Deps) *Engine {
	l := deps.Logger
	if l == nil {
		l = slog.Default()
	}

	searchLimit := deps.SearchLimit
	if searchLimit <= 0 {
		searchLimit = defaultSearchLimit
	}

	topN := deps.TopN
	if topN <= 0 {
		topN = defaultTopN
	}

	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Engine{
		docs:          deps.Documents,
		traces:        deps.Traces,
		model:         deps.Model,
		logger:        l,
		searchLimit:   searchLimit,
		topN:          topN,
		webhookURL:    deps.WebhookURL,
		webhookSecret: deps.WebhookSecret,
		httpClient:    httpClient,
	}
}

type stage struct {
	name domain.StageName
	run  func(ctx context.Context, st State) (Delta, error)
}

func (e *Engine) stages() []stage {
	return []stage{
		{name: domain.StageDecompose, run: e.decompose},
		{name: domain.StageRetrieve, run: e.retrieve},
		{name: domain.StageRank, run: e.rank},
		{name: domain.StageSummarize, run: e.summarize},
		{name: domain.StageCrossCheck, run: e.crossCheck},
		{name: domain.StageSynthesize, run: e.synthesize},
	}
}

// RunResult is the full-run outcome returned to the transport layer.
type RunResult struct {
	QueryID uuid.UUID          `json:"query_id"`
	Answer  string             `json:"answer"`
	Trace   []domain.TraceStep `json:"trace"`
}

// Run executes the stage chain to completion, persists one execution record
// and returns the terminal state. A stage error aborts the run; nothing is
// persisted for a failed run.
func (e *Engine) Run(ctx context.Context, question string) (RunResult, error) {
	queryID := uuid.New()
	start := time.Now()
	st := newState(question, start)

	e.logger.Info("workflow started", "query_id", queryID, "mode", metrics.ModeFull)

	for _, sg := range e.stages() {
		if err := e.runStage(ctx, sg, &st, queryID); err != nil {
			metrics.IncWorkflowRun(metrics.ModeFull, metrics.StatusFailed)
			return RunResult{}, err
		}
	}

	rec := buildExecutionRecord(queryID, st, start)
	if err := e.traces.CreateExecutionRecord(ctx, rec); err != nil {
		metrics.IncWorkflowRun(metrics.ModeFull, metrics.StatusFailed)
		return RunResult{}, fmt.Errorf("persist execution record: %w", err)
	}

	metrics.IncWorkflowRun(metrics.ModeFull, metrics.StatusCompleted)
	e.logger.Info("workflow completed",
		"query_id", queryID,
		"stages", len(st.Trace),
		"duration_ms", rec.TotalDurationMs,
	)

	e.deliverCompletionWebhook(ctx, rec)

	return RunResult{QueryID: queryID, Answer: st.FinalAnswer, Trace: st.Trace}, nil
}

func (e *Engine) runStage(ctx context.Context, sg stage, st *State, queryID uuid.UUID) error {
	started := time.Now()
	delta, err := sg.run(ctx, *st)
	metrics.ObserveStageDuration(sg.name, time.Since(started))

	if err != nil {
		metrics.IncStageExecution(sg.name, metrics.StatusFailed)
		e.logger.Error("stage failed",
			"query_id", queryID,
			"stage", sg.name,
			"error", err,
		)
		return err
	}

	st.apply(delta)
	metrics.IncStageExecution(sg.name, metrics.StatusCompleted)
	e.logger.Info("stage completed",
		"query_id", queryID,
		"stage", sg.name,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return nil
}
