// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/adiadia/research-engine/internal/metrics"
	"github.com/google/uuid"
)

type EventType string

const (
	EventTrace    EventType = "trace"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Completion is the payload of the terminal complete event.
type Completion struct {
	QueryID     uuid.UUID `json:"queryId"`
	FinalAnswer string    `json:"finalAnswer"`
}

// Event is one streamed workflow update. Trace events carry the newest trace
// step of the stage that just finished; the stream ends with either one
// complete event or one error event, then the channel closes.
type Event struct {
	Type     EventType
	Step     domain.TraceStep
	Complete Completion
	Err      error
}

// Stream executes the same stage chain as Run, emitting each stage's trace
// delta as it lands. The channel is closed when the stream terminates.
//
// Cancellation: the in-flight stage finishes, but no later stage runs, no
// events are emitted and no record is persisted once ctx is done.
func (e *Engine) Stream(ctx context.Context, question string) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		queryID := uuid.New()
		start := time.Now()
		st := newState(question, start)

		e.logger.Info("workflow started", "query_id", queryID, "mode", metrics.ModeStream)

		for _, sg := range e.stages() {
			if ctx.Err() != nil {
				metrics.IncWorkflowRun(metrics.ModeStream, metrics.StatusCanceled)
				e.logger.Info("workflow canceled", "query_id", queryID, "stage", sg.name)
				return
			}

			traceLen := len(st.Trace)
			if err := e.runStage(ctx, sg, &st, queryID); err != nil {
				metrics.IncWorkflowRun(metrics.ModeStream, metrics.StatusFailed)
				e.emit(ctx, events, Event{Type: EventError, Err: err})
				return
			}

			for _, step := range st.Trace[traceLen:] {
				if !e.emit(ctx, events, Event{Type: EventTrace, Step: step}) {
					metrics.IncWorkflowRun(metrics.ModeStream, metrics.StatusCanceled)
					return
				}
			}
		}

		if ctx.Err() != nil {
			metrics.IncWorkflowRun(metrics.ModeStream, metrics.StatusCanceled)
			return
		}

		rec := buildExecutionRecord(queryID, st, start)
		if err := e.traces.CreateExecutionRecord(ctx, rec); err != nil {
			metrics.IncWorkflowRun(metrics.ModeStream, metrics.StatusFailed)
			e.emit(ctx, events, Event{Type: EventError, Err: fmt.Errorf("persist execution record: %w", err)})
			return
		}

		metrics.IncWorkflowRun(metrics.ModeStream, metrics.StatusCompleted)
		e.logger.Info("workflow completed",
			"query_id", queryID,
			"stages", len(st.Trace),
			"duration_ms", rec.TotalDurationMs,
		)

		e.deliverCompletionWebhook(ctx, rec)

		e.emit(ctx, events, Event{
			Type:     EventComplete,
			Complete: Completion{QueryID: queryID, FinalAnswer: st.FinalAnswer},
		})
	}()

	return events
}

// emit pushes an event unless the subscriber is gone. Reports delivery.
func (e *Engine) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
