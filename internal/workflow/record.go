// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"time"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/google/uuid"
)

// buildExecutionRecord assembles the persisted trace from a terminal state.
// Called exactly once per successful run, in both execution modes.
func buildExecutionRecord(queryID uuid.UUID, st State, start time.Time) domain.ExecutionRecord {
	return domain.ExecutionRecord{
		QueryID:         queryID,
		Question:        st.Question,
		Steps:           st.Trace,
		FinalAnswer:     st.FinalAnswer,
		TotalDurationMs: time.Since(start).Milliseconds(),
	}
}
