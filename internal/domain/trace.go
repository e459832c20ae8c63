// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"time"

	"github.com/google/uuid"
)

// TraceStep records one stage execution for observability and replay.
// Immutable once created. Output holds a small stage-specific payload
// (counts, notices), never the documents themselves.
type TraceStep struct {
	Node      StageName `json:"node"`
	Output    any       `json:"output"`
	Timestamp time.Time `json:"timestamp"`
}

// ExecutionRecord is the persisted summary of one completed workflow run.
// Records are written exactly once and never updated.
type ExecutionRecord struct {
	QueryID         uuid.UUID   `json:"query_id"`
	Question        string      `json:"question"`
	Steps           []TraceStep `json:"steps"`
	FinalAnswer     string      `json:"final_answer"`
	TotalDurationMs int64       `json:"total_duration_ms"`
	CreatedAt       time.Time   `json:"created_at"`
}
