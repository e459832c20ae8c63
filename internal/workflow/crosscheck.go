// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/adiadia/research-engine/internal/lexical"
)

// crossCheck runs the pairwise contradiction scan over the summaries.
func (e *Engine) crossCheck(ctx context.Context, st State) (Delta, error) {
	contradictions := lexical.FindContradictions(st.Summaries)

	return Delta{
		Contradictions: contradictions,
		Trace:          []domain.TraceStep{traceStep(domain.StageCrossCheck, contradictions)},
	}, nil
}
