// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/adiadia/research-engine/internal/llm"
)

const decomposeInstruction = "You are a Question Splitter. Break the user question into 2-3 specific sub-questions for document retrieval. Return them as a semicolon-separated list. Only return the list."

// decompose asks the model to split the question into sub-questions. A
// single-segment reply is valid; a reply with no usable segments falls back
// to the original question so the sub-question list is never empty.
func (e *Engine) decompose(ctx context.Context, st State) (Delta, error) {
	response, err := e.model.Invoke(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: decomposeInstruction},
		{Role: llm.RoleUser, Content: st.Question},
	})
	if err != nil {
		return Delta{}, fmt.Errorf("decompose: %w", err)
	}

	parts := strings.Split(response, ";")
	subQuestions := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			subQuestions = append(subQuestions, p)
		}
	}
	if len(subQuestions) == 0 {
		subQuestions = []string{strings.TrimSpace(st.Question)}
	}

	return Delta{
		SubQuestions: subQuestions,
		Trace:        []domain.TraceStep{traceStep(domain.StageDecompose, subQuestions)},
	}, nil
}
