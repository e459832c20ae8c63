// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/adiadia/research-engine/internal/llm"
)

// RefusalNoContext is the fixed answer returned when retrieval produced no
// usable context. It is emitted without calling the model, so an empty
// corpus can never lead to ungrounded generation.
const RefusalNoContext = "I apologize, but I do not have any relevant information in my local database to answer your question. As a specialized research assistant, I am restricted to using only provided documentation."

const synthesizeSystem = "You are a strict documentation-bound research assistant. Silence means you do not know."

// synthesize builds the grounded report. Empty or whitespace-only summaries
// trigger the hard short-circuit above; otherwise the model is invoked once
// with the question, summaries and contradiction list.
func (e *Engine) synthesize(ctx context.Context, st State) (Delta, error) {
	if !hasContext(st.Summaries) {
		return Delta{
			FinalAnswer: RefusalNoContext,
			Trace: []domain.TraceStep{
				traceStep(domain.StageSynthesize, "Short-circuited: No context found"),
			},
		}, nil
	}

	answer, err := e.model.Invoke(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: synthesizeSystem},
		{Role: llm.RoleUser, Content: synthesisPrompt(st.Question, st.Summaries, st.Contradictions)},
	})
	if err != nil {
		return Delta{}, fmt.Errorf("synthesize: %w", err)
	}

	return Delta{
		FinalAnswer: answer,
		Trace: []domain.TraceStep{
			traceStep(domain.StageSynthesize, "Consolidated report generated from context"),
		},
	}, nil
}

func hasContext(summaries []string) bool {
	for _, s := range summaries {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

func synthesisPrompt(question string, summaries []string, contradictions []string) string {
	contradictionList := strings.Join(contradictions, ", ")
	if contradictionList == "" {
		contradictionList = "None"
	}

	return fmt.Sprintf(`User Question: %s
Summaries of found docs: %s
Contradictions found: %s

CRITICAL INSTRUCTION:
- You are a localized research agent.
- You MUST ONLY use the provided summaries to formulate your answer.
- If the answer to the User Question is NOT contained within the summaries, you MUST state: "Based on the provided documentation, I cannot find an answer to this query."
- DO NOT use your internal training data or general knowledge (e.g., about celebrities, historical figures, or general facts) if they are not mentioned in the summaries.
- If there are contradictions in the summaries, explain them.
- Provide a professional, consolidated report.`,
		question,
		strings.Join(summaries, "\n\n"),
		contradictionList,
	)
}
