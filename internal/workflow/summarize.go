// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/adiadia/research-engine/internal/lexical"
)

const summarySentences = 3

// summarize extracts up to three question-relevant sentences per ranked
// document. A document with no keyword hits still yields its leading
// sentences (all scores tie at zero).
func (e *Engine) summarize(ctx context.Context, st State) (Delta, error) {
	keywords := lexical.QuestionKeywords(st.Question)

	summaries := make([]string, 0, len(st.RankedDocuments))
	for _, doc := range st.RankedDocuments {
		sentences := lexical.SplitSentences(doc.Content)
		top := lexical.TopSentences(sentences, keywords, summarySentences)
		summaries = append(summaries, strings.Join(top, " "))
	}

	return Delta{
		Summaries: summaries,
		Trace: []domain.TraceStep{
			traceStep(domain.StageSummarize, fmt.Sprintf("Extracted relevant context from %d docs", len(summaries))),
		},
	}, nil
}
