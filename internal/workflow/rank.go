// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/adiadia/research-engine/internal/lexical"
)

// rank scores every retrieved document against the question keywords using a
// TF-IDF model built over the retrieved set itself, then keeps the top N.
// With no documents it short-circuits without touching the scorer.
func (e *Engine) rank(ctx context.Context, st State) (Delta, error) {
	if len(st.RawDocuments) == 0 {
		return Delta{
			RankedDocuments: []domain.ScoredDocument{},
			Trace:           []domain.TraceStep{traceStep(domain.StageRank, "No docs to rank")},
		}, nil
	}

	model := lexical.NewTFIDF()
	for _, doc := range st.RawDocuments {
		model.AddDocument(doc.Content)
	}

	keywords := strings.Fields(st.Question)
	scored := make([]domain.ScoredDocument, 0, len(st.RawDocuments))
	for i, doc := range st.RawDocuments {
		var score float64
		for _, kw := range keywords {
			score += model.Score(kw, i)
		}
		scored = append(scored, domain.ScoredDocument{Document: doc, RelevanceScore: score})
	}

	// Stable sort: ties keep retrieval order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	if len(scored) > e.topN {
		scored = scored[:e.topN]
	}

	return Delta{
		RankedDocuments: scored,
		Trace: []domain.TraceStep{
			traceStep(domain.StageRank, fmt.Sprintf("Ranked top %d docs", len(scored))),
		},
	}, nil
}
