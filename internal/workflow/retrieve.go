// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/google/uuid"
)

// retrieve queries the document store once per sub-question, sequentially,
// and merges the results. Duplicates keep their first occurrence; zero
// matches is a valid outcome, not an error. The trace carries a count, not
// the documents.
func (e *Engine) retrieve(ctx context.Context, st State) (Delta, error) {
	seen := make(map[uuid.UUID]struct{})
	docs := make([]domain.Document, 0, len(st.SubQuestions)*e.searchLimit)

	for _, subQ := range st.SubQuestions {
		found, err := e.docs.SearchDocuments(ctx, subQ, e.searchLimit)
		if err != nil {
			return Delta{}, fmt.Errorf("retrieve: search %q: %w", subQ, err)
		}
		for _, doc := range found {
			if _, dup := seen[doc.ID]; dup {
				continue
			}
			seen[doc.ID] = struct{}{}
			docs = append(docs, doc)
		}
	}

	return Delta{
		RawDocuments: docs,
		Trace: []domain.TraceStep{
			traceStep(domain.StageRetrieve, fmt.Sprintf("Found %d unique docs", len(docs))),
		},
	}, nil
}
