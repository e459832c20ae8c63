// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"time"

	"github.com/adiadia/research-engine/internal/domain"
)

// State is the accumulating snapshot threaded through the stage chain. Each
// workflow run owns exactly one State; stages receive it by value and return
// a Delta, so observers between stages always see a consistent snapshot.
type State struct {
	Question        string
	SubQuestions    []string
	RawDocuments    []domain.Document
	RankedDocuments []domain.ScoredDocument
	Summaries       []string
	Contradictions  []string
	FinalAnswer     string
	Trace           []domain.TraceStep
	StartTime       time.Time
}

// Delta is one stage's partial update. Nil slices and the empty answer mean
// "unchanged"; stages set only the fields they produce.
type Delta struct {
	SubQuestions    []string
	RawDocuments    []domain.Document
	RankedDocuments []domain.ScoredDocument
	Summaries       []string
	Contradictions  []string
	FinalAnswer     string
	Trace           []domain.TraceStep
}

func newState(question string, start time.Time) State {
	return State{
		Question:  question,
		StartTime: start,
	}
}

// apply folds a stage delta into the state. The merge policy is explicit and
// per field: every field replaces its previous value, except Trace, which
// only ever concatenates. Trace length is therefore monotonic across a run.
func (s *State) apply(d Delta) {
	if d.SubQuestions != nil {
		s.SubQuestions = d.SubQuestions
	}
	if d.RawDocuments != nil {
		s.RawDocuments = d.RawDocuments
	}
	if d.RankedDocuments != nil {
		s.RankedDocuments = d.RankedDocuments
	}
	if d.Summaries != nil {
		s.Summaries = d.Summaries
	}
	if d.Contradictions != nil {
		s.Contradictions = d.Contradictions
	}
	if d.FinalAnswer != "" {
		s.FinalAnswer = d.FinalAnswer
	}
	s.Trace = append(s.Trace, d.Trace...)
}

func traceStep(node domain.StageName, output any) domain.TraceStep {
	return domain.TraceStep{
		Node:      node,
		Output:    output,
		Timestamp: time.Now(),
	}
}
