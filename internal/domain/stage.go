// SPDX-License-Identifier: Apache-2.0

package domain

type StageName string

// The fixed linear stage order of the research pipeline.
const (
	StageDecompose  StageName = "Decompose"
	StageRetrieve   StageName = "Retrieve"
	StageRank       StageName = "Rank"
	StageSummarize  StageName = "Summarize"
	StageCrossCheck StageName = "CrossCheck"
	StageSynthesize StageName = "Synthesize"
)
