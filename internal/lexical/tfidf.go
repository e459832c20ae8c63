// SPDX-License-Identifier: Apache-2.0

// Package lexical implements the deterministic text heuristics used by the
// research pipeline: TF-IDF relevance scoring over a small ad-hoc corpus,
// extractive sentence selection, and the pairwise contradiction scan.
package lexical

import (
	"math"
	"strings"
	"unicode"
)

// TFIDF scores terms against a small in-memory corpus. Documents are added
// once, then looked up by the index they were added at. Term frequency is
// the raw count of the term in the document; inverse document frequency is
// log-scaled across the corpus.
type TFIDF struct {
	docs []map[string]int
	df   map[string]int
}

func NewTFIDF() *TFIDF {
	return &TFIDF{df: make(map[string]int)}
}

// AddDocument tokenizes content and appends it as the next corpus entry.
func (t *TFIDF) AddDocument(content string) {
	counts := make(map[string]int)
	for _, tok := range Tokenize(content) {
		counts[tok]++
	}
	t.docs = append(t.docs, counts)
	for tok := range counts {
		t.df[tok]++
	}
}

// Len reports the number of corpus entries.
func (t *TFIDF) Len() int {
	return len(t.docs)
}

// Score returns the TF-IDF weight of term within the document at docIndex.
// Unknown terms and out-of-range indexes score zero.
func (t *TFIDF) Score(term string, docIndex int) float64 {
	if docIndex < 0 || docIndex >= len(t.docs) {
		return 0
	}
	toks := Tokenize(term)
	if len(toks) == 0 {
		return 0
	}
	tf := t.docs[docIndex][toks[0]]
	if tf == 0 {
		return 0
	}
	idf := math.Log(float64(len(t.docs))/float64(1+t.df[toks[0]])) + 1
	return float64(tf) * idf
}

// Tokenize lowercases s and splits it on every non-letter, non-digit rune.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
