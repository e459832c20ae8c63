// SPDX-License-Identifier: Apache-2.0

package lexical

import (
	"sort"
	"strings"
)

const minKeywordLen = 4

// SplitSentences splits content on '.', '!' and '?' boundaries. Text after
// the last terminator is dropped when at least one terminated sentence
// exists; content with no terminator at all is returned as one sentence.
func SplitSentences(content string) []string {
	var sentences []string
	start := 0
	for i, r := range content {
		switch r {
		case '.', '!', '?':
			s := strings.TrimSpace(content[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if len(sentences) == 0 {
		return []string{content}
	}
	return sentences
}

// QuestionKeywords lowercases and whitespace-splits the question, keeping
// only tokens longer than three characters. A cheap stopword filter.
func QuestionKeywords(question string) []string {
	fields := strings.Fields(strings.ToLower(question))
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= minKeywordLen {
			keywords = append(keywords, f)
		}
	}
	return keywords
}

// TopSentences returns up to max sentences ranked by how many keywords each
// contains (case-insensitive substring match). Ties keep original order.
func TopSentences(sentences []string, keywords []string, max int) []string {
	type scored struct {
		text  string
		score int
	}

	ranked := make([]scored, 0, len(sentences))
	for _, s := range sentences {
		lower := strings.ToLower(s)
		count := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		ranked = append(ranked, scored{text: s, score: count})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > max {
		ranked = ranked[:max]
	}

	out := make([]string, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.text)
	}
	return out
}
