// SPDX-License-Identifier: Apache-2.0

package lexical

import (
	"fmt"
	"strings"
)

// Keyword sets for the contradiction heuristic. This is a lexical scan, not
// a semantic analyzer; false positives and negatives are acceptable.
var (
	topicKeywords   = []string{"scale", "speed", "performance", "cost"}
	positiveMarkers = []string{"better", "good", "fast", "high"}
	negativeMarkers = []string{"worse", "poor", "slow", "low"}
)

// FindContradictions scans every summary pair (i < j) for opposing sentiment
// around a shared topical keyword. The check is directional: positive wording
// in the earlier summary, negative wording in the later one.
func FindContradictions(summaries []string) []string {
	contradictions := []string{}

	for i := 0; i < len(summaries); i++ {
		for j := i + 1; j < len(summaries); j++ {
			a := strings.ToLower(summaries[i])
			b := strings.ToLower(summaries[j])

			for _, kw := range topicKeywords {
				if !strings.Contains(a, kw) || !strings.Contains(b, kw) {
					continue
				}
				if containsAny(a, positiveMarkers) && containsAny(b, negativeMarkers) {
					contradictions = append(contradictions,
						fmt.Sprintf("Potential contradiction found regarding %s between summaries", kw))
				}
			}
		}
	}

	return contradictions
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
