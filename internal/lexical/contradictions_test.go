// SPDX-License-Identifier: Apache-2.0

package lexical

import (
	"strings"
	"testing"
)

func TestFindContradictionsDirectional(t *testing.T) {
	got := FindContradictions([]string{
		"X is better at scale",
		"Y is worse at scale",
	})
	if len(got) != 1 {
		t.Fatalf("expected exactly one contradiction, got %v", got)
	}
	if !strings.Contains(got[0], "scale") {
		t.Fatalf("expected notice to mention scale, got %q", got[0])
	}
}

func TestFindContradictionsReversedSentimentIsIgnored(t *testing.T) {
	got := FindContradictions([]string{
		"X is worse at scale",
		"Y is better at scale",
	})
	if len(got) != 0 {
		t.Fatalf("expected no contradictions for reversed direction, got %v", got)
	}
}

func TestFindContradictionsRequiresSharedKeyword(t *testing.T) {
	got := FindContradictions([]string{
		"X is better at scale",
		"Y has worse latency",
	})
	if len(got) != 0 {
		t.Fatalf("expected no contradictions without a shared keyword, got %v", got)
	}
}

func TestFindContradictionsMultipleKeywords(t *testing.T) {
	got := FindContradictions([]string{
		"A offers good speed and high performance",
		"B shows slow speed and poor performance",
	})
	if len(got) != 2 {
		t.Fatalf("expected one notice per shared keyword, got %v", got)
	}
}

func TestFindContradictionsEmptyInput(t *testing.T) {
	if got := FindContradictions(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if got := FindContradictions([]string{"only one summary about cost"}); len(got) != 0 {
		t.Fatalf("expected empty result for single summary, got %v", got)
	}
}
