// SPDX-License-Identifier: Apache-2.0

package ingestion

import "testing"

func TestExtractPDFTextRejectsNonPDF(t *testing.T) {
	if _, err := ExtractPDFText([]byte("plain text, not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf input")
	}
}

func TestExtractPDFTextRejectsEmptyInput(t *testing.T) {
	if _, err := ExtractPDFText(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}
