// SPDX-License-Identifier: Apache-2.0

// Package ingestion turns uploaded files into corpus-ready document text.
package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

var ErrNoTextContent = errors.New("pdf has no extractable text")

// ExtractPDFText pulls the plain-text layer out of an in-memory PDF.
// Scanned PDFs without a text layer yield ErrNoTextContent.
func ExtractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", ErrNoTextContent
	}
	return text, nil
}
