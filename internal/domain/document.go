// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultTopic = "General"

// Document is one entry of the local research corpus. The workflow treats
// documents as read-only input; they are owned by the document store.
type Document struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoredDocument annotates a Document with its lexical relevance score for
// the current question. Built during ranking, never persisted.
type ScoredDocument struct {
	Document
	RelevanceScore float64 `json:"relevance_score"`
}

// NewDocument carries user-supplied fields for document ingestion.
type NewDocument struct {
	Title   string `json:"title"`
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

// Validate rejects documents missing required fields before they can reach
// the corpus.
func (d NewDocument) Validate() error {
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Content) == "" {
		return ErrMissingDocumentFields
	}
	return nil
}
