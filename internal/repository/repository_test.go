// SPDX-License-Identifier: Apache-2.0

package repository

import (
	"io"
	"log/slog"
	"testing"
)

func TestNewDocumentRepositoryDefaultsLogger(t *testing.T) {
	repo := NewDocumentRepository(nil, nil)
	if repo.logger == nil {
		t.Fatal("expected default logger")
	}
}

func TestNewDocumentRepositoryKeepsLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewDocumentRepository(nil, logger)
	if repo.logger != logger {
		t.Fatal("expected logger reference to be preserved")
	}
}

func TestNewTraceRepositoryDefaultsLogger(t *testing.T) {
	repo := NewTraceRepository(nil, nil)
	if repo.logger == nil {
		t.Fatal("expected default logger")
	}
}

func TestNewTraceRepositoryKeepsLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewTraceRepository(nil, logger)
	if repo.logger != logger {
		t.Fatal("expected logger reference to be preserved")
	}
}
