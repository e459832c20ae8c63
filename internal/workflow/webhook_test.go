// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/google/uuid"
)

func TestDeliverCompletionWebhookSignsPayload(t *testing.T) {
	var gotBody []byte
	var gotSig string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get(webhookHeaderSig)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(Deps{
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		WebhookURL:    srv.URL,
		WebhookSecret: "shh",
	})

	rec := domain.ExecutionRecord{QueryID: uuid.New(), Question: "q", TotalDurationMs: 12}
	e.deliverCompletionWebhook(context.Background(), rec)

	if len(gotBody) == 0 {
		t.Fatal("expected webhook body")
	}
	mac := hmac.New(sha256.New, []byte("shh"))
	mac.Write(gotBody)
	if want := hex.EncodeToString(mac.Sum(nil)); gotSig != want {
		t.Fatalf("expected signature %s got %s", want, gotSig)
	}
}

func TestDeliverCompletionWebhookRetriesOnFailure(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(Deps{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		WebhookURL: srv.URL,
		HTTPClient: &http.Client{Timeout: time.Second},
	})

	e.deliverCompletionWebhook(context.Background(), domain.ExecutionRecord{QueryID: uuid.New()})

	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestDeliverCompletionWebhookDisabledWithoutURL(t *testing.T) {
	e := New(Deps{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	// No URL configured: must be a no-op.
	e.deliverCompletionWebhook(context.Background(), domain.ExecutionRecord{QueryID: uuid.New()})
}
