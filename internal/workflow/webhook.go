// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adiadia/research-engine/internal/domain"
)

const (
	webhookRetryAttempts = 3
	webhookRetryBase     = 300 * time.Millisecond
	webhookHeaderSig     = "X-Signature"
)

type completionWebhookPayload struct {
	QueryID         uuid.UUID `json:"query_id"`
	Question        string    `json:"question"`
	TotalDurationMs int64     `json:"total_duration_ms"`
	FinishedAt      time.Time `json:"finished_at"`
}

// deliverCompletionWebhook notifies the configured endpoint that a run has
// been persisted. Delivery is best-effort: failures are logged, never
// surfaced to the caller.
func (e *Engine) deliverCompletionWebhook(ctx context.Context, rec domain.ExecutionRecord) {
	if strings.TrimSpace(e.webhookURL) == "" || e.httpClient == nil {
		return
	}

	body, err := json.Marshal(completionWebhookPayload{
		QueryID:         rec.QueryID,
		Question:        rec.Question,
		TotalDurationMs: rec.TotalDurationMs,
		FinishedAt:      time.Now(),
	})
	if err != nil {
		e.logger.Error("webhook payload marshal failed",
			"query_id", rec.QueryID,
			"error", err,
		)
		return
	}

	signature := signWebhookPayload(e.webhookSecret, body)

	var lastErr error
	for attempt := 1; attempt <= webhookRetryAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.webhookURL, bytes.NewReader(body))
		if err != nil {
			lastErr = err
			break
		}
		req.Header.Set("Content-Type", "application/json")
		if signature != "" {
			req.Header.Set(webhookHeaderSig, signature)
		}

		resp, err := e.httpClient.Do(req)
		if err != nil {
			lastErr = err
			e.logger.Warn("webhook failure",
				"query_id", rec.QueryID,
				"attempt", attempt,
				"error", err,
			)
		} else {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
				e.logger.Info("webhook delivered",
					"query_id", rec.QueryID,
					"attempt", attempt,
					"response_status", resp.StatusCode,
				)
				return
			}

			lastErr = fmt.Errorf("non-2xx response: %d", resp.StatusCode)
			e.logger.Warn("webhook failure",
				"query_id", rec.QueryID,
				"attempt", attempt,
				"response_status", resp.StatusCode,
			)
		}

		if attempt < webhookRetryAttempts {
			wait := webhookRetryBase * time.Duration(1<<(attempt-1))
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}

	if lastErr != nil {
		e.logger.Error("webhook retries exhausted",
			"query_id", rec.QueryID,
			"error", lastErr,
		)
	}
}

func signWebhookPayload(secret string, payload []byte) string {
	if strings.TrimSpace(secret) == "" {
		return ""
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
