// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/adiadia/research-engine/internal/ingestion"
	"github.com/adiadia/research-engine/internal/metrics"
	"github.com/adiadia/research-engine/internal/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxPDFUploadBytes = 32 << 20

type askRequest struct {
	Question string `json:"question"`
}

type uploadDocument struct {
	Title   string `json:"title"`
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

// sseFrame matches the live-stream wire shape consumed by clients:
// one JSON object per data line with a type discriminator and payload.
type sseFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type Deps struct {
	Engine    WorkflowRunner
	Documents DocumentStore
	Traces    TraceFinder
	Health    HealthChecker
	Logger    *slog.Logger
	Version   string
	Commit    string
	BuildDate string
}

func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics.Init()
	version := valueOrDefault(deps.Version, "dev")
	commit := valueOrDefault(deps.Commit, "none")
	buildDate := valueOrDefault(deps.BuildDate, "unknown")

	r := chi.NewRouter()
	r.Use(requestIDMiddleware())
	r.Use(requestLoggingMiddleware(logger))

	// ---------------- HEALTH ----------------

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("health check hit")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Health == nil {
			http.Error(w, "readiness checker not configured", http.StatusServiceUnavailable)
			return
		}
		if err := deps.Health.Check(r.Context()); err != nil {
			logger.Warn("readiness check failed", "error", err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// ---------------- METRICS ----------------

	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// ---------------- VERSION ----------------

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version":    version,
			"commit":     commit,
			"build_date": buildDate,
		})
	})

	r.Route("/research", func(research chi.Router) {

		// ---------------- FULL RUN ----------------

		research.Post("/ask", func(w http.ResponseWriter, r *http.Request) {
			question, err := decodeAskRequest(r)
			if err != nil {
				http.Error(w, "question is required", http.StatusBadRequest)
				return
			}

			result, err := deps.Engine.Run(r.Context(), question)
			if err != nil {
				logger.Error("workflow run failed", "error", err)
				http.Error(w, "workflow execution failed", http.StatusInternalServerError)
				return
			}

			writeJSON(w, http.StatusOK, result)
		})

		// ---------------- LIVE RUN (SSE) ----------------

		research.Get("/ask-live", func(w http.ResponseWriter, r *http.Request) {
			question := strings.TrimSpace(r.URL.Query().Get("question"))
			if question == "" {
				http.Error(w, "question is required", http.StatusBadRequest)
				return
			}

			flusher, ok := w.(http.Flusher)
			if !ok {
				http.Error(w, "streaming unsupported", http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.Header().Set("X-Accel-Buffering", "no")
			w.WriteHeader(http.StatusOK)
			flusher.Flush()

			for ev := range deps.Engine.Stream(r.Context(), question) {
				frame, err := encodeStreamEvent(ev)
				if err != nil {
					logger.Error("encode stream event failed", "error", err)
					return
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
					logger.Warn("sse write failed", "error", err)
					return
				}
				flusher.Flush()
			}
		})

		// ---------------- DOCUMENT UPLOAD ----------------

		research.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
			docs, err := decodeUploadRequest(r)
			if err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}

			stored, err := deps.Documents.InsertDocuments(r.Context(), docs)
			if err != nil {
				if errors.Is(err, domain.ErrMissingDocumentFields) {
					http.Error(w, "title and content are required", http.StatusBadRequest)
					return
				}
				logger.Error("upload documents failed", "count", len(docs), "error", err)
				http.Error(w, "failed to store documents", http.StatusInternalServerError)
				return
			}

			writeJSON(w, http.StatusOK, map[string]any{
				"documents": stored,
			})
		})

		// ---------------- PDF UPLOAD ----------------

		research.Post("/upload-pdf", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(maxPDFUploadBytes); err != nil {
				http.Error(w, "invalid multipart body", http.StatusBadRequest)
				return
			}

			file, header, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file is required", http.StatusBadRequest)
				return
			}
			defer file.Close()

			raw, err := io.ReadAll(file)
			if err != nil {
				logger.Error("read pdf upload failed", "filename", header.Filename, "error", err)
				http.Error(w, "failed to read file", http.StatusInternalServerError)
				return
			}

			content, err := ingestion.ExtractPDFText(raw)
			if err != nil {
				logger.Error("pdf extraction failed", "filename", header.Filename, "error", err)
				http.Error(w, "failed to parse pdf", http.StatusBadRequest)
				return
			}

			title := strings.TrimSpace(r.FormValue("title"))
			if title == "" {
				title = header.Filename
			}

			stored, err := deps.Documents.InsertDocument(r.Context(), domain.NewDocument{
				Title:   title,
				Topic:   strings.TrimSpace(r.FormValue("topic")),
				Content: content,
			})
			if err != nil {
				if errors.Is(err, domain.ErrMissingDocumentFields) {
					http.Error(w, "title and content are required", http.StatusBadRequest)
					return
				}
				logger.Error("store pdf document failed", "filename", header.Filename, "error", err)
				http.Error(w, "failed to store document", http.StatusInternalServerError)
				return
			}

			logger.Info("pdf ingested", "document_id", stored.ID, "filename", header.Filename)
			writeJSON(w, http.StatusOK, stored)
		})

		// ---------------- TRACE LOOKUP ----------------

		research.Get("/trace/{id}", func(w http.ResponseWriter, r *http.Request) {
			queryID, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				http.Error(w, "invalid query ID", http.StatusBadRequest)
				return
			}

			rec, err := deps.Traces.FindByQueryID(r.Context(), queryID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					http.Error(w, "trace not found", http.StatusNotFound)
					return
				}
				logger.Error("trace lookup failed", "query_id", queryID, "error", err)
				http.Error(w, "failed to load trace", http.StatusInternalServerError)
				return
			}

			writeJSON(w, http.StatusOK, rec)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeAskRequest(r *http.Request) (string, error) {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return "", domain.ErrEmptyQuestion
	}

	var req askRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return "", err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return "", errors.New("request body must contain exactly one JSON object")
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", domain.ErrEmptyQuestion
	}

	return question, nil
}

func decodeUploadRequest(r *http.Request) ([]domain.NewDocument, error) {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return nil, errors.New("empty request body")
	}

	var raw []uploadDocument
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("at least one document is required")
	}

	docs := make([]domain.NewDocument, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, domain.NewDocument{
			Title:   strings.TrimSpace(d.Title),
			Topic:   strings.TrimSpace(d.Topic),
			Content: d.Content,
		})
	}

	return docs, nil
}

func encodeStreamEvent(ev workflow.Event) ([]byte, error) {
	switch ev.Type {
	case workflow.EventTrace:
		return json.Marshal(sseFrame{Type: "trace", Payload: ev.Step})
	case workflow.EventComplete:
		return json.Marshal(sseFrame{Type: "complete", Payload: ev.Complete})
	case workflow.EventError:
		return json.Marshal(sseFrame{Type: "error", Payload: map[string]string{
			"message": "workflow execution failed",
		}})
	default:
		return nil, fmt.Errorf("unknown stream event type %q", ev.Type)
	}
}

func valueOrDefault(value, defaultValue string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	return trimmed
}
