// SPDX-License-Identifier: Apache-2.0

package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adiadia/research-engine/internal/domain"
	"github.com/adiadia/research-engine/internal/workflow"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockRunner struct {
	runResult    workflow.RunResult
	runErr       error
	runQuestion  string
	streamEvents []workflow.Event
}

func (m *mockRunner) Run(ctx context.Context, question string) (workflow.RunResult, error) {
	m.runQuestion = question
	return m.runResult, m.runErr
}

func (m *mockRunner) Stream(ctx context.Context, question string) <-chan workflow.Event {
	out := make(chan workflow.Event, len(m.streamEvents))
	for _, ev := range m.streamEvents {
		out <- ev
	}
	close(out)
	return out
}

type mockDocumentStore struct {
	insertOne   domain.Document
	insertErr   error
	insertMany  []domain.Document
	gotSingle   *domain.NewDocument
	gotBatch    []domain.NewDocument
	batchCalled bool
}

func (m *mockDocumentStore) InsertDocument(ctx context.Context, doc domain.NewDocument) (domain.Document, error) {
	m.gotSingle = &doc
	return m.insertOne, m.insertErr
}

func (m *mockDocumentStore) InsertDocuments(ctx context.Context, docs []domain.NewDocument) ([]domain.Document, error) {
	m.batchCalled = true
	m.gotBatch = docs
	return m.insertMany, m.insertErr
}

type mockTraceFinder struct {
	rec domain.ExecutionRecord
	err error
}

func (m *mockTraceFinder) FindByQueryID(ctx context.Context, queryID uuid.UUID) (domain.ExecutionRecord, error) {
	return m.rec, m.err
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Check(ctx context.Context) error {
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRouter_Ask(t *testing.T) {
	queryID := uuid.New()
	runner := &mockRunner{runResult: workflow.RunResult{
		QueryID: queryID,
		Answer:  "X is fast while Y is slow.",
		Trace:   []domain.TraceStep{{Node: domain.StageDecompose}},
	}}
	router := NewRouter(Deps{Engine: runner, Logger: discardLogger()})

	body := bytes.NewBufferString(`{"question":"Compare X and Y"}`)
	req := httptest.NewRequest(http.MethodPost, "/research/ask", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if runner.runQuestion != "Compare X and Y" {
		t.Fatalf("expected trimmed question, got %q", runner.runQuestion)
	}

	var resp workflow.RunResult
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.QueryID != queryID {
		t.Fatalf("expected query_id %s got %s", queryID, resp.QueryID)
	}
	if resp.Answer != "X is fast while Y is slow." {
		t.Fatalf("unexpected answer %q", resp.Answer)
	}
}

func TestRouter_AskRejectsEmptyQuestion(t *testing.T) {
	router := NewRouter(Deps{Engine: &mockRunner{}, Logger: discardLogger()})

	for _, body := range []string{`{}`, `{"question":"   "}`, ``} {
		req := httptest.NewRequest(http.MethodPost, "/research/ask", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected status 400 got %d", body, rec.Code)
		}
	}
}

func TestRouter_AskRejectsUnknownFields(t *testing.T) {
	router := NewRouter(Deps{Engine: &mockRunner{}, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodPost, "/research/ask", strings.NewReader(`{"question":"q","extra":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestRouter_AskRunError(t *testing.T) {
	runner := &mockRunner{runErr: errors.New("model unavailable")}
	router := NewRouter(Deps{Engine: runner, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodPost, "/research/ask", strings.NewReader(`{"question":"q"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500 got %d", rec.Code)
	}
}

func TestRouter_AskLiveStreamsFrames(t *testing.T) {
	queryID := uuid.New()
	runner := &mockRunner{streamEvents: []workflow.Event{
		{Type: workflow.EventTrace, Step: domain.TraceStep{Node: domain.StageDecompose, Output: []string{"sub a"}}},
		{Type: workflow.EventTrace, Step: domain.TraceStep{Node: domain.StageRetrieve, Output: "Found 1 unique docs"}},
		{Type: workflow.EventComplete, Complete: workflow.Completion{QueryID: queryID, FinalAnswer: "done"}},
	}}
	router := NewRouter(Deps{Engine: runner, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/research/ask-live?question=Compare+X+and+Y", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event-stream content type, got %q", ct)
	}

	var frames []sseFrame
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame sseFrame
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		frames = append(frames, frame)
	}

	if len(frames) != 3 {
		t.Fatalf("expected 3 frames got %d", len(frames))
	}
	if frames[0].Type != "trace" || frames[1].Type != "trace" {
		t.Fatalf("expected leading trace frames, got %s %s", frames[0].Type, frames[1].Type)
	}
	if frames[2].Type != "complete" {
		t.Fatalf("expected terminal complete frame, got %s", frames[2].Type)
	}

	payload, ok := frames[2].Payload.(map[string]any)
	if !ok {
		t.Fatalf("expected object payload, got %T", frames[2].Payload)
	}
	if payload["queryId"] != queryID.String() {
		t.Fatalf("expected queryId %s got %v", queryID, payload["queryId"])
	}
	if payload["finalAnswer"] != "done" {
		t.Fatalf("expected finalAnswer, got %v", payload["finalAnswer"])
	}
}

func TestRouter_AskLiveRequiresQuestion(t *testing.T) {
	router := NewRouter(Deps{Engine: &mockRunner{}, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/research/ask-live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestRouter_AskLiveEmitsErrorFrame(t *testing.T) {
	runner := &mockRunner{streamEvents: []workflow.Event{
		{Type: workflow.EventTrace, Step: domain.TraceStep{Node: domain.StageDecompose}},
		{Type: workflow.EventError, Err: errors.New("store down")},
	}}
	router := NewRouter(Deps{Engine: runner, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/research/ask-live?question=q", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `"type":"error"`) {
		t.Fatalf("expected error frame in body: %s", body)
	}
	if strings.Contains(body, "store down") {
		t.Fatalf("internal error detail leaked to client: %s", body)
	}
}

func TestRouter_Upload(t *testing.T) {
	store := &mockDocumentStore{insertMany: []domain.Document{
		{ID: uuid.New(), Title: "doc a", Topic: "General", Content: "alpha"},
		{ID: uuid.New(), Title: "doc b", Topic: "Infra", Content: "beta"},
	}}
	router := NewRouter(Deps{Engine: &mockRunner{}, Documents: store, Logger: discardLogger()})

	body := bytes.NewBufferString(`[
		{"title":"doc a","content":"alpha"},
		{"title":"doc b","topic":"Infra","content":"beta"}
	]`)
	req := httptest.NewRequest(http.MethodPost, "/research/upload", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if !store.batchCalled {
		t.Fatal("expected batch insert to be called")
	}
	if len(store.gotBatch) != 2 {
		t.Fatalf("expected 2 documents got %d", len(store.gotBatch))
	}
	if store.gotBatch[1].Topic != "Infra" {
		t.Fatalf("expected topic to pass through, got %q", store.gotBatch[1].Topic)
	}
}

func TestRouter_UploadValidationError(t *testing.T) {
	store := &mockDocumentStore{insertErr: domain.ErrMissingDocumentFields}
	router := NewRouter(Deps{Engine: &mockRunner{}, Documents: store, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodPost, "/research/upload", strings.NewReader(`[{"title":"","content":"x"}]`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestRouter_UploadRejectsEmptyArray(t *testing.T) {
	router := NewRouter(Deps{Engine: &mockRunner{}, Documents: &mockDocumentStore{}, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodPost, "/research/upload", strings.NewReader(`[]`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestRouter_UploadPDFRequiresFile(t *testing.T) {
	router := NewRouter(Deps{Engine: &mockRunner{}, Documents: &mockDocumentStore{}, Logger: discardLogger()})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "no file attached")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/research/upload-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestRouter_UploadPDFRejectsUnparseableFile(t *testing.T) {
	store := &mockDocumentStore{}
	router := NewRouter(Deps{Engine: &mockRunner{}, Documents: store, Logger: discardLogger()})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write([]byte("this is not a pdf"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/research/upload-pdf", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	if store.gotSingle != nil {
		t.Fatal("expected no insert for unparseable file")
	}
}

func TestRouter_GetTrace(t *testing.T) {
	queryID := uuid.New()
	finder := &mockTraceFinder{rec: domain.ExecutionRecord{
		QueryID:     queryID,
		Question:    "Compare X and Y",
		FinalAnswer: "X wins",
		Steps:       []domain.TraceStep{{Node: domain.StageDecompose}},
	}}
	router := NewRouter(Deps{Engine: &mockRunner{}, Traces: finder, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/research/trace/"+queryID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp domain.ExecutionRecord
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.QueryID != queryID {
		t.Fatalf("expected query id %s got %s", queryID, resp.QueryID)
	}
	if len(resp.Steps) != 1 {
		t.Fatalf("expected 1 step got %d", len(resp.Steps))
	}
}

func TestRouter_GetTraceNotFound(t *testing.T) {
	finder := &mockTraceFinder{err: pgx.ErrNoRows}
	router := NewRouter(Deps{Engine: &mockRunner{}, Traces: finder, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/research/trace/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}

func TestRouter_GetTraceInvalidID(t *testing.T) {
	router := NewRouter(Deps{Engine: &mockRunner{}, Traces: &mockTraceFinder{}, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/research/trace/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
}

func TestRouter_HealthzUnauthenticated(t *testing.T) {
	router := NewRouter(Deps{Engine: &mockRunner{}, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
}

func TestRouter_ReadyzReflectsSchemaCheck(t *testing.T) {
	router := NewRouter(Deps{
		Engine: &mockRunner{},
		Health: &mockHealthChecker{},
		Logger: discardLogger(),
	})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	failing := NewRouter(Deps{
		Engine: &mockRunner{},
		Health: &mockHealthChecker{err: errors.New("tables missing")},
		Logger: discardLogger(),
	})
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 got %d", rec.Code)
	}
}

func TestRouter_Version(t *testing.T) {
	router := NewRouter(Deps{
		Engine:  &mockRunner{},
		Logger:  discardLogger(),
		Version: "1.2.3",
		Commit:  "abc123",
	})

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Fatalf("expected version 1.2.3 got %s", resp["version"])
	}
	if resp["commit"] != "abc123" {
		t.Fatalf("expected commit abc123 got %s", resp["commit"])
	}
	if resp["build_date"] != "unknown" {
		t.Fatalf("expected default build_date got %s", resp["build_date"])
	}
}

func TestRouter_MetricsExposed(t *testing.T) {
	router := NewRouter(Deps{Engine: &mockRunner{}, Logger: discardLogger()})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "workflow_runs_total") {
		t.Fatal("expected workflow metrics in exposition")
	}
}
