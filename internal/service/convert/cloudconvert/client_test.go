package cloudconvert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"docmorph/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeAPI implements just enough of the job protocol for the client: job
// creation, form upload, polling and result download.
type fakeAPI struct {
	t           *testing.T
	server      *httptest.Server
	uploads     atomic.Int32
	polls       atomic.Int32
	pollsNeeded int32
	resultBody  string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{t: t, pollsNeeded: 2, resultBody: "converted bytes"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/jobs", f.handleCreate)
	mux.HandleFunc("POST /upload", f.handleUpload)
	mux.HandleFunc("GET /v2/jobs/job-1", f.handlePoll)
	mux.HandleFunc("GET /result", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, f.resultBody)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
		f.t.Errorf("Authorization = %q, want bearer test-key", got)
	}
	var payload struct {
		Tasks map[string]map[string]any `json:"tasks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		f.t.Errorf("decode job payload: %v", err)
	}
	if payload.Tasks["convert-file"]["output_format"] != "pdf" {
		f.t.Errorf("output_format = %v, want pdf", payload.Tasks["convert-file"]["output_format"])
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	fmt.Fprintf(w, `{"data":{"id":"job-1","status":"waiting","tasks":[
		{"id":"t1","name":"import-file","operation":"import/upload","status":"waiting",
		 "result":{"form":{"url":"%s/upload","parameters":{"signature":"abc"}}}},
		{"id":"t2","name":"convert-file","operation":"convert","status":"waiting"},
		{"id":"t3","name":"export-result","operation":"export/url","status":"waiting"}
	]}}`, f.server.URL)
}

func (f *fakeAPI) handleUpload(w http.ResponseWriter, r *http.Request) {
	f.uploads.Add(1)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		f.t.Errorf("parse upload: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if got := r.FormValue("signature"); got != "abc" {
		f.t.Errorf("form signature = %q, want abc", got)
	}
	if _, _, err := r.FormFile("file"); err != nil {
		f.t.Errorf("upload missing file part: %v", err)
	}
	w.WriteHeader(http.StatusCreated)
}

func (f *fakeAPI) handlePoll(w http.ResponseWriter, r *http.Request) {
	n := f.polls.Add(1)
	w.Header().Set("Content-Type", "application/json")
	if n < f.pollsNeeded {
		fmt.Fprint(w, `{"data":{"id":"job-1","status":"processing","tasks":[]}}`)
		return
	}
	fmt.Fprintf(w, `{"data":{"id":"job-1","status":"finished","tasks":[
		{"id":"t3","name":"export-result","operation":"export/url","status":"finished",
		 "result":{"files":[{"filename":"out.pdf","url":"%s/result"}]}}
	]}}`, f.server.URL)
}

func (f *fakeAPI) client(t *testing.T) *Client {
	return New(Config{
		APIKey:       "test-key",
		BaseURL:      f.server.URL,
		PollInterval: 5 * time.Millisecond,
		ScratchDir:   t.TempDir(),
		Logger:       discardLogger(),
	})
}

func TestConvertRunsFullJobLifecycle(t *testing.T) {
	api := newFakeAPI(t)
	client := api.client(t)
	input := writeInput(t, "report.docx", "docx bytes")

	outPath, err := client.Convert(context.Background(), input, "pdf", "report_converted.pdf")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if filepath.Base(outPath) != "report_converted.pdf" {
		t.Errorf("output name = %q, want report_converted.pdf", filepath.Base(outPath))
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "converted bytes" {
		t.Errorf("output content = %q, want converted bytes", data)
	}
	if got := api.uploads.Load(); got != 1 {
		t.Errorf("uploads = %d, want 1", got)
	}
	if got := api.polls.Load(); got < 2 {
		t.Errorf("polls = %d, want at least 2", got)
	}
}

func TestConvertReportsFailedTask(t *testing.T) {
	api := newFakeAPI(t)
	// Swap in a poll handler that reports a failed convert task; job creation
	// and upload behave as usual.
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/jobs", api.handleCreate)
	mux.HandleFunc("POST /upload", api.handleUpload)
	mux.HandleFunc("GET /v2/jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"id":"job-1","status":"error","tasks":[
			{"id":"t2","name":"convert-file","operation":"convert","status":"error","message":"corrupt input"}
		]}}`)
	})
	api.server.Config.Handler = mux

	client := api.client(t)
	input := writeInput(t, "broken.docx", "x")

	_, err := client.Convert(context.Background(), input, "pdf", "broken_converted.pdf")
	var convErr *domain.ExternalConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("Convert() error = %v, want *domain.ExternalConversionError", err)
	}
	if convErr.Message != "corrupt input" {
		t.Errorf("error message = %q, want corrupt input", convErr.Message)
	}
}

func TestConvertAuthFailureIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"invalid token"}`)
	}))
	t.Cleanup(server.Close)

	client := New(Config{APIKey: "bad", BaseURL: server.URL, ScratchDir: t.TempDir(), Logger: discardLogger()})
	input := writeInput(t, "a.docx", "x")

	_, err := client.Convert(context.Background(), input, "pdf", "a_converted.pdf")
	var authErr *domain.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Convert() error = %v, want *domain.AuthenticationError", err)
	}
	if !domain.IsPermanent(err) {
		t.Error("authentication failure should not be retryable")
	}
}

func TestConvertRateLimitIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client := New(Config{APIKey: "k", BaseURL: server.URL, ScratchDir: t.TempDir(), Logger: discardLogger()})
	input := writeInput(t, "a.docx", "x")

	_, err := client.Convert(context.Background(), input, "pdf", "a_converted.pdf")
	var rateErr *domain.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Convert() error = %v, want *domain.RateLimitError", err)
	}
	if domain.IsPermanent(err) {
		t.Error("rate limiting should be retryable")
	}
}

func TestConvertPollingHonorsContext(t *testing.T) {
	api := newFakeAPI(t)
	api.pollsNeeded = 1 << 30 // never finishes
	client := api.client(t)
	input := writeInput(t, "a.docx", "x")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Convert(ctx, input, "pdf", "a_converted.pdf")
	if err == nil {
		t.Fatal("Convert() should fail once the context deadline passes")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Convert() error = %v, want context deadline", err)
	}
}

func TestHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/users/me" {
			t.Errorf("path = %q, want /v2/users/me", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":{"id":1}}`)
	}))
	t.Cleanup(server.Close)

	client := New(Config{APIKey: "k", BaseURL: server.URL, Logger: discardLogger()})
	if err := client.Healthy(context.Background()); err != nil {
		t.Errorf("Healthy() error = %v", err)
	}

	down := New(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1", Logger: discardLogger()})
	if err := down.Healthy(context.Background()); err == nil {
		t.Error("Healthy() should fail against an unreachable endpoint")
	}
}
