package convert

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docmorph/internal/domain"
	"docmorph/internal/domain/models"
	"docmorph/internal/formats"
)

type mockStrategy struct {
	calls  int
	result *models.ConversionResult
	err    error

	// captured from the last call
	lastInputPath string
	inputContent  string
}

func (m *mockStrategy) Name() string { return "mock" }

func (m *mockStrategy) Execute(ctx context.Context, req *models.ConversionRequest) (*models.ConversionResult, error) {
	m.calls++
	m.lastInputPath = req.InputPath
	if data, err := os.ReadFile(req.InputPath); err == nil {
		m.inputContent = string(data)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func newTestDispatcher(t *testing.T, mock *mockStrategy) (*Dispatcher, string) {
	t.Helper()
	registry, err := formats.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	strategies := NewStrategyRegistry()
	for _, name := range []string{"external", "pdf-text", "text-document", "image-pdf", "ocr"} {
		strategies.Register(name, mock)
	}
	scratch := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	d := NewDispatcher(registry, NewFormatValidator(registry), strategies, scratch, time.Minute, logger)
	return d, scratch
}

func scratchFileCount(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return count
}

func TestDispatchStampsResultMetadata(t *testing.T) {
	mock := &mockStrategy{result: &models.ConversionResult{Data: []byte("%PDF-stub")}}
	d, _ := newTestDispatcher(t, mock)

	req := &models.ConversionRequest{
		OriginalName:   "report.docx",
		FileSize:       9,
		ConversionType: models.WordToPDF,
	}
	result, err := d.Dispatch(context.Background(), req, strings.NewReader("docx data"))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if result.Filename != "report_converted.pdf" {
		t.Errorf("Filename = %q, want report_converted.pdf", result.Filename)
	}
	if result.MIME != "application/pdf" {
		t.Errorf("MIME = %q, want application/pdf", result.MIME)
	}
	if req.TargetFormat != "pdf" {
		t.Errorf("defaulted target = %q, want pdf", req.TargetFormat)
	}
	if mock.inputContent != "docx data" {
		t.Errorf("strategy saw staged content %q, want the upload bytes", mock.inputContent)
	}
}

func TestDispatchRemovesScratchFileOnSuccess(t *testing.T) {
	mock := &mockStrategy{result: &models.ConversionResult{Data: []byte("out")}}
	d, scratch := newTestDispatcher(t, mock)

	req := &models.ConversionRequest{OriginalName: "a.txt", ConversionType: models.TextToPDF}
	if _, err := d.Dispatch(context.Background(), req, strings.NewReader("hello")); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if n := scratchFileCount(t, scratch); n != 0 {
		t.Errorf("scratch dir holds %d files after success, want 0", n)
	}
}

func TestDispatchRemovesScratchFileOnFailure(t *testing.T) {
	mock := &mockStrategy{err: errors.New("backend exploded")}
	d, scratch := newTestDispatcher(t, mock)

	req := &models.ConversionRequest{OriginalName: "a.txt", ConversionType: models.TextToPDF}
	if _, err := d.Dispatch(context.Background(), req, strings.NewReader("hello")); err == nil {
		t.Fatal("Dispatch() should propagate the strategy error")
	}
	if n := scratchFileCount(t, scratch); n != 0 {
		t.Errorf("scratch dir holds %d files after failure, want 0", n)
	}
}

func TestDispatchRejectsBeforeRunningStrategy(t *testing.T) {
	tests := []struct {
		name string
		req  *models.ConversionRequest
	}{
		{
			name: "unknown conversion type",
			req:  &models.ConversionRequest{OriginalName: "a.docx", ConversionType: "spreadsheet-to-pdf"},
		},
		{
			name: "disallowed input extension",
			req:  &models.ConversionRequest{OriginalName: "archive.zip", ConversionType: models.WordToPDF},
		},
		{
			name: "unknown target format",
			req:  &models.ConversionRequest{OriginalName: "a.docx", ConversionType: models.WordToPDF, TargetFormat: "odt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockStrategy{result: &models.ConversionResult{Data: []byte("x")}}
			d, scratch := newTestDispatcher(t, mock)

			_, err := d.Dispatch(context.Background(), tt.req, strings.NewReader("data"))
			if err == nil {
				t.Fatal("Dispatch() should reject the request")
			}
			var httpErr domain.HTTPError
			if !errors.As(err, &httpErr) || httpErr.StatusCode() != 400 {
				t.Errorf("Dispatch() error = %v, want a 400-mapped domain error", err)
			}
			if mock.calls != 0 {
				t.Errorf("strategy ran %d times, want 0 (validation must come first)", mock.calls)
			}
			if n := scratchFileCount(t, scratch); n != 0 {
				t.Errorf("scratch dir holds %d files, want 0 (nothing staged before validation)", n)
			}
		})
	}
}

func TestDispatchRejectsEmptyResult(t *testing.T) {
	mock := &mockStrategy{result: &models.ConversionResult{Data: nil}}
	d, _ := newTestDispatcher(t, mock)

	req := &models.ConversionRequest{OriginalName: "a.txt", ConversionType: models.TextToPDF}
	_, err := d.Dispatch(context.Background(), req, strings.NewReader("hello"))
	if !errors.Is(err, domain.ErrEmptyResult) {
		t.Errorf("Dispatch() error = %v, want ErrEmptyResult", err)
	}
}

func TestDispatchConcurrentRequestsGetDistinctScratchFiles(t *testing.T) {
	mock1 := &mockStrategy{result: &models.ConversionResult{Data: []byte("x")}}
	d, _ := newTestDispatcher(t, mock1)

	req1 := &models.ConversionRequest{OriginalName: "same.txt", ConversionType: models.TextToPDF}
	if _, err := d.Dispatch(context.Background(), req1, strings.NewReader("one")); err != nil {
		t.Fatal(err)
	}
	first := mock1.lastInputPath

	req2 := &models.ConversionRequest{OriginalName: "same.txt", ConversionType: models.TextToPDF}
	if _, err := d.Dispatch(context.Background(), req2, strings.NewReader("two")); err != nil {
		t.Fatal(err)
	}
	if first == mock1.lastInputPath {
		t.Errorf("both requests staged to %q; scratch names must be unique", first)
	}
}

func TestDispatchOCRTextUsesExtractedName(t *testing.T) {
	mock := &mockStrategy{result: &models.ConversionResult{Data: []byte("recognized")}}
	d, _ := newTestDispatcher(t, mock)

	req := &models.ConversionRequest{
		OriginalName:   "scan.png",
		ConversionType: models.OCRExtract,
		TargetFormat:   "txt",
	}
	result, err := d.Dispatch(context.Background(), req, strings.NewReader("png"))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if result.Filename != "scan_extracted.txt" {
		t.Errorf("Filename = %q, want scan_extracted.txt", result.Filename)
	}
}
