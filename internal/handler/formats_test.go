package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docmorph/internal/formats"
)

func TestListFormats(t *testing.T) {
	registry, err := formats.NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	handler := NewFormatsHandler(registry)

	req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Conversions []struct {
			ConversionType string   `json:"conversionType"`
			Inputs         []string `json:"inputs"`
			Targets        []string `json:"targets"`
		} `json:"conversions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Conversions) != 6 {
		t.Fatalf("got %d conversion types, want 6", len(body.Conversions))
	}
	first := body.Conversions[0]
	if first.ConversionType != "word-to-pdf" {
		t.Errorf("first type = %q, want word-to-pdf (declaration order)", first.ConversionType)
	}
	if len(first.Inputs) == 0 || len(first.Targets) == 0 {
		t.Errorf("entry missing inputs or targets: %+v", first)
	}
}
