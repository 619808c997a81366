package formats

import (
	"testing"

	"docmorph/internal/domain/models"
)

func TestRegistryCoversEveryConversionType(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	for _, ct := range models.ConversionTypes {
		spec, ok := r.Spec(ct)
		if !ok {
			t.Errorf("no table entry for %s", ct)
			continue
		}
		if len(spec.Inputs) == 0 {
			t.Errorf("%s has no input allow-list", ct)
		}
		if len(spec.Targets) == 0 {
			t.Errorf("%s has no target formats", ct)
		}
		if spec.Strategy == "" {
			t.Errorf("%s has no strategy", ct)
		}
	}
	if got := len(r.Specs()); got != len(models.ConversionTypes) {
		t.Errorf("Specs() returned %d entries, want %d", got, len(models.ConversionTypes))
	}
}

func TestSupportsTarget(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ct     models.ConversionType
		target string
		want   bool
	}{
		{models.WordToPDF, "pdf", true},
		{models.WordToPDF, "PDF", true}, // case-insensitive
		{models.WordToPDF, "docx", false},
		{models.OCRExtract, "txt", true},
		{models.OCRExtract, "docx", true},
		{models.OCRExtract, "pdf", false},
		{"bogus", "pdf", false},
	}
	for _, tt := range tests {
		if got := r.SupportsTarget(tt.ct, tt.target); got != tt.want {
			t.Errorf("SupportsTarget(%s, %s) = %v, want %v", tt.ct, tt.target, got, tt.want)
		}
	}
}

func TestMIMEFallsBackToOctetStream(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if got := r.MIME("pdf"); got != "application/pdf" {
		t.Errorf("MIME(pdf) = %q", got)
	}
	if got := r.MIME("weird"); got != "application/octet-stream" {
		t.Errorf("MIME(weird) = %q, want octet-stream fallback", got)
	}
}
