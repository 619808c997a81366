package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ConversionType is the semantic operation requested, distinct from the
// target file format.
type ConversionType string

const (
	WordToPDF  ConversionType = "word-to-pdf"
	PDFToWord  ConversionType = "pdf-to-word"
	PDFToText  ConversionType = "pdf-to-text"
	TextToPDF  ConversionType = "text-to-pdf"
	ImageToPDF ConversionType = "image-to-pdf"
	OCRExtract ConversionType = "ocr-extract"
)

// ConversionTypes lists every supported conversion type.
var ConversionTypes = []ConversionType{
	WordToPDF, PDFToWord, PDFToText, TextToPDF, ImageToPDF, OCRExtract,
}

// ParseConversionType validates a raw conversion type string.
func ParseConversionType(s string) (ConversionType, bool) {
	for _, ct := range ConversionTypes {
		if string(ct) == s {
			return ct, true
		}
	}
	return "", false
}

// ConversionOptions carries engine-specific knobs parsed from the request.
type ConversionOptions struct {
	Quality   int     `json:"quality,omitempty"`   // image quality, 1-100
	Language  string  `json:"language,omitempty"`  // OCR language, default "eng"
	Resize    string  `json:"resize,omitempty"`    // image resize spec, e.g. "800x600"
	Grayscale bool    `json:"grayscale,omitempty"` // pre-process image to grayscale

	// Progress receives a recognition fraction in [0,1]. Optional.
	Progress func(float64) `json:"-"`
}

// ConversionRequest is the ephemeral per-call unit of work. InputPath points
// at the request's uniquely named scratch copy of the upload.
type ConversionRequest struct {
	InputPath      string
	OriginalName   string
	DeclaredMIME   string
	FileSize       int64
	ConversionType ConversionType
	TargetFormat   string
	Options        ConversionOptions
}

// Stem returns the original filename without its extension.
func (r *ConversionRequest) Stem() string {
	return strings.TrimSuffix(r.OriginalName, filepath.Ext(r.OriginalName))
}

// ConversionResult holds the output artifact. Data is never empty on success.
type ConversionResult struct {
	Data     []byte
	MIME     string
	Filename string
}

// Record statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ConversionRecord is the persistent history entry, created exactly once per
// resolved conversion attempt and never mutated afterwards.
type ConversionRecord struct {
	ID             int       `json:"id"`
	FileName       string    `json:"fileName"`
	OriginalFormat string    `json:"originalFormat"`
	TargetFormat   string    `json:"targetFormat"`
	FileSize       int64     `json:"fileSize"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DerivedFilename computes the output name the client downloads:
// "<stem>_converted.<ext>", or "<stem>_extracted.txt" for OCR to plain text.
func DerivedFilename(originalName string, conversionType ConversionType, targetFormat string) string {
	stem := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	if conversionType == OCRExtract && targetFormat == "txt" {
		return fmt.Sprintf("%s_extracted.txt", stem)
	}
	return fmt.Sprintf("%s_converted.%s", stem, targetFormat)
}
