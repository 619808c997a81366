package convert

import (
	"context"

	"docmorph/internal/domain/models"
	"docmorph/internal/service/convert/pdftext"
)

// PDFTextStrategy extracts the embedded text layer of a PDF in process.
// Scanned PDFs without a text layer yield an empty result, which the
// dispatcher rejects.
type PDFTextStrategy struct{}

func NewPDFTextStrategy() *PDFTextStrategy { return &PDFTextStrategy{} }

func (s *PDFTextStrategy) Name() string { return "pdf-text" }

func (s *PDFTextStrategy) Execute(ctx context.Context, req *models.ConversionRequest) (*models.ConversionResult, error) {
	text, err := pdftext.ExtractFile(req.InputPath)
	if err != nil {
		return nil, err
	}
	return &models.ConversionResult{Data: []byte(text)}, nil
}
