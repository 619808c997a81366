package convert

import (
	"context"
	"fmt"
	"os"

	"docmorph/internal/domain"
	"docmorph/internal/domain/models"
	"docmorph/internal/service/convert/builder"
)

// TextDocumentStrategy builds PDF or DOCX documents from plain text entirely
// in process. No external backend is involved.
type TextDocumentStrategy struct{}

func NewTextDocumentStrategy() *TextDocumentStrategy { return &TextDocumentStrategy{} }

func (s *TextDocumentStrategy) Name() string { return "text-document" }

func (s *TextDocumentStrategy) Execute(ctx context.Context, req *models.ConversionRequest) (*models.ConversionResult, error) {
	text, err := os.ReadFile(req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read text input: %w", err)
	}

	var data []byte
	switch req.TargetFormat {
	case "pdf":
		data, err = builder.TextToPDF(string(text))
	case "docx":
		data, err = builder.TextToDOCX(string(text))
	default:
		return nil, &domain.UnsupportedConversionTypeError{
			ConversionType: string(req.ConversionType),
			TargetFormat:   req.TargetFormat,
		}
	}
	if err != nil {
		return nil, err
	}
	return &models.ConversionResult{Data: data}, nil
}
