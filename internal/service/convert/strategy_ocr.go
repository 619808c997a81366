package convert

import (
	"context"

	"docmorph/internal/domain"
	"docmorph/internal/domain/models"
	"docmorph/internal/domain/services"
	"docmorph/internal/service/convert/builder"
)

// OCRStrategy recognizes text in an uploaded image and packages it as plain
// text or as a DOCX document.
type OCRStrategy struct {
	extractor services.TextExtractor
}

func NewOCRStrategy(extractor services.TextExtractor) *OCRStrategy {
	return &OCRStrategy{extractor: extractor}
}

func (s *OCRStrategy) Name() string { return "ocr" }

func (s *OCRStrategy) Execute(ctx context.Context, req *models.ConversionRequest) (*models.ConversionResult, error) {
	text, err := s.extractor.Extract(ctx, req.InputPath, req.Options)
	if err != nil {
		return nil, err
	}

	switch req.TargetFormat {
	case "txt":
		return &models.ConversionResult{Data: []byte(text)}, nil
	case "docx":
		data, err := builder.TextToDOCX(text)
		if err != nil {
			return nil, err
		}
		return &models.ConversionResult{Data: data}, nil
	default:
		return nil, &domain.UnsupportedConversionTypeError{
			ConversionType: string(req.ConversionType),
			TargetFormat:   req.TargetFormat,
		}
	}
}
