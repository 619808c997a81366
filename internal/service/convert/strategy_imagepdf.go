package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"docmorph/internal/domain"
	"docmorph/internal/domain/models"
	"docmorph/internal/domain/services"
	"docmorph/internal/service/convert/imagepdf"
)

// ImagePDFStrategy places an uploaded image onto an A4 PDF page locally. When
// a fallback backend is configured, local failures are retried there before
// giving up.
type ImagePDFStrategy struct {
	scratchDir string
	fallback   services.ExternalConverter // optional
	retry      RetryPolicy
	logger     *slog.Logger
}

func NewImagePDFStrategy(scratchDir string, fallback services.ExternalConverter, retry RetryPolicy, logger *slog.Logger) *ImagePDFStrategy {
	return &ImagePDFStrategy{scratchDir: scratchDir, fallback: fallback, retry: retry, logger: logger}
}

func (s *ImagePDFStrategy) Name() string { return "image-pdf" }

func (s *ImagePDFStrategy) Execute(ctx context.Context, req *models.ConversionRequest) (*models.ConversionResult, error) {
	outPath := filepath.Join(s.scratchDir, uuid.NewString()+".pdf")

	localErr := imagepdf.ToPDF(req.InputPath, outPath, imagepdf.Options{
		Quality: req.Options.Quality,
		Resize:  req.Options.Resize,
	})
	if localErr != nil {
		if s.fallback == nil || domain.IsPermanent(localErr) {
			return nil, localErr
		}
		s.logger.Warn("local image placement failed, trying external backend",
			"file", req.OriginalName, "error", localErr)

		os.Remove(outPath)
		outputName := uuid.NewString() + "." + req.TargetFormat
		err := s.retry.run(ctx, string(req.ConversionType), func() error {
			path, convErr := s.fallback.Convert(ctx, req.InputPath, req.TargetFormat, outputName)
			if convErr != nil {
				return convErr
			}
			outPath = path
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("image conversion failed locally (%v) and externally: %w", localErr, err)
		}
	}
	defer os.Remove(outPath)

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read generated pdf: %w", err)
	}
	return &models.ConversionResult{Data: data}, nil
}
