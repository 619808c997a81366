package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"docmorph/internal/domain"
	"docmorph/internal/domain/models"
	"docmorph/internal/domain/services"
)

// ExternalStrategy hands the conversion to an out-of-process backend (cloud
// API or headless office suite) and retries transient failures.
type ExternalStrategy struct {
	backend services.ExternalConverter
	retry   RetryPolicy
	logger  *slog.Logger
}

func NewExternalStrategy(backend services.ExternalConverter, retry RetryPolicy, logger *slog.Logger) *ExternalStrategy {
	return &ExternalStrategy{backend: backend, retry: retry, logger: logger}
}

func (s *ExternalStrategy) Name() string { return "external:" + s.backend.Name() }

func (s *ExternalStrategy) Execute(ctx context.Context, req *models.ConversionRequest) (*models.ConversionResult, error) {
	// The scratch output carries a random name so concurrent requests for
	// same-named uploads cannot resolve to the same path. The client-facing
	// name is stamped on the result afterwards.
	outputName := uuid.NewString() + "." + req.TargetFormat

	var outputPath string
	err := s.retry.run(ctx, string(req.ConversionType), func() error {
		path, convErr := s.backend.Convert(ctx, req.InputPath, req.TargetFormat, outputName)
		if convErr != nil {
			return convErr
		}
		outputPath = path
		return nil
	})
	if err != nil {
		var httpErr domain.HTTPError
		if errors.As(err, &httpErr) {
			return nil, err
		}
		return nil, &domain.ExternalConversionError{
			Provider: s.backend.Name(),
			Message:  err.Error(),
			Cause:    err,
		}
	}
	defer os.Remove(outputPath)

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, &domain.ExternalConversionError{
			Provider: s.backend.Name(),
			Message:  fmt.Sprintf("result file unreadable: %v", err),
			Cause:    err,
		}
	}
	if len(data) == 0 {
		return nil, &domain.ExternalConversionError{
			Provider: s.backend.Name(),
			Message:  "result file is empty",
			Cause:    domain.ErrEmptyResult,
		}
	}
	return &models.ConversionResult{Data: data}, nil
}
