package services

import (
	"context"

	"docmorph/internal/domain/models"
)

// ConversionStrategy executes one kind of conversion. Implementations must be
// safe for concurrent use; each call operates on its own scratch files.
type ConversionStrategy interface {
	// Execute converts the request's input file and returns the result
	// artifact. A zero-length result is a failure, never an empty success.
	Execute(ctx context.Context, req *models.ConversionRequest) (*models.ConversionResult, error)

	// Name returns a human-readable strategy name for logging.
	Name() string
}

// ExternalConverter drives a conversion backend outside this process: a cloud
// API (upload, process, download) or a local headless office suite invocation.
type ExternalConverter interface {
	// Convert transforms the file at inputPath into targetExt, writing the
	// result under the backend's scratch directory as outputName. The caller
	// must verify the returned file exists and is non-empty.
	Convert(ctx context.Context, inputPath, targetExt, outputName string) (outputPath string, err error)

	// Healthy probes the backend's reachability and credential validity.
	Healthy(ctx context.Context) error

	// Name identifies the backend in errors and logs.
	Name() string
}

// TextExtractor pulls machine-readable text out of an image.
type TextExtractor interface {
	// Extract runs recognition on the image at imagePath. Pre-processing
	// failures fall back to the original image; only engine failures error.
	Extract(ctx context.Context, imagePath string, opts models.ConversionOptions) (string, error)

	// Close releases any pooled recognition sessions.
	Close() error
}
