// Package ocrengine extracts text from images with Tesseract, reusing
// recognition sessions across requests through a fixed-size pool.
package ocrengine

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/otiai10/gosseract/v2"

	"docmorph/internal/domain"
	"docmorph/internal/domain/models"
)

// Extractor runs OCR using pooled gosseract clients. Sessions are acquired
// per call and always returned, including on error paths.
type Extractor struct {
	pool     chan *gosseract.Client
	size     int
	language string
	logger   *slog.Logger
}

// NewExtractor creates an extractor with poolSize warm sessions. language is
// the default recognition language; requests may override it.
func NewExtractor(language string, poolSize int, logger *slog.Logger) *Extractor {
	if poolSize < 1 {
		poolSize = 1
	}
	pool := make(chan *gosseract.Client, poolSize)
	for i := 0; i < poolSize; i++ {
		pool <- gosseract.NewClient()
	}
	return &Extractor{pool: pool, size: poolSize, language: language, logger: logger}
}

// Extract recognizes text in the image at imagePath. Grayscale
// pre-processing failure is non-fatal: the original image is used and a
// warning logged. Engine failures surface as OCRError.
func (e *Extractor) Extract(ctx context.Context, imagePath string, opts models.ConversionOptions) (string, error) {
	src := imagePath
	if opts.Grayscale {
		gray, err := grayscaleCopy(imagePath)
		if err != nil {
			e.logger.Warn("grayscale pre-processing failed, using original image",
				"image", imagePath, "error", err)
		} else {
			defer os.Remove(gray)
			src = gray
		}
	}

	client, err := e.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer e.release(client)

	language := opts.Language
	if language == "" {
		language = e.language
	}
	if err := client.SetLanguage(language); err != nil {
		return "", &domain.OCRError{Cause: fmt.Errorf("set language %q: %w", language, err)}
	}
	if err := client.SetImage(src); err != nil {
		return "", &domain.OCRError{Cause: fmt.Errorf("set image: %w", err)}
	}

	if opts.Progress != nil {
		opts.Progress(0)
	}
	text, err := client.Text()
	if err != nil {
		return "", &domain.OCRError{Cause: err}
	}
	if opts.Progress != nil {
		opts.Progress(1)
	}
	return text, nil
}

// acquire blocks until a session is free or the context is cancelled.
func (e *Extractor) acquire(ctx context.Context) (*gosseract.Client, error) {
	select {
	case client := <-e.pool:
		return client, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Extractor) release(client *gosseract.Client) {
	e.pool <- client
}

// Close terminates every pooled session, waiting for checked-out sessions to
// be released first. Callers must not Extract afterwards.
func (e *Extractor) Close() error {
	var firstErr error
	for i := 0; i < e.size; i++ {
		client := <-e.pool
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
