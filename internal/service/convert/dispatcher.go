package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docmorph/internal/domain"
	"docmorph/internal/domain/models"
	"docmorph/internal/formats"
)

// Dispatcher is the single entry point for conversions: it validates the
// upload, resolves the target format and strategy from the routing table,
// stages a scratch copy, runs the strategy, and stamps the result's download
// metadata. Scratch files are removed whether the strategy succeeds or not.
type Dispatcher struct {
	registry   *formats.Registry
	validator  *FormatValidator
	strategies *StrategyRegistry
	scratchDir string
	timeout    time.Duration
	logger     *slog.Logger
}

func NewDispatcher(registry *formats.Registry, validator *FormatValidator, strategies *StrategyRegistry, scratchDir string, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		validator:  validator,
		strategies: strategies,
		scratchDir: scratchDir,
		timeout:    timeout,
		logger:     logger,
	}
}

// Dispatch runs one conversion. req.InputPath is ignored on entry; the
// dispatcher stages its own uniquely named scratch copy from src. Validation
// happens before any file is written.
func (d *Dispatcher) Dispatch(ctx context.Context, req *models.ConversionRequest, src io.Reader) (*models.ConversionResult, error) {
	spec, ok := d.registry.Spec(req.ConversionType)
	if !ok {
		return nil, &domain.UnsupportedConversionTypeError{ConversionType: string(req.ConversionType)}
	}

	if req.TargetFormat == "" {
		req.TargetFormat = spec.Targets[0]
	} else {
		req.TargetFormat = strings.ToLower(req.TargetFormat)
		if !d.registry.SupportsTarget(req.ConversionType, req.TargetFormat) {
			return nil, &domain.UnsupportedConversionTypeError{
				ConversionType: string(req.ConversionType),
				TargetFormat:   req.TargetFormat,
			}
		}
	}

	if err := d.validator.Validate(req.OriginalName, req.ConversionType); err != nil {
		return nil, err
	}

	strategy, err := d.strategies.Get(spec.Strategy)
	if err != nil {
		return nil, err
	}

	scratchPath, err := d.stage(src, req.OriginalName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.Remove(scratchPath); rmErr != nil && !os.IsNotExist(rmErr) {
			d.logger.Warn("failed to remove scratch file", "path", scratchPath, "error", rmErr)
		}
	}()
	req.InputPath = scratchPath

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	d.logger.Info("conversion started",
		"type", req.ConversionType,
		"target", req.TargetFormat,
		"file", req.OriginalName,
		"size", req.FileSize,
		"strategy", strategy.Name(),
	)

	result, err := strategy.Execute(ctx, req)
	if err != nil {
		d.logger.Error("conversion failed",
			"type", req.ConversionType,
			"file", req.OriginalName,
			"duration", time.Since(start).String(),
			"error", err,
		)
		return nil, err
	}
	if len(result.Data) == 0 {
		d.logger.Error("conversion produced no output",
			"type", req.ConversionType, "file", req.OriginalName)
		return nil, domain.ErrEmptyResult
	}

	result.MIME = d.registry.MIME(req.TargetFormat)
	result.Filename = models.DerivedFilename(req.OriginalName, req.ConversionType, req.TargetFormat)

	d.logger.Info("conversion completed",
		"type", req.ConversionType,
		"file", req.OriginalName,
		"output", result.Filename,
		"bytes", len(result.Data),
		"duration", time.Since(start).String(),
	)
	return result, nil
}

// stage copies the upload into a uniquely named scratch file so concurrent
// requests never collide on disk.
func (d *Dispatcher) stage(src io.Reader, originalName string) (string, error) {
	path := filepath.Join(d.scratchDir, uuid.NewString()+strings.ToLower(filepath.Ext(originalName)))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close scratch file: %w", err)
	}
	return path, nil
}
