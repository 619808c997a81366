// Package office drives a local headless office suite as a conversion
// backend. The cloud protocol's four phases collapse into one synchronous
// subprocess invocation; the result file is located by convention (same
// basename, new extension).
package office

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Converter invokes `<binary> --headless --convert-to <ext> --outdir <dir>`.
type Converter struct {
	binary string
	outDir string
	logger *slog.Logger
}

func New(binary, outDir string, logger *slog.Logger) *Converter {
	return &Converter{binary: binary, outDir: outDir, logger: logger}
}

func (c *Converter) Name() string { return "libreoffice" }

// Convert runs the headless conversion and renames the conventional output
// to outputName when they differ. The caller verifies size and existence.
func (c *Converter) Convert(ctx context.Context, inputPath, targetExt, outputName string) (string, error) {
	targetExt = strings.ToLower(strings.TrimPrefix(targetExt, "."))

	args := []string{"--headless", "--convert-to", targetExt, "--outdir", c.outDir, inputPath}
	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("invoking office suite", "binary", c.binary, "args", args)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s run: %w; stdout=%s stderr=%s", c.binary, err, stdout.String(), stderr.String())
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	converted := filepath.Join(c.outDir, base+"."+targetExt)

	if outputName == "" || outputName == filepath.Base(converted) {
		return converted, nil
	}
	renamed := filepath.Join(c.outDir, outputName)
	if err := os.Rename(converted, renamed); err != nil {
		return "", fmt.Errorf("rename converted file: %w", err)
	}
	return renamed, nil
}

// Healthy reports whether the configured binary is on PATH (or an absolute
// path that exists).
func (c *Converter) Healthy(ctx context.Context) error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("office binary %q not available: %w", c.binary, err)
	}
	return nil
}
