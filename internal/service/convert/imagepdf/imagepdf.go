// Package imagepdf embeds a raster image into a generated single-page PDF.
package imagepdf

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"docmorph/internal/domain"
)

// Options adjusts the image before it is embedded.
type Options struct {
	Quality int    // JPEG re-encode quality, 1-100; 0 keeps the source encoding
	Resize  string // target dimensions as "WxH"; empty keeps the source size
}

// ToPDF imports the image at imagePath into a new PDF at outPath, centered
// on an A4 page. GIF and BMP inputs are transcoded to PNG first since the
// PDF importer does not accept them natively; resize and quality options
// trigger the same decode-and-rewrite path.
func ToPDF(imagePath, outPath string, opts Options) error {
	src := imagePath
	if needsRewrite(imagePath, opts) {
		rewritten, err := rewrite(imagePath, opts)
		if err != nil {
			return fmt.Errorf("prepare image: %w", err)
		}
		defer os.Remove(rewritten)
		src = rewritten
	}

	imp, err := api.Import("formsize:A4, pos:c", types.POINTS)
	if err != nil {
		return fmt.Errorf("parse import config: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ImportImagesFile([]string{src}, outPath, imp, conf); err != nil {
		return fmt.Errorf("import image into pdf: %w", err)
	}

	if err := api.ValidateFile(outPath, conf); err != nil {
		return fmt.Errorf("generated pdf failed validation: %w", err)
	}
	return nil
}

func needsRewrite(imagePath string, opts Options) bool {
	if opts.Resize != "" || opts.Quality > 0 {
		return true
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(imagePath), ".")) {
	case "gif", "bmp":
		return true
	}
	return false
}

// rewrite decodes the image, applies resize and recompression, and writes
// the result next to the input. The caller removes the file.
func rewrite(imagePath string, opts Options) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var img image.Image
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(imagePath), ".")) {
	case "gif":
		img, err = gif.Decode(f)
	case "bmp":
		img, err = bmp.Decode(f)
	default:
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filepath.Base(imagePath), err)
	}

	if opts.Resize != "" {
		width, height, err := parseResize(opts.Resize)
		if err != nil {
			return "", err
		}
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = scaled
	}

	stem := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	if opts.Quality > 0 {
		outPath := stem + "_q.jpg"
		if err := encodeTo(outPath, func(out *os.File) error {
			return jpeg.Encode(out, img, &jpeg.Options{Quality: opts.Quality})
		}); err != nil {
			return "", fmt.Errorf("encode jpeg: %w", err)
		}
		return outPath, nil
	}

	outPath := stem + "_r.png"
	if err := encodeTo(outPath, func(out *os.File) error {
		return png.Encode(out, img)
	}); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return outPath, nil
}

func encodeTo(outPath string, encode func(*os.File) error) error {
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := encode(out); err != nil {
		os.Remove(outPath)
		return err
	}
	return nil
}

// parseResize parses a "WxH" dimension spec.
func parseResize(spec string) (width, height int, err error) {
	invalid := &domain.ValidationError{
		Message: fmt.Sprintf("resize must be WIDTHxHEIGHT with positive integers, got %q", spec),
	}

	parts := strings.Split(strings.ToLower(spec), "x")
	if len(parts) != 2 {
		return 0, 0, invalid
	}
	width, err = strconv.Atoi(parts[0])
	if err != nil || width < 1 {
		return 0, 0, invalid
	}
	height, err = strconv.Atoi(parts[1])
	if err != nil || height < 1 {
		return 0, 0, invalid
	}
	return width, height, nil
}
