package ocrengine

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
)

// grayscaleCopy writes a grayscale PNG rendition of the image next to the
// original, returning its path. The caller removes the copy when done.
func grayscaleCopy(imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filepath.Base(imagePath), err)
	}

	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, src, bounds.Min, draw.Src)

	outPath := strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + "_gray.png"
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := png.Encode(out, gray); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("encode grayscale png: %w", err)
	}
	return outPath, nil
}
