package convert

import (
	"strings"

	"docmorph/internal/domain"
	"docmorph/internal/domain/models"
	"docmorph/internal/formats"
)

// FormatValidator gates uploads against the per-conversion-type extension
// allow-list before any scratch file is written or backend contacted.
// Pure check; no side effects.
type FormatValidator struct {
	registry *formats.Registry
}

func NewFormatValidator(registry *formats.Registry) *FormatValidator {
	return &FormatValidator{registry: registry}
}

// Validate checks the filename's extension (case-insensitive, taken after the
// last dot) against the conversion type's allow-list.
func (v *FormatValidator) Validate(filename string, ct models.ConversionType) error {
	allowed, ok := v.registry.AllowedInputs(ct)
	if !ok {
		return &domain.UnsupportedConversionTypeError{ConversionType: string(ct)}
	}

	ext := extensionOf(filename)
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return &domain.UnsupportedFileTypeError{Extension: ext, Allowed: allowed}
}

// extensionOf returns the lowercase extension after the last dot, without the
// dot itself. A name without a dot has no extension.
func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}
