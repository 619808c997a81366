package formats

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"docmorph/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

// ConversionSpec describes one supported conversion type: its input
// extension allow-list, its legal target formats, and the strategy that
// serves it.
type ConversionSpec struct {
	ConversionType string   `yaml:"conversion_type" json:"conversionType"`
	Inputs         []string `yaml:"inputs" json:"inputs"`
	Targets        []string `yaml:"targets" json:"targets"`
	Strategy       string   `yaml:"strategy" json:"-"`
}

type registryFile struct {
	Uploads   []ConversionSpec  `yaml:"uploads"`
	MIMETypes map[string]string `yaml:"mime_types"`
}

// Registry answers routing and allow-list questions from the embedded
// conversion table. Immutable after load; safe for concurrent reads.
type Registry struct {
	specs map[models.ConversionType]ConversionSpec
	order []ConversionSpec
	mimes map[string]string
}

// NewRegistry loads the embedded conversions YAML.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/conversions.yaml")
	if err != nil {
		return nil, fmt.Errorf("read conversions config: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal conversions config: %w", err)
	}
	if len(file.Uploads) == 0 {
		return nil, fmt.Errorf("conversions config declares no conversion types")
	}

	r := &Registry{
		specs: make(map[models.ConversionType]ConversionSpec, len(file.Uploads)),
		order: file.Uploads,
		mimes: file.MIMETypes,
	}
	for _, spec := range file.Uploads {
		ct, ok := models.ParseConversionType(spec.ConversionType)
		if !ok {
			return nil, fmt.Errorf("conversions config names unknown type %q", spec.ConversionType)
		}
		r.specs[ct] = spec
	}
	return r, nil
}

// Spec returns the table entry for a conversion type.
func (r *Registry) Spec(ct models.ConversionType) (ConversionSpec, bool) {
	spec, ok := r.specs[ct]
	return spec, ok
}

// AllowedInputs returns the input extension allow-list for a conversion type.
func (r *Registry) AllowedInputs(ct models.ConversionType) ([]string, bool) {
	spec, ok := r.specs[ct]
	if !ok {
		return nil, false
	}
	return spec.Inputs, true
}

// SupportsTarget reports whether targetFormat is legal for the type.
func (r *Registry) SupportsTarget(ct models.ConversionType, targetFormat string) bool {
	spec, ok := r.specs[ct]
	if !ok {
		return false
	}
	for _, t := range spec.Targets {
		if t == strings.ToLower(targetFormat) {
			return true
		}
	}
	return false
}

// MIME returns the Content-Type for a target extension, falling back to
// application/octet-stream for extensions the table does not name.
func (r *Registry) MIME(targetFormat string) string {
	if m, ok := r.mimes[strings.ToLower(targetFormat)]; ok {
		return m
	}
	return "application/octet-stream"
}

// Specs returns every table entry in declaration order, for the formats
// listing endpoint.
func (r *Registry) Specs() []ConversionSpec {
	out := make([]ConversionSpec, len(r.order))
	copy(out, r.order)
	return out
}
