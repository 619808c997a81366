package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// UnsupportedFileTypeError indicates an input extension outside the
	// conversion type's allow-list.
	UnsupportedFileTypeError struct {
		Extension string
		Allowed   []string
	}

	// UnsupportedConversionTypeError indicates an unknown conversionType or
	// an unrecognized targetFormat for a type that supports multiple outputs.
	UnsupportedConversionTypeError struct {
		ConversionType string
		TargetFormat   string
	}

	// ExternalConversionError indicates the external backend failed after the
	// retry budget was exhausted, or returned an empty or missing result file.
	ExternalConversionError struct {
		Provider string
		Message  string
		Cause    error
	}

	// AuthenticationError indicates the backend rejected the configured
	// credential. Never retried.
	AuthenticationError struct {
		Provider string
	}

	// RateLimitError indicates backend throttling. Retryable.
	RateLimitError struct {
		Provider string
	}

	// DocumentBuildError indicates in-process document construction failed.
	DocumentBuildError struct {
		Format string
		Cause  error
	}

	// OCRError indicates the recognition engine failed. Pre-processing
	// failures are downgraded to warnings and never raise this.
	OCRError struct {
		Cause error
	}

	// ValidationError indicates invalid request input.
	ValidationError struct {
		Message string
	}
)

// Error implementations
func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: .%s (allowed: %s)", e.Extension, strings.Join(e.Allowed, ", "))
}

func (e *UnsupportedConversionTypeError) Error() string {
	if e.TargetFormat != "" {
		return fmt.Sprintf("unsupported conversion type: %s to %s", e.ConversionType, e.TargetFormat)
	}
	return fmt.Sprintf("unsupported conversion type: %s", e.ConversionType)
}

func (e *ExternalConversionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s conversion failed: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s conversion failed", e.Provider)
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s rejected credentials: invalid API key", e.Provider)
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded", e.Provider)
}

func (e *DocumentBuildError) Error() string {
	return fmt.Sprintf("failed to build %s document: %v", e.Format, e.Cause)
}

func (e *OCRError) Error() string { return fmt.Sprintf("text recognition failed: %v", e.Cause) }

func (e *ValidationError) Error() string { return e.Message }

// Unwrap implementations for errors wrapping a cause
func (e *ExternalConversionError) Unwrap() error { return e.Cause }
func (e *DocumentBuildError) Unwrap() error      { return e.Cause }
func (e *OCRError) Unwrap() error                { return e.Cause }

// StatusCode implementations (HTTPError interface)
func (e *UnsupportedFileTypeError) StatusCode() int       { return http.StatusBadRequest }
func (e *UnsupportedConversionTypeError) StatusCode() int { return http.StatusBadRequest }
func (e *ExternalConversionError) StatusCode() int        { return http.StatusInternalServerError }
func (e *AuthenticationError) StatusCode() int            { return http.StatusInternalServerError }
func (e *RateLimitError) StatusCode() int                 { return http.StatusInternalServerError }
func (e *DocumentBuildError) StatusCode() int             { return http.StatusInternalServerError }
func (e *OCRError) StatusCode() int                       { return http.StatusInternalServerError }
func (e *ValidationError) StatusCode() int                { return http.StatusBadRequest }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrEmptyResult = errors.New("conversion produced an empty result")
)

// Is allows errors.Is() matches against the validation sentinel.
func (e *ValidationError) Is(target error) bool                { return target == ErrValidation }
func (e *UnsupportedFileTypeError) Is(target error) bool       { return target == ErrValidation }
func (e *UnsupportedConversionTypeError) Is(target error) bool { return target == ErrValidation }

// IsPermanent reports whether err must not be retried. Authentication
// rejections and malformed requests short-circuit the retry loop; transient
// failures (timeouts, 5xx, rate limiting) do not.
func IsPermanent(err error) bool {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return true
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return true
	}
	var typeErr *UnsupportedConversionTypeError
	if errors.As(err, &typeErr) {
		return true
	}
	var fileErr *UnsupportedFileTypeError
	return errors.As(err, &fileErr)
}
