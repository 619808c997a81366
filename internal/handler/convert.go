package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"docmorph/internal/config"
	"docmorph/internal/domain/models"
	"docmorph/internal/domain/repositories"
	"docmorph/internal/httputil"
	"docmorph/internal/service/convert"
)

// ConvertHandler serves the upload-and-convert endpoint. The converted file
// streams back in the response body; a history record is written for every
// resolved attempt, success or failure.
type ConvertHandler struct {
	dispatcher *convert.Dispatcher
	history    repositories.ConversionRepository
	logger     *slog.Logger
}

func NewConvertHandler(dispatcher *convert.Dispatcher, history repositories.ConversionRepository, logger *slog.Logger) *ConvertHandler {
	return &ConvertHandler{dispatcher: dispatcher, history: history, logger: logger}
}

// Convert handles the conversion upload.
// POST /api/convert
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds the %d MB upload limit", config.MaxUploadBytes>>20), nil)
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "multipart field 'file' is required", nil)
		return
	}
	defer file.Close()

	if len(header.Filename) == 0 || len(header.Filename) > config.MaxFileNameLength {
		httputil.RespondError(w, http.StatusBadRequest, "invalid file name", nil)
		return
	}

	ct, ok := models.ParseConversionType(r.FormValue("conversionType"))
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported conversion type: %s", r.FormValue("conversionType")), nil)
		return
	}

	targetFormat := strings.ToLower(r.FormValue("targetFormat"))
	if len(targetFormat) > config.MaxFormatLength {
		httputil.RespondError(w, http.StatusBadRequest, "invalid target format", nil)
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	req := &models.ConversionRequest{
		OriginalName:   header.Filename,
		DeclaredMIME:   header.Header.Get("Content-Type"),
		FileSize:       header.Size,
		ConversionType: ct,
		TargetFormat:   targetFormat,
		Options:        opts,
	}

	result, err := h.dispatcher.Dispatch(r.Context(), req, file)
	if err != nil {
		h.record(r, req, models.StatusFailed)
		respondDomainError(w, err)
		return
	}
	h.record(r, req, models.StatusCompleted)

	w.Header().Set("Content-Type", result.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

// record writes the history entry. History failures never affect the
// conversion response.
func (h *ConvertHandler) record(r *http.Request, req *models.ConversionRequest, status string) {
	rec := &models.ConversionRecord{
		FileName:       models.DerivedFilename(req.OriginalName, req.ConversionType, req.TargetFormat),
		OriginalFormat: strings.TrimPrefix(strings.ToLower(filepath.Ext(req.OriginalName)), "."),
		TargetFormat:   req.TargetFormat,
		FileSize:       req.FileSize,
		Status:         status,
	}
	if _, err := h.history.Create(r.Context(), rec); err != nil {
		h.logger.Warn("failed to record conversion history", "file", req.OriginalName, "error", err)
	}
}

func parseOptions(r *http.Request) (models.ConversionOptions, error) {
	var opts models.ConversionOptions

	if raw := r.FormValue("quality"); raw != "" {
		quality, err := strconv.Atoi(raw)
		if err != nil || quality < 1 || quality > 100 {
			return opts, fmt.Errorf("quality must be an integer between 1 and 100")
		}
		opts.Quality = quality
	}
	opts.Language = r.FormValue("language")
	opts.Resize = r.FormValue("resize")

	if raw := r.FormValue("grayscale"); raw != "" {
		grayscale, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("grayscale must be a boolean")
		}
		opts.Grayscale = grayscale
	}
	return opts, nil
}
