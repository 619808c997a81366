package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docmorph/internal/domain/models"
	"docmorph/internal/domain/repositories"
	"docmorph/internal/httputil"
	"docmorph/internal/service/export"
)

// ConversionsHandler serves the conversion history endpoints.
type ConversionsHandler struct {
	history repositories.ConversionRepository
	logger  *slog.Logger
}

func NewConversionsHandler(history repositories.ConversionRepository, logger *slog.Logger) *ConversionsHandler {
	return &ConversionsHandler{history: history, logger: logger}
}

// List returns the full history, newest first.
// GET /api/conversions
func (h *ConversionsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list conversions", "error", err)
		respondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, records)
}

// ListRecent returns history entries no older than the given number of days.
// GET /api/conversions/recent/{days}
func (h *ConversionsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.PathValue("days"))
	if err != nil || days < 0 {
		httputil.RespondError(w, http.StatusBadRequest, "days must be a non-negative integer", nil)
		return
	}

	records, err := h.history.ListSince(r.Context(), days)
	if err != nil {
		h.logger.Error("failed to list recent conversions", "days", days, "error", err)
		respondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, records)
}

// createConversionRequest is the manual-record payload.
type createConversionRequest struct {
	FileName       string `json:"fileName"`
	OriginalFormat string `json:"originalFormat"`
	TargetFormat   string `json:"targetFormat"`
	FileSize       int64  `json:"fileSize"`
	Status         string `json:"status"`
}

func (req createConversionRequest) validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.FileName, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.OriginalFormat, validation.Required, validation.Length(1, 10)),
		validation.Field(&req.TargetFormat, validation.Required, validation.Length(1, 10)),
		validation.Field(&req.FileSize, validation.Min(0)),
		validation.Field(&req.Status, validation.Required,
			validation.In(models.StatusCompleted, models.StatusFailed)),
	)
}

// Create stores a history record directly, without running a conversion.
// POST /api/conversions
func (h *ConversionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createConversionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := req.validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	rec, err := h.history.Create(r.Context(), &models.ConversionRecord{
		FileName:       req.FileName,
		OriginalFormat: req.OriginalFormat,
		TargetFormat:   req.TargetFormat,
		FileSize:       req.FileSize,
		Status:         req.Status,
	})
	if err != nil {
		h.logger.Error("failed to create conversion record", "error", err)
		respondDomainError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, rec)
}

// Delete removes a history record. Unknown ids succeed silently.
// DELETE /api/conversions/{id}
func (h *ConversionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "id must be an integer", nil)
		return
	}

	if err := h.history.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete conversion record", "id", id, "error", err)
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export streams the full history as a spreadsheet.
// GET /api/conversions/export
func (h *ConversionsHandler) Export(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.List(r.Context())
	if err != nil {
		h.logger.Error("failed to export conversions", "error", err)
		respondDomainError(w, err)
		return
	}

	data, err := export.HistoryXLSX(records)
	if err != nil {
		h.logger.Error("failed to build history workbook", "error", err)
		respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.XLSXMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="conversions.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to stream history workbook", "error", err)
	}
}
