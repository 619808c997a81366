package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"docmorph/internal/domain/services"
	"docmorph/internal/httputil"
)

// HealthHandler reports whether the conversion backend is usable.
type HealthHandler struct {
	backend services.ExternalConverter
	logger  *slog.Logger
}

func NewHealthHandler(backend services.ExternalConverter, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{backend: backend, logger: logger}
}

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

// Check probes the external backend.
// GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.backend.Healthy(ctx); err != nil {
		h.logger.Warn("backend health probe failed", "backend", h.backend.Name(), "error", err)
		httputil.RespondJSON(w, http.StatusOK, healthResponse{Status: "error", Backend: h.backend.Name()})
		return
	}
	httputil.RespondJSON(w, http.StatusOK, healthResponse{Status: "active", Backend: h.backend.Name()})
}
