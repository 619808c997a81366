package handler

import (
	"net/http"

	"docmorph/internal/formats"
	"docmorph/internal/httputil"
)

// FormatsHandler exposes the supported conversion table so clients can build
// their upload forms from it.
type FormatsHandler struct {
	registry *formats.Registry
}

func NewFormatsHandler(registry *formats.Registry) *FormatsHandler {
	return &FormatsHandler{registry: registry}
}

type formatsResponse struct {
	Conversions []formats.ConversionSpec `json:"conversions"`
}

// List returns every supported conversion type with its input and target
// formats.
// GET /api/formats
func (h *FormatsHandler) List(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, formatsResponse{Conversions: h.registry.Specs()})
}
