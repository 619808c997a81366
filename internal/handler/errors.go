package handler

import (
	"errors"
	"net/http"

	"docmorph/internal/domain"
	"docmorph/internal/httputil"
)

// respondDomainError maps a service failure onto the HTTP error contract.
// Typed domain errors carry their own status; everything else is a 500 with
// a generic message so internals never leak.
func respondDomainError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found", nil)
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "conversion failed", err)
	}
}
