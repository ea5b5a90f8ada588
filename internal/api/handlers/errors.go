package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/inventory-manager-be/internal/auth"
	"github.com/isdelr/inventory-manager-be/internal/httpx"
	"github.com/isdelr/inventory-manager-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// writeError maps auth and service errors onto status codes. Unexpected
// errors are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if _, _, ok := auth.Classify(err); ok {
		auth.WriteError(w, err)
		return
	}

	msg := err.Error()
	var se *services.Error
	if errors.As(err, &se) {
		msg = se.Message
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "not_found", msg)
	case errors.Is(err, services.ErrDuplicate):
		httpx.Error(w, http.StatusBadRequest, "duplicate", msg)
	case errors.Is(err, services.ErrValidation):
		httpx.Error(w, http.StatusBadRequest, "validation_failed", msg)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("Failed to " + action)
		httpx.Error(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func badRequest(w http.ResponseWriter, err error) {
	httpx.Error(w, http.StatusBadRequest, "validation_failed", err.Error())
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "validation_failed", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
