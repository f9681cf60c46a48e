package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"driveshare/internal/domain"
	"driveshare/internal/httputil"
)

// respondServiceError maps domain errors to HTTP status codes. Unknown errors
// are logged and masked as 500s.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrStorage):
		logger.Error("storage failure", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "storage failure")
	default:
		logger.Error("unhandled service error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
