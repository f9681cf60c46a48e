package handler

import (
	"net/http"

	"github.com/google/uuid"

	"driveshare/internal/httputil"
)

// pathID extracts a path value and rejects malformed ids before they reach
// the database.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if _, err := uuid.Parse(id); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid "+name)
		return "", false
	}
	return id, true
}
