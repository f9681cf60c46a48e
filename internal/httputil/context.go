package httputil

import (
	"context"
	"net/http"

	"driveshare/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal attaches the verified principal to the request context.
func WithPrincipal(r *http.Request, principal models.Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalKey, principal)
	return r.WithContext(ctx)
}

// GetPrincipal retrieves the principal set by the auth middleware. The second
// return is false on unauthenticated requests (public routes).
func GetPrincipal(r *http.Request) (models.Principal, bool) {
	principal, ok := r.Context().Value(principalKey).(models.Principal)
	return principal, ok
}
