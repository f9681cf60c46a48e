package middleware

import (
	"net/http"
	"strings"

	"driveshare/internal/auth"
	"driveshare/internal/httputil"
)

// Auth validates the bearer token and attaches the principal to the request
// context. The health check and the public browsing routes pass through
// unauthenticated.
func Auth(verifier auth.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithPrincipal(r, claims.Principal()))
		})
	}
}

func isPublicPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/api/public/")
}
