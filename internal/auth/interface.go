package auth

import "driveshare/internal/domain/models"

// TokenVerifier validates bearer tokens issued by the identity service. The
// abstraction keeps the middleware agnostic to how verification happens.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized for invalid, expired, or malformed
	// tokens.
	VerifyToken(tokenString string) (*models.AccessClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
