package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the JWT claims structure issued by the identity service.
type AccessClaims struct {
	jwt.RegisteredClaims        // sub, iss, aud, exp, iat, ...
	Email                string `json:"email"`
	Role                 string `json:"role"` // "admin" or "user"
}

// Principal converts verified claims into the principal passed to services.
func (c *AccessClaims) Principal() Principal {
	return Principal{
		ID:    c.Subject,
		Email: c.Email,
		Role:  c.Role,
	}
}
