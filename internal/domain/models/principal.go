package models

// Principal is the verified identity of the calling user. It is produced by
// the identity layer (JWT verification) and consumed as an opaque value by the
// services; the core never performs session lookups of its own.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
