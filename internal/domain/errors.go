package domain

import "errors"

// Sentinel errors for the failure taxonomy. Services wrap them with
// fmt.Errorf("...: %w", ...) so callers can classify with errors.Is while the
// message keeps the specifics.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrStorage marks a filesystem/object-store failure that happened after
	// authorization passed. The paired metadata write must not proceed.
	ErrStorage = errors.New("storage operation failed")
)

// ConflictError is a conflict carrying the existing resource, so transports
// can point the caller at what they collided with.
type ConflictError struct {
	Message      string
	ResourceType string // folder, file, grant
	ResourceID   string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is allows errors.Is() to match against ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
