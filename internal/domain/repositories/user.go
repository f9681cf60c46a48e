package repositories

import (
	"context"

	"driveshare/internal/domain/models"
)

// UserRepository resolves identity-service accounts. Read-only: this core
// never creates or mutates users.
type UserRepository interface {
	// GetByID returns the user or domain.ErrNotFound. Soft-deleted users are
	// excluded.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail returns the user or domain.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// ListByIDs returns the users matching the given ids, excluding
	// soft-deleted accounts. Missing ids simply produce a shorter result.
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}
