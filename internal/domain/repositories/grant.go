package repositories

import (
	"context"

	"driveshare/internal/domain/models"
)

// GrantRepository persists sharing grants (one row per user/folder pair).
type GrantRepository interface {
	// Create inserts the grant and fills in id and timestamps.
	// Returns domain.ErrConflict if the user already holds a grant on the
	// folder.
	Create(ctx context.Context, grant *models.Grant) error

	// Find returns the grant held by the user on the folder, or
	// domain.ErrNotFound.
	Find(ctx context.Context, userID, folderID string) (*models.Grant, error)

	// Update persists the permission level.
	Update(ctx context.Context, grant *models.Grant) error

	// Delete removes one grant row.
	Delete(ctx context.Context, id string) error

	// DeleteByFolder removes every grant on the folder.
	DeleteByFolder(ctx context.Context, folderID string) error

	// CountByFolder returns the number of grants on the folder.
	CountByFolder(ctx context.Context, folderID string) (int, error)

	// ListByFolder returns the folder's grants with users loaded.
	ListByFolder(ctx context.Context, folderID string) ([]models.Grant, error)

	// ListByUser returns the user's grants with folders and folder owners
	// loaded.
	ListByUser(ctx context.Context, userID string) ([]models.Grant, error)
}
