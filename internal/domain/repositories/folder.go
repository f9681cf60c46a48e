package repositories

import (
	"context"

	"driveshare/internal/domain/models"
)

// FolderRepository persists folders. GetByID loads the owner relation, since
// every authorization decision needs it.
type FolderRepository interface {
	// Create inserts the folder and fills in id and timestamps.
	// Returns domain.ErrConflict on a duplicate path.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID returns the folder with its owner, or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// ExistsByPath reports whether any folder already uses the logical path.
	// The check is global, not scoped by owner.
	ExistsByPath(ctx context.Context, path string) (bool, error)

	// Update persists name, path, visibility and is_shared.
	Update(ctx context.Context, folder *models.Folder) error

	// SetShared flips the derived is_shared flag.
	SetShared(ctx context.Context, id string, shared bool) error

	// Delete removes the folder row. File rows cascade at the database level.
	Delete(ctx context.Context, id string) error

	// ListByOwner returns all folders owned by the user.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Folder, error)

	// ListPublicByOwner returns the owner's public folders.
	ListPublicByOwner(ctx context.Context, ownerID string) ([]models.Folder, error)

	// ListSharedByOwner returns the owner's folders holding at least one grant.
	ListSharedByOwner(ctx context.Context, ownerID string) ([]models.Folder, error)
}
