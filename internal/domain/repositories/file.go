package repositories

import (
	"context"

	"driveshare/internal/domain/models"
)

// FileRepository persists file metadata. Byte movement belongs to the storage
// adapter; orderings between the two are the services' responsibility.
type FileRepository interface {
	// Create inserts the file and fills in id and timestamps.
	Create(ctx context.Context, file *models.File) error

	// GetByID returns the file with its folder, folder owner and creator
	// loaded, or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.File, error)

	// ExistsByFolderAndPath reports whether a file with the given stored path
	// already exists in the folder.
	ExistsByFolderAndPath(ctx context.Context, folderID, path string) (bool, error)

	// Update persists name and path.
	Update(ctx context.Context, file *models.File) error

	// Delete removes the file row.
	Delete(ctx context.Context, id string) error

	// ListByFolder returns the folder's files with creators loaded.
	ListByFolder(ctx context.Context, folderID string) ([]models.File, error)

	// ListByCreator returns all files uploaded by the user, with folders
	// loaded.
	ListByCreator(ctx context.Context, creatorID string) ([]models.File, error)
}
