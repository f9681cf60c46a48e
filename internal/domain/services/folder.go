package services

import (
	"context"

	"driveshare/internal/domain/models"
)

// FolderService handles folder lifecycle and sharing orchestration.
type FolderService interface {
	// Create creates a folder owned by the principal.
	// Returns domain.ErrConflict if the sanitized path is already taken.
	Create(ctx context.Context, principal models.Principal, req *CreateFolderRequest) (*models.Folder, error)

	// Share grants the listed users access to the folder. Owner only. The
	// whole call fails with domain.ErrNotFound if any target id does not
	// resolve; individual already-shared or self-share targets are reported
	// in Skipped and never abort the rest.
	Share(ctx context.Context, principal models.Principal, folderID string, targets []ShareTarget) (*ShareResult, error)

	// UpdateGrantPermission changes the permission level of an existing
	// grant. Authorization is checked against the grant's own user id, not
	// the folder owner.
	UpdateGrantPermission(ctx context.Context, principal models.Principal, folderID, targetUserID string, permission models.Permission) (*models.Grant, error)

	// RemoveGrant revokes a user's grant on the folder. Owner only. Clears
	// is_shared when the last grant goes away.
	RemoveGrant(ctx context.Context, principal models.Principal, folderID, targetUserID string) error

	// Rename renames the folder on storage first, then persists the new name
	// and path. Owner or edit grant. Returns domain.ErrConflict if the
	// destination path already exists on storage.
	Rename(ctx context.Context, principal models.Principal, folderID, newName string) (*models.Folder, error)

	// Remove deletes the folder: grants, then the physical directory tree,
	// then the folder row. Owner only. Aborts before the row removal if the
	// directory deletion fails.
	Remove(ctx context.Context, principal models.Principal, folderID string) error

	// ListGrants returns who the folder is shared with. Owner only.
	ListGrants(ctx context.Context, principal models.Principal, folderID string) ([]models.Grant, error)

	// ListOwned returns the principal's folders.
	ListOwned(ctx context.Context, principal models.Principal) ([]models.Folder, error)

	// ListSharedWithMe returns folders the principal holds a grant on.
	ListSharedWithMe(ctx context.Context, principal models.Principal) ([]models.Folder, error)

	// ListSharedByMe returns the principal's folders holding at least one
	// grant.
	ListSharedByMe(ctx context.Context, principal models.Principal) ([]models.Folder, error)

	// ListPublicByOwnerEmail returns the public folders of the user with the
	// given email. No authentication required.
	ListPublicByOwnerEmail(ctx context.Context, email string) ([]models.Folder, error)
}

// CreateFolderRequest is a folder creation request.
type CreateFolderRequest struct {
	Name       string            `json:"name"`
	Visibility models.Visibility `json:"visibility"`
}

// ShareTarget names one user to share with.
type ShareTarget struct {
	UserID     string            `json:"user_id"`
	Permission models.Permission `json:"permission"`
}

// ShareOutcome reports the result for a single share target.
type ShareOutcome struct {
	UserID     string            `json:"user_id"`
	Email      string            `json:"email"`
	Permission models.Permission `json:"permission,omitempty"`
	Reason     string            `json:"reason,omitempty"`
}

// ShareResult partitions share targets into granted and skipped. Skips are
// per-target conflicts (already shared, self-share), not failures.
type ShareResult struct {
	Succeeded []ShareOutcome `json:"succeeded"`
	Skipped   []ShareOutcome `json:"skipped"`
}
