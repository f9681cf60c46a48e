package services

import (
	"context"
	"io"

	"driveshare/internal/domain/models"
)

// FileService handles file lifecycle within folders.
type FileService interface {
	// Upload stores a batch of files into the folder. The whole batch is
	// rejected if the folder is missing or the principal is neither owner
	// nor edit-grant holder; per-file name conflicts are reported in the
	// result and never cancel the remainder.
	Upload(ctx context.Context, principal models.Principal, folderID string, uploads []Upload) (*UploadResult, error)

	// Remove deletes the physical file before removing the metadata row.
	// Allowed for the folder owner, an edit-grant holder, or a read-grant
	// holder who created the file.
	Remove(ctx context.Context, principal models.Principal, fileID string) error

	// Rename renames the file on storage (preserving the extension), then
	// persists the new name and path. Same authorization as Remove.
	Rename(ctx context.Context, principal models.Principal, fileID, newName string) (*models.File, error)

	// Download opens the physical file for reading. View-level
	// authorization. Returns domain.ErrNotFound if the bytes are gone even
	// though the row exists.
	Download(ctx context.Context, principal models.Principal, fileID string) (*DownloadResult, error)

	// ListInFolder lists the folder's files. Owner or grant holder only;
	// visibility does not open the private listing path.
	ListInFolder(ctx context.Context, principal models.Principal, folderID string) ([]models.File, error)

	// ListInPublicFolder lists a public folder's files without
	// authentication. Fails for private folders regardless of caller.
	ListInPublicFolder(ctx context.Context, folderID string) ([]models.File, error)

	// ListMine returns the files the principal uploaded, across folders.
	ListMine(ctx context.Context, principal models.Principal) ([]models.File, error)
}

// Upload is one incoming file in an upload batch.
type Upload struct {
	Name        string // original file name, becomes the stored path
	ContentType string // declared MIME type, drives classification
	Size        int64
	Content     io.Reader
}

// UploadError reports a single file that could not be stored.
type UploadError struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// UploadResult always carries both lists; a batch never fails wholesale once
// authorization has passed.
type UploadResult struct {
	Uploaded []models.File `json:"uploaded"`
	Errors   []UploadError `json:"errors"`
}

// DownloadResult is a stream handle plus the metadata a transport needs to
// serve it.
type DownloadResult struct {
	Content io.ReadCloser
	Name    string // original file name including extension
	Size    int64
	Type    models.FileType
}
