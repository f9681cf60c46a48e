package vault

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"driveshare/internal/config"
	"driveshare/internal/domain"
	"driveshare/internal/domain/models"
	"driveshare/internal/domain/repositories"
	"driveshare/internal/domain/services"
	"driveshare/internal/filetype"
	"driveshare/internal/service/access"
	"driveshare/internal/storage"
)

type fileService struct {
	fileRepo   repositories.FileRepository
	folderRepo repositories.FolderRepository
	grantRepo  repositories.GrantRepository
	types      *filetype.Registry
	store      storage.Store
	locks      *LockTable
	logger     *slog.Logger
}

// NewFileService creates the file manager. Takes the same lock table as the
// folder service.
func NewFileService(
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	grantRepo repositories.GrantRepository,
	types *filetype.Registry,
	store storage.Store,
	locks *LockTable,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		grantRepo:  grantRepo,
		types:      types,
		store:      store,
		locks:      locks,
		logger:     logger,
	}
}

// Upload stores a batch into the folder. Authorization gates the whole batch;
// once past it, each file succeeds or fails on its own.
func (s *fileService) Upload(ctx context.Context, principal models.Principal, folderID string, uploads []services.Upload) (*services.UploadResult, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files in upload", domain.ErrValidation)
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	grant := s.findGrant(ctx, principal.ID, folderID)

	if !access.CanMutateFolder(principal.ID, folder, grant, access.ActionUpload) {
		s.logger.Warn("upload denied", "folder_id", folderID, "user_id", principal.ID)
		return nil, fmt.Errorf("no permission to upload into this folder: %w", domain.ErrForbidden)
	}

	unlock := s.locks.Lock(folderID)
	defer unlock()

	if err := s.store.MkdirAll(ctx, folderKey(folder)); err != nil {
		return nil, err
	}

	result := &services.UploadResult{
		Uploaded: []models.File{},
		Errors:   []services.UploadError{},
	}

	for _, up := range uploads {
		if err := validateFileName(up.Name); err != nil {
			result.Errors = append(result.Errors, services.UploadError{
				Name:   up.Name,
				Reason: err.Error(),
			})
			continue
		}

		exists, err := s.fileRepo.ExistsByFolderAndPath(ctx, folderID, up.Name)
		if err != nil {
			return nil, fmt.Errorf("check file path: %w", err)
		}
		if exists {
			result.Errors = append(result.Errors, services.UploadError{
				Name:   up.Name,
				Reason: fmt.Sprintf("a file named %q already exists in this folder", up.Name),
			})
			continue
		}

		if _, err := s.store.Save(ctx, fileKey(folder, up.Name), up.Content); err != nil {
			s.logger.Error("file save failed", "folder_id", folderID, "name", up.Name, "error", err)
			result.Errors = append(result.Errors, services.UploadError{
				Name:   up.Name,
				Reason: "could not store file content",
			})
			continue
		}

		now := time.Now()
		file := &models.File{
			Name:      up.Name,
			Path:      up.Name,
			Type:      s.types.Classify(up.ContentType),
			Size:      up.Size,
			FolderID:  folderID,
			CreatorID: principal.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.fileRepo.Create(ctx, file); err != nil {
			// Roll the bytes back so the next attempt does not hit a
			// stale object with no row.
			if rmErr := s.store.Remove(ctx, fileKey(folder, up.Name)); rmErr != nil {
				s.logger.Error("orphan cleanup failed", "name", up.Name, "error", rmErr)
			}
			return nil, fmt.Errorf("create file record: %w", err)
		}

		result.Uploaded = append(result.Uploaded, *file)
		s.logger.Info("file uploaded",
			"id", file.ID,
			"folder_id", folderID,
			"name", file.Name,
			"type", file.Type,
			"size", file.Size,
			"creator_id", principal.ID,
		)
	}

	return result, nil
}

// Remove deletes the bytes first and the row after; a storage failure leaves
// the row in place.
func (s *fileService) Remove(ctx context.Context, principal models.Principal, fileID string) error {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	folder := file.Folder
	grant := s.findGrant(ctx, principal.ID, folder.ID)

	if !access.CanMutateFile(principal.ID, file, folder, grant) {
		s.logger.Warn("file removal denied", "file_id", fileID, "user_id", principal.ID)
		return fmt.Errorf("no permission to remove this file: %w", domain.ErrForbidden)
	}

	unlock := s.locks.Lock(folder.ID)
	defer unlock()

	if err := s.store.Remove(ctx, fileKey(folder, file.Path)); err != nil {
		return err
	}
	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return err
	}

	s.logger.Info("file removed", "id", fileID, "folder_id", folder.ID, "user_id", principal.ID)
	return nil
}

// Rename renames on storage first, keeping the original extension, then
// persists the new name and path.
func (s *fileService) Rename(ctx context.Context, principal models.Principal, fileID, newName string) (*models.File, error) {
	if err := validateFileName(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	folder := file.Folder
	grant := s.findGrant(ctx, principal.ID, folder.ID)

	if !access.CanMutateFile(principal.ID, file, folder, grant) {
		s.logger.Warn("file rename denied", "file_id", fileID, "user_id", principal.ID)
		return nil, fmt.Errorf("no permission to rename this file: %w", domain.ErrForbidden)
	}

	newFull := newName + path.Ext(file.Name)

	unlock := s.locks.Lock(folder.ID)
	defer unlock()

	exists, err := s.fileRepo.ExistsByFolderAndPath(ctx, folder.ID, newFull)
	if err != nil {
		return nil, fmt.Errorf("check file path: %w", err)
	}
	if exists {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a file named %q already exists in this folder", newFull),
			ResourceType: "file",
		}
	}

	if err := s.store.Move(ctx, fileKey(folder, file.Path), fileKey(folder, newFull)); err != nil {
		return nil, err
	}

	file.Name = newFull
	file.Path = newFull
	file.UpdatedAt = time.Now()
	if err := s.fileRepo.Update(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file renamed", "id", fileID, "name", file.Name, "user_id", principal.ID)
	return file, nil
}

// Download opens the physical file for streaming.
func (s *fileService) Download(ctx context.Context, principal models.Principal, fileID string) (*services.DownloadResult, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	folder := file.Folder
	grant := s.findGrant(ctx, principal.ID, folder.ID)

	if !access.CanView(principal.ID, folder, grant) {
		s.logger.Warn("download denied", "file_id", fileID, "user_id", principal.ID)
		return nil, fmt.Errorf("no permission to download this file: %w", domain.ErrForbidden)
	}

	content, err := s.store.Open(ctx, fileKey(folder, file.Path))
	if err != nil {
		return nil, err
	}
	return &services.DownloadResult{
		Content: content,
		Name:    file.Name,
		Size:    file.Size,
		Type:    file.Type,
	}, nil
}

// ListInFolder lists for owners and grant holders. A public folder does not
// open this path; anonymous readers go through ListInPublicFolder.
func (s *fileService) ListInFolder(ctx context.Context, principal models.Principal, folderID string) ([]models.File, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	grant := s.findGrant(ctx, principal.ID, folderID)

	if !access.CanListPrivate(principal.ID, folder, grant) {
		return nil, fmt.Errorf("no access to this folder: %w", domain.ErrForbidden)
	}
	return s.fileRepo.ListByFolder(ctx, folderID)
}

// ListInPublicFolder serves unauthenticated reads of public folders only.
func (s *fileService) ListInPublicFolder(ctx context.Context, folderID string) ([]models.File, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.Visibility != models.VisibilityPublic {
		return nil, fmt.Errorf("folder is not public: %w", domain.ErrForbidden)
	}
	return s.fileRepo.ListByFolder(ctx, folderID)
}

func (s *fileService) ListMine(ctx context.Context, principal models.Principal) ([]models.File, error) {
	return s.fileRepo.ListByCreator(ctx, principal.ID)
}

func (s *fileService) findGrant(ctx context.Context, userID, folderID string) *models.Grant {
	grant, err := s.grantRepo.Find(ctx, userID, folderID)
	if err != nil {
		return nil
	}
	return grant
}

func validateFileName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxFileNameLength),
		validation.Match(folderNamePattern).Error("name cannot contain slashes"),
	)
}
