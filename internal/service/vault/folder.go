package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"driveshare/internal/config"
	"driveshare/internal/domain"
	"driveshare/internal/domain/models"
	"driveshare/internal/domain/repositories"
	"driveshare/internal/domain/services"
	"driveshare/internal/service/access"
	"driveshare/internal/storage"
)

var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

type folderService struct {
	folderRepo repositories.FolderRepository
	grantRepo  repositories.GrantRepository
	userRepo   repositories.UserRepository
	store      storage.Store
	txManager  repositories.TransactionManager
	locks      *LockTable
	logger     *slog.Logger
}

// NewFolderService creates the folder manager. The lock table must be shared
// with the file service so both serialize on the same folder.
func NewFolderService(
	folderRepo repositories.FolderRepository,
	grantRepo repositories.GrantRepository,
	userRepo repositories.UserRepository,
	store storage.Store,
	txManager repositories.TransactionManager,
	locks *LockTable,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		grantRepo:  grantRepo,
		userRepo:   userRepo,
		store:      store,
		txManager:  txManager,
		locks:      locks,
		logger:     logger,
	}
}

// Create persists a new folder owned by the principal. The sanitized path is
// checked for uniqueness across all owners: folder names are a shared
// namespace per visibility.
func (s *folderService) Create(ctx context.Context, principal models.Principal, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folderPath := FolderPath(req.Visibility, req.Name)

	exists, err := s.folderRepo.ExistsByPath(ctx, folderPath)
	if err != nil {
		return nil, fmt.Errorf("check folder path: %w", err)
	}
	if exists {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a folder at %q already exists", folderPath),
			ResourceType: "folder",
		}
	}

	now := time.Now()
	folder := &models.Folder{
		Name:       req.Name,
		Path:       folderPath,
		Visibility: req.Visibility,
		OwnerID:    principal.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"path", folder.Path,
		"visibility", folder.Visibility,
		"owner_id", principal.ID,
	)

	return folder, nil
}

// Share grants access to each target user. Target resolution failures fail
// the whole call before any grant is written; per-target conflicts
// (already shared, self-share) land in Skipped and the loop continues.
func (s *folderService) Share(ctx context.Context, principal models.Principal, folderID string, targets []services.ShareTarget) (*services.ShareResult, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no share targets", domain.ErrValidation)
	}
	for _, t := range targets {
		if !t.Permission.Valid() {
			return nil, fmt.Errorf("%w: unknown permission %q", domain.ErrValidation, t.Permission)
		}
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !folder.IsOwnedBy(principal.ID) {
		s.logger.Warn("share denied", "folder_id", folderID, "user_id", principal.ID)
		return nil, fmt.Errorf("only the owner can share a folder: %w", domain.ErrForbidden)
	}

	ids := make([]string, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.UserID)
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve share targets: %w", err)
	}
	if len(users) != len(targets) {
		return nil, fmt.Errorf("one or more users: %w", domain.ErrNotFound)
	}
	usersByID := make(map[string]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	unlock := s.locks.Lock(folderID)
	defer unlock()

	result := &services.ShareResult{
		Succeeded: []services.ShareOutcome{},
		Skipped:   []services.ShareOutcome{},
	}

	for _, target := range targets {
		user := usersByID[target.UserID]

		if target.UserID == principal.ID {
			result.Skipped = append(result.Skipped, services.ShareOutcome{
				UserID: user.ID,
				Email:  user.Email,
				Reason: "cannot share a folder with yourself",
			})
			continue
		}

		if _, err := s.grantRepo.Find(ctx, target.UserID, folderID); err == nil {
			result.Skipped = append(result.Skipped, services.ShareOutcome{
				UserID: user.ID,
				Email:  user.Email,
				Reason: fmt.Sprintf("user %s already has access to this folder", user.Email),
			})
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("check existing grant: %w", err)
		}

		grant := &models.Grant{
			UserID:     target.UserID,
			FolderID:   folderID,
			Permission: target.Permission,
		}
		err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			if err := s.grantRepo.Create(txCtx, grant); err != nil {
				return err
			}
			return s.folderRepo.SetShared(txCtx, folderID, true)
		})
		if err != nil {
			return nil, fmt.Errorf("create grant: %w", err)
		}

		result.Succeeded = append(result.Succeeded, services.ShareOutcome{
			UserID:     user.ID,
			Email:      user.Email,
			Permission: target.Permission,
		})
		s.logger.Info("folder shared",
			"folder_id", folderID,
			"target_user_id", user.ID,
			"permission", target.Permission,
		)
	}

	return result, nil
}

// UpdateGrantPermission changes an existing grant's level. Authorization is
// checked against the grant's own user id rather than the folder owner; the
// grant holder confirms the change on their grant.
func (s *folderService) UpdateGrantPermission(ctx context.Context, principal models.Principal, folderID, targetUserID string, permission models.Permission) (*models.Grant, error) {
	if !permission.Valid() {
		return nil, fmt.Errorf("%w: unknown permission %q", domain.ErrValidation, permission)
	}

	grant, err := s.grantRepo.Find(ctx, targetUserID, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no grant on folder %s for user %s: %w", folderID, targetUserID, domain.ErrNotFound)
		}
		return nil, err
	}

	if principal.ID != grant.UserID {
		s.logger.Warn("grant update denied", "folder_id", folderID, "user_id", principal.ID)
		return nil, fmt.Errorf("cannot update another user's grant: %w", domain.ErrForbidden)
	}

	grant.Permission = permission
	grant.UpdatedAt = time.Now()
	if err := s.grantRepo.Update(ctx, grant); err != nil {
		return nil, err
	}

	s.logger.Info("grant updated",
		"folder_id", folderID,
		"user_id", grant.UserID,
		"permission", permission,
	)
	return grant, nil
}

// RemoveGrant revokes a user's access. Owner only. The grant delete and the
// recount driving is_shared commit in one transaction.
func (s *folderService) RemoveGrant(ctx context.Context, principal models.Principal, folderID, targetUserID string) error {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return err
	}
	if !folder.IsOwnedBy(principal.ID) {
		s.logger.Warn("grant removal denied", "folder_id", folderID, "user_id", principal.ID)
		return fmt.Errorf("only the owner can revoke access: %w", domain.ErrForbidden)
	}

	grant, err := s.grantRepo.Find(ctx, targetUserID, folderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user %s has no access to this folder: %w", targetUserID, domain.ErrNotFound)
		}
		return err
	}

	unlock := s.locks.Lock(folderID)
	defer unlock()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.grantRepo.Delete(txCtx, grant.ID); err != nil {
			return err
		}
		count, err := s.grantRepo.CountByFolder(txCtx, folderID)
		if err != nil {
			return err
		}
		if count == 0 {
			return s.folderRepo.SetShared(txCtx, folderID, false)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove grant: %w", err)
	}

	s.logger.Info("grant removed", "folder_id", folderID, "target_user_id", targetUserID)
	return nil
}

// Rename renames the physical directory first and persists the metadata only
// after the rename landed; a storage failure leaves name and path untouched.
func (s *folderService) Rename(ctx context.Context, principal models.Principal, folderID, newName string) (*models.Folder, error) {
	if err := validateName(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	grant := s.findGrant(ctx, principal.ID, folderID)

	if !access.CanMutateFolder(principal.ID, folder, grant, access.ActionRename) {
		s.logger.Warn("folder rename denied", "folder_id", folderID, "user_id", principal.ID)
		return nil, fmt.Errorf("no permission to rename this folder: %w", domain.ErrForbidden)
	}

	unlock := s.locks.Lock(folderID)
	defer unlock()

	oldKey := folderKey(folder)
	newPath := FolderPath(folder.Visibility, newName)
	newFolder := *folder
	newFolder.Path = newPath
	newKey := folderKey(&newFolder)

	exists, err := s.store.Exists(ctx, newKey)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("destination %q already exists on storage", newPath),
			ResourceType: "folder",
		}
	}

	// The directory only exists once something was uploaded; renaming a
	// folder that never touched storage is metadata-only.
	oldExists, err := s.store.Exists(ctx, oldKey)
	if err != nil {
		return nil, err
	}
	if oldExists {
		if err := s.store.Move(ctx, oldKey, newKey); err != nil {
			return nil, err
		}
	}

	folder.Name = newName
	folder.Path = newPath
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed",
		"id", folder.ID,
		"path", folder.Path,
		"user_id", principal.ID,
	)
	return folder, nil
}

// Remove deletes a folder end to end: grants, then the physical tree, then
// the folder row. A storage failure aborts before the row removal so no
// metadata outlives its bytes unaccounted for.
func (s *folderService) Remove(ctx context.Context, principal models.Principal, folderID string) error {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return err
	}
	if !folder.IsOwnedBy(principal.ID) {
		s.logger.Warn("folder removal denied", "folder_id", folderID, "user_id", principal.ID)
		return fmt.Errorf("only the owner can remove a folder: %w", domain.ErrForbidden)
	}

	unlock := s.locks.Lock(folderID)
	defer unlock()

	if err := s.grantRepo.DeleteByFolder(ctx, folderID); err != nil {
		return fmt.Errorf("remove grants: %w", err)
	}

	if err := s.store.RemoveAll(ctx, folderKey(folder)); err != nil {
		return err
	}

	if err := s.folderRepo.Delete(ctx, folderID); err != nil {
		return err
	}

	s.logger.Info("folder removed", "id", folderID, "path", folder.Path, "owner_id", principal.ID)
	return nil
}

// ListGrants lists a folder's grants with their users. Owner only.
func (s *folderService) ListGrants(ctx context.Context, principal models.Principal, folderID string) ([]models.Grant, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !folder.IsOwnedBy(principal.ID) {
		return nil, fmt.Errorf("only the owner can view a folder's grants: %w", domain.ErrForbidden)
	}
	return s.grantRepo.ListByFolder(ctx, folderID)
}

func (s *folderService) ListOwned(ctx context.Context, principal models.Principal) ([]models.Folder, error) {
	return s.folderRepo.ListByOwner(ctx, principal.ID)
}

func (s *folderService) ListSharedWithMe(ctx context.Context, principal models.Principal) ([]models.Folder, error) {
	grants, err := s.grantRepo.ListByUser(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	folders := make([]models.Folder, 0, len(grants))
	for _, g := range grants {
		if g.Folder != nil {
			folders = append(folders, *g.Folder)
		}
	}
	return folders, nil
}

func (s *folderService) ListSharedByMe(ctx context.Context, principal models.Principal) ([]models.Folder, error) {
	return s.folderRepo.ListSharedByOwner(ctx, principal.ID)
}

func (s *folderService) ListPublicByOwnerEmail(ctx context.Context, email string) ([]models.Folder, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.folderRepo.ListPublicByOwner(ctx, user.ID)
}

// findGrant resolves the caller's grant for authorization; no grant is a
// normal outcome, other lookup failures are treated the same way and the
// decision falls back to ownership.
func (s *folderService) findGrant(ctx context.Context, userID, folderID string) *models.Grant {
	grant, err := s.grantRepo.Find(ctx, userID, folderID)
	if err != nil {
		return nil
	}
	return grant
}

func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
		),
		validation.Field(&req.Visibility,
			validation.Required,
			validation.In(models.VisibilityPrivate, models.VisibilityPublic),
		),
	)
}

func validateName(name string) error {
	return validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxFolderNameLength),
		validation.Match(folderNamePattern).Error("name cannot contain slashes"),
	)
}
