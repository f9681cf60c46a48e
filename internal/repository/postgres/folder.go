package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"driveshare/internal/domain"
	"driveshare/internal/domain/models"
	"driveshare/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface.
type PostgresFolderRepository struct {
	pool *pgxpool.Pool
}

// NewFolderRepository creates a new folder repository.
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{pool: config.Pool}
}

// Create inserts a new folder. The unique index on path reports duplicates.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := `
		INSERT INTO folders (name, path, visibility, is_shared, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.Name,
		folder.Path,
		folder.Visibility,
		folder.IsShared,
		folder.OwnerID,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder at '%s': %w", folder.Path, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder with its owner loaded.
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := `
		SELECT f.id, f.name, f.path, f.visibility, f.is_shared, f.owner_id,
		       f.created_at, f.updated_at,
		       u.id, u.name, u.last_name, u.email, u.role, u.created_at, u.updated_at, u.deleted_at
		FROM folders f
		JOIN users u ON u.id = f.owner_id
		WHERE f.id = $1
	`

	var folder models.Folder
	var owner models.User
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.Name,
		&folder.Path,
		&folder.Visibility,
		&folder.IsShared,
		&folder.OwnerID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
		&owner.ID,
		&owner.Name,
		&owner.LastName,
		&owner.Email,
		&owner.Role,
		&owner.CreatedAt,
		&owner.UpdatedAt,
		&owner.DeletedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	folder.Owner = &owner
	return &folder, nil
}

// ExistsByPath reports whether any folder uses the logical path. Paths are a
// single namespace across owners.
func (r *PostgresFolderRepository) ExistsByPath(ctx context.Context, path string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM folders WHERE path = $1)`

	var exists bool
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, path).Scan(&exists); err != nil {
		return false, fmt.Errorf("check folder path: %w", err)
	}
	return exists, nil
}

// Update persists name, path, visibility and is_shared.
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := `
		UPDATE folders
		SET name = $1, path = $2, visibility = $3, is_shared = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.Name,
		folder.Path,
		folder.Visibility,
		folder.IsShared,
		folder.UpdatedAt,
		folder.ID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder at '%s': %w", folder.Path, domain.ErrConflict)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// SetShared flips the derived is_shared flag.
func (r *PostgresFolderRepository) SetShared(ctx context.Context, id string, shared bool) error {
	query := `UPDATE folders SET is_shared = $1, updated_at = now() WHERE id = $2`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, shared, id)
	if err != nil {
		return fmt.Errorf("set folder shared: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the folder row. Files cascade via their foreign key.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM folders WHERE id = $1`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByOwner lists all folders owned by the user.
func (r *PostgresFolderRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Folder, error) {
	return r.list(ctx, `owner_id = $1`, ownerID)
}

// ListPublicByOwner lists the owner's public folders.
func (r *PostgresFolderRepository) ListPublicByOwner(ctx context.Context, ownerID string) ([]models.Folder, error) {
	return r.list(ctx, `owner_id = $1 AND visibility = 'public'`, ownerID)
}

// ListSharedByOwner lists the owner's folders that hold at least one grant.
func (r *PostgresFolderRepository) ListSharedByOwner(ctx context.Context, ownerID string) ([]models.Folder, error) {
	return r.list(ctx, `owner_id = $1 AND is_shared = true`, ownerID)
}

func (r *PostgresFolderRepository) list(ctx context.Context, where string, args ...any) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, path, visibility, is_shared, owner_id, created_at, updated_at
		FROM folders
		WHERE %s
		ORDER BY created_at DESC
	`, where)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.Path,
			&folder.Visibility,
			&folder.IsShared,
			&folder.OwnerID,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}
