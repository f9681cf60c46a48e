package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"driveshare/internal/domain"
	"driveshare/internal/domain/models"
	"driveshare/internal/domain/repositories"
)

// PostgresGrantRepository implements the GrantRepository interface. Grants
// live in the user_folders join table.
type PostgresGrantRepository struct {
	pool *pgxpool.Pool
}

// NewGrantRepository creates a new grant repository.
func NewGrantRepository(config *RepositoryConfig) repositories.GrantRepository {
	return &PostgresGrantRepository{pool: config.Pool}
}

// Create inserts a grant. The unique index on (user_id, folder_id) reports a
// user who already holds access.
func (r *PostgresGrantRepository) Create(ctx context.Context, grant *models.Grant) error {
	query := `
		INSERT INTO user_folders (user_id, folder_id, permission, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, created_at, updated_at
	`

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		grant.UserID,
		grant.FolderID,
		grant.Permission,
	).Scan(&grant.ID, &grant.CreatedAt, &grant.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("user %s already has access to folder %s: %w", grant.UserID, grant.FolderID, domain.ErrConflict)
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("user or folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create grant: %w", err)
	}

	return nil
}

// Find retrieves the grant held by the user on the folder.
func (r *PostgresGrantRepository) Find(ctx context.Context, userID, folderID string) (*models.Grant, error) {
	query := `
		SELECT id, user_id, folder_id, permission, created_at, updated_at
		FROM user_folders
		WHERE user_id = $1 AND folder_id = $2
	`

	var grant models.Grant
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID, folderID).Scan(
		&grant.ID,
		&grant.UserID,
		&grant.FolderID,
		&grant.Permission,
		&grant.CreatedAt,
		&grant.UpdatedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("grant for user %s on folder %s: %w", userID, folderID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find grant: %w", err)
	}

	return &grant, nil
}

// Update persists the permission level.
func (r *PostgresGrantRepository) Update(ctx context.Context, grant *models.Grant) error {
	query := `
		UPDATE user_folders
		SET permission = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		grant.Permission,
		grant.UpdatedAt,
		grant.ID,
	)
	if err != nil {
		return fmt.Errorf("update grant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("grant %s: %w", grant.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes one grant row.
func (r *PostgresGrantRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM user_folders WHERE id = $1`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("grant %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteByFolder removes every grant on the folder. Zero rows is fine; the
// folder may never have been shared.
func (r *PostgresGrantRepository) DeleteByFolder(ctx context.Context, folderID string) error {
	query := `DELETE FROM user_folders WHERE folder_id = $1`

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID); err != nil {
		return fmt.Errorf("delete grants by folder: %w", err)
	}
	return nil
}

// CountByFolder counts the grants on the folder.
func (r *PostgresGrantRepository) CountByFolder(ctx context.Context, folderID string) (int, error) {
	query := `SELECT count(*) FROM user_folders WHERE folder_id = $1`

	var count int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count grants: %w", err)
	}
	return count, nil
}

// ListByFolder lists the folder's grants with their users loaded.
func (r *PostgresGrantRepository) ListByFolder(ctx context.Context, folderID string) ([]models.Grant, error) {
	query := `
		SELECT g.id, g.user_id, g.folder_id, g.permission, g.created_at, g.updated_at,
		       u.id, u.name, u.last_name, u.email, u.role, u.created_at, u.updated_at, u.deleted_at
		FROM user_folders g
		JOIN users u ON u.id = g.user_id
		WHERE g.folder_id = $1
		ORDER BY g.created_at ASC
	`

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var grants []models.Grant
	for rows.Next() {
		var grant models.Grant
		var user models.User
		err := rows.Scan(
			&grant.ID,
			&grant.UserID,
			&grant.FolderID,
			&grant.Permission,
			&grant.CreatedAt,
			&grant.UpdatedAt,
			&user.ID,
			&user.Name,
			&user.LastName,
			&user.Email,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grant.User = &user
		grants = append(grants, grant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}

	return grants, nil
}

// ListByUser lists the user's grants with folders and folder owners loaded.
func (r *PostgresGrantRepository) ListByUser(ctx context.Context, userID string) ([]models.Grant, error) {
	query := `
		SELECT g.id, g.user_id, g.folder_id, g.permission, g.created_at, g.updated_at,
		       f.id, f.name, f.path, f.visibility, f.is_shared, f.owner_id,
		       f.created_at, f.updated_at,
		       o.id, o.name, o.last_name, o.email, o.role, o.created_at, o.updated_at, o.deleted_at
		FROM user_folders g
		JOIN folders f ON f.id = g.folder_id
		JOIN users o ON o.id = f.owner_id
		WHERE g.user_id = $1
		ORDER BY g.created_at DESC
	`

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list grants by user: %w", err)
	}
	defer rows.Close()

	var grants []models.Grant
	for rows.Next() {
		var grant models.Grant
		var folder models.Folder
		var owner models.User
		err := rows.Scan(
			&grant.ID,
			&grant.UserID,
			&grant.FolderID,
			&grant.Permission,
			&grant.CreatedAt,
			&grant.UpdatedAt,
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
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		folder.Owner = &owner
		grant.Folder = &folder
		grants = append(grants, grant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grants: %w", err)
	}

	return grants, nil
}
