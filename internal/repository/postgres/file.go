package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"driveshare/internal/domain"
	"driveshare/internal/domain/models"
	"driveshare/internal/domain/repositories"
)

// PostgresFileRepository implements the FileRepository interface.
type PostgresFileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository creates a new file repository.
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{pool: config.Pool}
}

// Create inserts a new file. The unique index on (folder_id, path) reports
// duplicates.
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (name, path, type, size, folder_id, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		file.Name,
		file.Path,
		file.Type,
		file.Size,
		file.FolderID,
		file.CreatorID,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("file '%s': %w", file.Path, domain.ErrConflict)
		}
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", file.FolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file with its folder, the folder's owner, and its
// creator loaded. Authorization needs all three.
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `
		SELECT fi.id, fi.name, fi.path, fi.type, fi.size, fi.folder_id, fi.creator_id,
		       fi.created_at, fi.updated_at,
		       fo.id, fo.name, fo.path, fo.visibility, fo.is_shared, fo.owner_id,
		       fo.created_at, fo.updated_at,
		       o.id, o.name, o.last_name, o.email, o.role, o.created_at, o.updated_at, o.deleted_at,
		       c.id, c.name, c.last_name, c.email, c.role, c.created_at, c.updated_at, c.deleted_at
		FROM files fi
		JOIN folders fo ON fo.id = fi.folder_id
		JOIN users o ON o.id = fo.owner_id
		JOIN users c ON c.id = fi.creator_id
		WHERE fi.id = $1
	`

	var file models.File
	var folder models.Folder
	var owner, creator models.User
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.Name,
		&file.Path,
		&file.Type,
		&file.Size,
		&file.FolderID,
		&file.CreatorID,
		&file.CreatedAt,
		&file.UpdatedAt,
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
		&creator.ID,
		&creator.Name,
		&creator.LastName,
		&creator.Email,
		&creator.Role,
		&creator.CreatedAt,
		&creator.UpdatedAt,
		&creator.DeletedAt,
	)

	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	folder.Owner = &owner
	file.Folder = &folder
	file.Creator = &creator
	return &file, nil
}

// ExistsByFolderAndPath reports whether the folder already holds a file at
// the stored path.
func (r *PostgresFileRepository) ExistsByFolderAndPath(ctx context.Context, folderID, path string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM files WHERE folder_id = $1 AND path = $2)`

	var exists bool
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID, path).Scan(&exists); err != nil {
		return false, fmt.Errorf("check file path: %w", err)
	}
	return exists, nil
}

// Update persists name and path.
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := `
		UPDATE files
		SET name = $1, path = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		file.Name,
		file.Path,
		file.UpdatedAt,
		file.ID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("file '%s': %w", file.Path, domain.ErrConflict)
		}
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", file.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes the file row.
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM files WHERE id = $1`

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByFolder lists the folder's files with creators loaded.
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	query := `
		SELECT fi.id, fi.name, fi.path, fi.type, fi.size, fi.folder_id, fi.creator_id,
		       fi.created_at, fi.updated_at,
		       c.id, c.name, c.last_name, c.email, c.role, c.created_at, c.updated_at, c.deleted_at
		FROM files fi
		JOIN users c ON c.id = fi.creator_id
		WHERE fi.folder_id = $1
		ORDER BY fi.created_at DESC
	`

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var file models.File
		var creator models.User
		err := rows.Scan(
			&file.ID,
			&file.Name,
			&file.Path,
			&file.Type,
			&file.Size,
			&file.FolderID,
			&file.CreatorID,
			&file.CreatedAt,
			&file.UpdatedAt,
			&creator.ID,
			&creator.Name,
			&creator.LastName,
			&creator.Email,
			&creator.Role,
			&creator.CreatedAt,
			&creator.UpdatedAt,
			&creator.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		file.Creator = &creator
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// ListByCreator lists the user's uploads across folders, with folders loaded.
func (r *PostgresFileRepository) ListByCreator(ctx context.Context, creatorID string) ([]models.File, error) {
	query := `
		SELECT fi.id, fi.name, fi.path, fi.type, fi.size, fi.folder_id, fi.creator_id,
		       fi.created_at, fi.updated_at,
		       fo.id, fo.name, fo.path, fo.visibility, fo.is_shared, fo.owner_id,
		       fo.created_at, fo.updated_at
		FROM files fi
		JOIN folders fo ON fo.id = fi.folder_id
		WHERE fi.creator_id = $1
		ORDER BY fi.created_at DESC
	`

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list files by creator: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var file models.File
		var folder models.Folder
		err := rows.Scan(
			&file.ID,
			&file.Name,
			&file.Path,
			&file.Type,
			&file.Size,
			&file.FolderID,
			&file.CreatorID,
			&file.CreatedAt,
			&file.UpdatedAt,
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
			return nil, fmt.Errorf("scan file: %w", err)
		}
		file.Folder = &folder
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}
