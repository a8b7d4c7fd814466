package repository

import (
	"context"
	"errors"
	"fmt"

	"boardshoot-server/internal/domain"

	"github.com/jackc/pgx/v5"
)

// FolderRepository lookups are scoped by owner: a folder owned by someone else is ErrFolderNotFound.
type FolderRepository interface {
	Create(ctx context.Context, folder *domain.Folder) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.Folder, error)
	FindForUser(ctx context.Context, userID, folderID int64) (*domain.Folder, error)
	FindByName(ctx context.Context, userID int64, name string) (*domain.Folder, error)
	Update(ctx context.Context, folder *domain.Folder) error
	Delete(ctx context.Context, userID, folderID int64) error
}

type folderRepository struct {
	db DBTX
}

func NewFolderRepository(db DBTX) FolderRepository {
	return &folderRepository{db: db}
}

const folderColumns = `id, name, user_id, version, created_at, updated_at`

func (r *folderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO folders (name, user_id) VALUES ($1, $2)
		 RETURNING id, version, created_at, updated_at`,
		folder.Name, folder.UserID,
	).Scan(&folder.ID, &folder.Version, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		if foreignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

func (r *folderRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Folder, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query folders: %w", err)
	}
	defer rows.Close()

	folders := []*domain.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate folders: %w", err)
	}

	return folders, nil
}

func (r *folderRepository) FindForUser(ctx context.Context, userID, folderID int64) (*domain.Folder, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = $1 AND user_id = $2`, folderID, userID)
	return scanFolder(row)
}

func (r *folderRepository) FindByName(ctx context.Context, userID int64, name string) (*domain.Folder, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE user_id = $1 AND name = $2 ORDER BY id LIMIT 1`, userID, name)
	return scanFolder(row)
}

// Update writes the name only if the stored version still equals folder.Version.
func (r *folderRepository) Update(ctx context.Context, folder *domain.Folder) error {
	err := r.db.QueryRow(ctx,
		`UPDATE folders SET name = $1, version = version + 1, updated_at = now()
		 WHERE id = $2 AND user_id = $3 AND version = $4
		 RETURNING version, updated_at`,
		folder.Name, folder.ID, folder.UserID, folder.Version,
	).Scan(&folder.Version, &folder.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return missingOrStale(ctx, r.db,
			`SELECT EXISTS (SELECT 1 FROM folders WHERE id = $1 AND user_id = $2)`,
			ErrFolderNotFound, folder.ID, folder.UserID)
	}
	if err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}
	return nil
}

// Delete removes the folder; notes and their texts/images go with it through ON DELETE CASCADE.
func (r *folderRepository) Delete(ctx context.Context, userID, folderID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM folders WHERE id = $1 AND user_id = $2`, folderID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFolderNotFound
	}
	return nil
}

func scanFolder(row pgx.Row) (*domain.Folder, error) {
	var f domain.Folder
	err := row.Scan(&f.ID, &f.Name, &f.UserID, &f.Version, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFolderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan folder: %w", err)
	}
	return &f, nil
}
