package repository

import (
	"context"
	"errors"
	"fmt"

	"boardshoot-server/internal/domain"

	"github.com/jackc/pgx/v5"
)

// NoteRepository lookups are scoped by folder. Texts and images are stored in child tables
// with an explicit position column.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	ListByFolder(ctx context.Context, folderID int64) ([]*domain.Note, error)
	FindInFolder(ctx context.Context, folderID, noteID int64) (*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, folderID, noteID int64) error
}

type noteRepository struct {
	db DBTX
}

func NewNoteRepository(db DBTX) NoteRepository {
	return &noteRepository{db: db}
}

const noteColumns = `id, title, folder_id, user_id, version, created_at, updated_at`

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO notes (title, folder_id, user_id) VALUES ($1, $2, $3)
			 RETURNING id, version, created_at, updated_at`,
			note.Title, note.FolderID, note.UserID,
		).Scan(&note.ID, &note.Version, &note.CreatedAt, &note.UpdatedAt)
		if err != nil {
			if foreignKeyViolation(err) {
				return ErrFolderNotFound
			}
			return fmt.Errorf("failed to create note: %w", err)
		}

		return writeChildren(ctx, tx, note)
	})
}

func (r *noteRepository) ListByFolder(ctx context.Context, folderID int64) ([]*domain.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE folder_id = $1 ORDER BY id`, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}

	notes := []*domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		notes = append(notes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	if err := r.loadChildren(ctx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *noteRepository) FindInFolder(ctx context.Context, folderID, noteID int64) (*domain.Note, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND folder_id = $2`, noteID, folderID)
	note, err := scanNote(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, []*domain.Note{note}); err != nil {
		return nil, err
	}
	return note, nil
}

// Update replaces title, texts and images if the stored version still equals note.Version.
// A note deleted meanwhile is ErrNoteNotFound rather than a conflict.
func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`UPDATE notes SET title = $1, version = version + 1, updated_at = now()
			 WHERE id = $2 AND folder_id = $3 AND version = $4
			 RETURNING version, updated_at`,
			note.Title, note.ID, note.FolderID, note.Version,
		).Scan(&note.Version, &note.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return missingOrStale(ctx, tx,
				`SELECT EXISTS (SELECT 1 FROM notes WHERE id = $1 AND folder_id = $2)`,
				ErrNoteNotFound, note.ID, note.FolderID)
		}
		if err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM note_texts WHERE note_id = $1`, note.ID); err != nil {
			return fmt.Errorf("failed to clear note texts: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM note_images WHERE note_id = $1`, note.ID); err != nil {
			return fmt.Errorf("failed to clear note images: %w", err)
		}

		return writeChildren(ctx, tx, note)
	})
}

func (r *noteRepository) Delete(ctx context.Context, folderID, noteID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND folder_id = $2`, noteID, folderID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func writeChildren(ctx context.Context, tx pgx.Tx, note *domain.Note) error {
	for i, text := range note.Texts {
		if _, err := tx.Exec(ctx,
			`INSERT INTO note_texts (note_id, position, content) VALUES ($1, $2, $3)`,
			note.ID, i, text); err != nil {
			return fmt.Errorf("failed to write note text: %w", err)
		}
	}

	for i, img := range note.Images {
		if _, err := tx.Exec(ctx,
			`INSERT INTO note_images (note_id, position, kind, ref) VALUES ($1, $2, $3, $4)`,
			note.ID, i, string(img.Kind), img.Value); err != nil {
			return fmt.Errorf("failed to write note image: %w", err)
		}
	}

	return nil
}

func (r *noteRepository) loadChildren(ctx context.Context, notes []*domain.Note) error {
	if len(notes) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Note, len(notes))
	ids := make([]int64, 0, len(notes))
	for _, n := range notes {
		n.Texts = []string{}
		n.Images = []domain.ImageRef{}
		byID[n.ID] = n
		ids = append(ids, n.ID)
	}

	rows, err := r.db.Query(ctx,
		`SELECT note_id, content FROM note_texts WHERE note_id = ANY($1) ORDER BY note_id, position`, ids)
	if err != nil {
		return fmt.Errorf("failed to query note texts: %w", err)
	}
	for rows.Next() {
		var noteID int64
		var content string
		if err := rows.Scan(&noteID, &content); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan note text: %w", err)
		}
		byID[noteID].Texts = append(byID[noteID].Texts, content)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate note texts: %w", err)
	}

	rows, err = r.db.Query(ctx,
		`SELECT note_id, kind, ref FROM note_images WHERE note_id = ANY($1) ORDER BY note_id, position`, ids)
	if err != nil {
		return fmt.Errorf("failed to query note images: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var noteID int64
		var kind, ref string
		if err := rows.Scan(&noteID, &kind, &ref); err != nil {
			return fmt.Errorf("failed to scan note image: %w", err)
		}
		byID[noteID].Images = append(byID[noteID].Images, domain.ImageRef{Kind: domain.ImageKind(kind), Value: ref})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate note images: %w", err)
	}

	return nil
}

func scanNote(row pgx.Row) (*domain.Note, error) {
	var n domain.Note
	err := row.Scan(&n.ID, &n.Title, &n.FolderID, &n.UserID, &n.Version, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}
	return &n, nil
}
