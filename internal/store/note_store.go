package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/tracks/internal/model"
)

const noteColumns = "id, user_id, project_id, body, created_at, updated_at"

// CreateNote attaches a note to one of the user's projects.
func (s *SQLiteStore) CreateNote(ctx context.Context, note *model.Note) error {
	if err := note.Validate().Err(); err != nil {
		return err
	}
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	ts := now()
	note.CreatedAt = ts
	note.UpdatedAt = ts

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var n int
		err := tx.GetContext(ctx, &n,
			"SELECT COUNT(*) FROM projects WHERE id = ? AND user_id = ?", note.ProjectID, note.UserID)
		if err != nil {
			return fmt.Errorf("checking project %s: %w", note.ProjectID, err)
		}
		if n == 0 {
			return model.ValidationErrors{"project": {"is invalid"}}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO notes (id, user_id, project_id, body, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			note.ID, note.UserID, note.ProjectID, note.Body, note.CreatedAt, note.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("creating note: %w", err)
		}
		return nil
	})
}

// UpdateNote rewrites a note's body.
func (s *SQLiteStore) UpdateNote(ctx context.Context, note *model.Note) error {
	if err := note.Validate().Err(); err != nil {
		return err
	}
	note.UpdatedAt = now()

	result, err := s.db.ExecContext(ctx,
		"UPDATE notes SET body = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		note.Body, note.UpdatedAt, note.ID, note.UserID)
	if err != nil {
		return fmt.Errorf("updating note %s: %w", note.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound("note", note.ID)
	}
	return nil
}

// DeleteNote removes one of the user's notes.
func (s *SQLiteStore) DeleteNote(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("deleting note %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound("note", id)
	}
	return nil
}

// GetNoteByID retrieves one of the user's notes.
func (s *SQLiteStore) GetNoteByID(ctx context.Context, userID, id string) (*model.Note, error) {
	var note model.Note
	err := s.db.GetContext(ctx, &note,
		"SELECT "+noteColumns+" FROM notes WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("note", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting note %s: %w", id, err)
	}
	return &note, nil
}

// GetNotes returns all of the user's notes, newest first.
func (s *SQLiteStore) GetNotes(ctx context.Context, userID string) ([]model.Note, error) {
	var notes []model.Note
	err := s.db.SelectContext(ctx, &notes,
		"SELECT "+noteColumns+" FROM notes WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	return notes, nil
}

// GetProjectNotes returns a project's notes, newest first.
func (s *SQLiteStore) GetProjectNotes(ctx context.Context, userID, projectID string) ([]model.Note, error) {
	var notes []model.Note
	err := s.db.SelectContext(ctx, &notes,
		"SELECT "+noteColumns+" FROM notes WHERE user_id = ? AND project_id = ? ORDER BY created_at DESC",
		userID, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying notes for project %s: %w", projectID, err)
	}
	return notes, nil
}

// CountNotesByProject counts the user's notes per project in one query.
// Projects without notes are absent from the map.
func (s *SQLiteStore) CountNotesByProject(ctx context.Context, userID string) (map[string]int, error) {
	counts, err := groupCounts(ctx, s.db,
		"SELECT project_id, COUNT(*) FROM notes WHERE user_id = ? GROUP BY project_id", userID)
	if err != nil {
		return nil, fmt.Errorf("counting notes by project: %w", err)
	}
	return counts, nil
}
