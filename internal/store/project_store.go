package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/tracks/internal/model"
)

const projectColumns = `id, user_id, name, description, state, position,
	last_reviewed_at, completed_at, created_at, updated_at`

// CreateProject inserts a new project at the end of the user's list.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *model.Project) error {
	if project.State == "" {
		project.State = model.ProjectStateActive
	}
	if err := project.Validate().Err(); err != nil {
		return err
	}
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	ts := now()
	project.CreatedAt = ts
	project.UpdatedAt = ts

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkNameFree(ctx, tx, "projects", project.UserID, project.Name, project.ID); err != nil {
			return err
		}

		if project.Position == 0 {
			var maxPos int
			err := tx.GetContext(ctx, &maxPos,
				"SELECT COALESCE(MAX(position), 0) FROM projects WHERE user_id = ?", project.UserID)
			if err != nil {
				return fmt.Errorf("getting max project position: %w", err)
			}
			project.Position = maxPos + 1
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			project.ID, project.UserID, project.Name, project.Description,
			project.State, project.Position,
			utcPtr(project.LastReviewedAt), utcPtr(project.CompletedAt),
			project.CreatedAt, project.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("creating project: %w", err)
		}
		return nil
	})
}

// UpdateProject updates an existing project. Moving into the completed
// state stamps completed_at; leaving it clears the stamp.
func (s *SQLiteStore) UpdateProject(ctx context.Context, project *model.Project) error {
	if err := project.Validate().Err(); err != nil {
		return err
	}
	ts := now()
	project.UpdatedAt = ts
	if project.State == model.ProjectStateCompleted && project.CompletedAt == nil {
		project.CompletedAt = &ts
	} else if project.State != model.ProjectStateCompleted {
		project.CompletedAt = nil
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkNameFree(ctx, tx, "projects", project.UserID, project.Name, project.ID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE projects SET
				name = ?, description = ?, state = ?, position = ?,
				last_reviewed_at = ?, completed_at = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`,
			project.Name, project.Description, project.State, project.Position,
			utcPtr(project.LastReviewedAt), utcPtr(project.CompletedAt), project.UpdatedAt,
			project.ID, project.UserID,
		)
		if err != nil {
			return fmt.Errorf("updating project %s: %w", project.ID, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return notFound("project", project.ID)
		}
		return nil
	})
}

// MarkProjectReviewed stamps last_reviewed_at.
func (s *SQLiteStore) MarkProjectReviewed(ctx context.Context, userID, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE projects SET last_reviewed_at = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		at.UTC(), now(), id, userID)
	if err != nil {
		return fmt.Errorf("reviewing project %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound("project", id)
	}
	return nil
}

// DeleteProject removes a project with its todos and notes.
func (s *SQLiteStore) DeleteProject(ctx context.Context, userID, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM dependencies
			WHERE predecessor_id IN (SELECT id FROM todos WHERE project_id = ?1)
			   OR successor_id IN (SELECT id FROM todos WHERE project_id = ?1)`, id)
		if err != nil {
			return fmt.Errorf("deleting dependencies of project %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM todos WHERE project_id = ?", id); err != nil {
			return fmt.Errorf("deleting todos of project %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE project_id = ?", id); err != nil {
			return fmt.Errorf("deleting notes of project %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx,
			"DELETE FROM projects WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return fmt.Errorf("deleting project %s: %w", id, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return notFound("project", id)
		}
		return nil
	})
}

// GetProjectByID retrieves one of a user's projects.
func (s *SQLiteStore) GetProjectByID(
	ctx context.Context,
	userID, id string,
) (*model.Project, error) {
	var project model.Project
	err := s.db.GetContext(ctx, &project,
		"SELECT "+projectColumns+" FROM projects WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %s: %w", id, err)
	}
	return &project, nil
}

// GetProjects retrieves a user's projects ordered by position.
func (s *SQLiteStore) GetProjects(
	ctx context.Context,
	userID string,
) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.SelectContext(ctx, &projects,
		"SELECT "+projectColumns+" FROM projects WHERE user_id = ? ORDER BY position ASC, created_at ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	return projects, nil
}

// CountActiveTodosByProject returns the number of active todos per
// project id for a user, in one grouped query.
func (s *SQLiteStore) CountActiveTodosByProject(
	ctx context.Context,
	userID string,
) (map[string]int, error) {
	counts, err := groupCounts(ctx, s.db, `
		SELECT project_id, COUNT(*) FROM todos
		WHERE user_id = ? AND state = ? AND project_id IS NOT NULL
		GROUP BY project_id`, userID, model.TodoStateActive)
	if err != nil {
		return nil, fmt.Errorf("counting active todos by project: %w", err)
	}
	return counts, nil
}

// checkNameFree reports a duplicate per-user name as a validation error.
func checkNameFree(ctx context.Context, q sqlx.QueryerContext, table, userID, name, exceptID string) error {
	var taken int
	err := sqlx.GetContext(ctx, q, &taken,
		"SELECT COUNT(*) FROM "+table+" WHERE user_id = ? AND name = ? AND id != ?",
		userID, name, exceptID)
	if err != nil {
		return fmt.Errorf("checking name %q: %w", name, err)
	}
	if taken > 0 {
		v := model.ValidationErrors{}
		v.Add("name", model.MsgTaken)
		return v
	}
	return nil
}
