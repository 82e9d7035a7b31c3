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

const contextColumns = `id, user_id, name, state, position, created_at, updated_at`

// CreateContext inserts a new context at the end of the user's list.
func (s *SQLiteStore) CreateContext(ctx context.Context, c *model.Context) error {
	if c.State == "" {
		c.State = model.ContextStateActive
	}
	if err := c.Validate().Err(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	ts := now()
	c.CreatedAt = ts
	c.UpdatedAt = ts

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkNameFree(ctx, tx, "contexts", c.UserID, c.Name, c.ID); err != nil {
			return err
		}

		if c.Position == 0 {
			var maxPos int
			err := tx.GetContext(ctx, &maxPos,
				"SELECT COALESCE(MAX(position), 0) FROM contexts WHERE user_id = ?", c.UserID)
			if err != nil {
				return fmt.Errorf("getting max context position: %w", err)
			}
			c.Position = maxPos + 1
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO contexts (`+contextColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.UserID, c.Name, c.State, c.Position, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("creating context: %w", err)
		}
		return nil
	})
}

// UpdateContext updates an existing context.
func (s *SQLiteStore) UpdateContext(ctx context.Context, c *model.Context) error {
	if err := c.Validate().Err(); err != nil {
		return err
	}
	c.UpdatedAt = now()

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkNameFree(ctx, tx, "contexts", c.UserID, c.Name, c.ID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE contexts SET name = ?, state = ?, position = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`,
			c.Name, c.State, c.Position, c.UpdatedAt, c.ID, c.UserID,
		)
		if err != nil {
			return fmt.Errorf("updating context %s: %w", c.ID, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return notFound("context", c.ID)
		}
		return nil
	})
}

// DeleteContext removes a context with its todos and recurring todos.
func (s *SQLiteStore) DeleteContext(ctx context.Context, userID, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM dependencies
			WHERE predecessor_id IN (SELECT id FROM todos WHERE context_id = ?1)
			   OR successor_id IN (SELECT id FROM todos WHERE context_id = ?1)`, id)
		if err != nil {
			return fmt.Errorf("deleting dependencies of context %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM todos WHERE context_id = ?", id); err != nil {
			return fmt.Errorf("deleting todos of context %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM recurring_todos WHERE context_id = ?", id); err != nil {
			return fmt.Errorf("deleting recurring todos of context %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx,
			"DELETE FROM contexts WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return fmt.Errorf("deleting context %s: %w", id, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return notFound("context", id)
		}
		return nil
	})
}

// GetContextByID retrieves one of a user's contexts.
func (s *SQLiteStore) GetContextByID(
	ctx context.Context,
	userID, id string,
) (*model.Context, error) {
	var c model.Context
	err := s.db.GetContext(ctx, &c,
		"SELECT "+contextColumns+" FROM contexts WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("context", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting context %s: %w", id, err)
	}
	return &c, nil
}

// GetContexts retrieves a user's contexts ordered by position.
func (s *SQLiteStore) GetContexts(
	ctx context.Context,
	userID string,
) ([]model.Context, error) {
	var contexts []model.Context
	err := s.db.SelectContext(ctx, &contexts,
		"SELECT "+contextColumns+" FROM contexts WHERE user_id = ? ORDER BY position ASC, created_at ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying contexts: %w", err)
	}
	return contexts, nil
}
