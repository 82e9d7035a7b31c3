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

const recurringColumns = `id, user_id, context_id, project_id, description, notes, state,
	recurring_period, every_count, start_from, ends_on, number_of_occurrences,
	occurrences_count, last_occurrence, completed_at, created_at, updated_at`

// CreateRecurringTodo inserts a new recurring todo template.
func (s *SQLiteStore) CreateRecurringTodo(ctx context.Context, rec *model.RecurringTodo) error {
	if rec.State == "" {
		rec.State = model.RecurringStateActive
	}
	if rec.EveryCount == 0 {
		rec.EveryCount = 1
	}
	if err := rec.Validate().Err(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	ts := now()
	rec.CreatedAt = ts
	rec.UpdatedAt = ts

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		owner := &model.Todo{UserID: rec.UserID, ContextID: rec.ContextID, ProjectID: rec.ProjectID}
		if err := checkTodoOwnership(ctx, tx, owner); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO recurring_todos (
				id, user_id, context_id, project_id, description, notes, state,
				recurring_period, every_count, start_from, ends_on, number_of_occurrences,
				occurrences_count, last_occurrence, completed_at, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.UserID, rec.ContextID, rec.ProjectID, rec.Description, rec.Notes, rec.State,
			rec.RecurringPeriod, rec.EveryCount, rec.StartFrom.UTC(), utcPtr(rec.EndsOn),
			rec.NumberOfOccurrences, rec.OccurrencesCount, utcPtr(rec.LastOccurrence),
			utcPtr(rec.CompletedAt), rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("creating recurring todo: %w", err)
		}
		return nil
	})
}

// UpdateRecurringTodo updates an existing template by ID.
func (s *SQLiteStore) UpdateRecurringTodo(ctx context.Context, rec *model.RecurringTodo) error {
	if err := rec.Validate().Err(); err != nil {
		return err
	}
	rec.UpdatedAt = now()
	return updateRecurringTodo(ctx, s.db, rec)
}

func updateRecurringTodo(ctx context.Context, ex sqlx.ExecerContext, rec *model.RecurringTodo) error {
	result, err := ex.ExecContext(ctx, `
		UPDATE recurring_todos SET
			context_id = ?, project_id = ?, description = ?, notes = ?, state = ?,
			recurring_period = ?, every_count = ?, start_from = ?, ends_on = ?,
			number_of_occurrences = ?, occurrences_count = ?, last_occurrence = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		rec.ContextID, rec.ProjectID, rec.Description, rec.Notes, rec.State,
		rec.RecurringPeriod, rec.EveryCount, rec.StartFrom.UTC(), utcPtr(rec.EndsOn),
		rec.NumberOfOccurrences, rec.OccurrencesCount, utcPtr(rec.LastOccurrence),
		utcPtr(rec.CompletedAt), rec.UpdatedAt,
		rec.ID, rec.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating recurring todo %s: %w", rec.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound("recurring todo", rec.ID)
	}
	return nil
}

// RecordOccurrence stores a spawned todo and the template's advanced
// bookkeeping in one transaction.
func (s *SQLiteStore) RecordOccurrence(
	ctx context.Context,
	rec *model.RecurringTodo,
	todo *model.Todo,
) error {
	if err := todo.Validate().Err(); err != nil {
		return err
	}
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	ts := now()
	todo.CreatedAt = ts
	todo.UpdatedAt = ts
	rec.UpdatedAt = ts

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertTodo(ctx, tx, todo); err != nil {
			return err
		}
		return updateRecurringTodo(ctx, tx, rec)
	})
}

// DeleteRecurringTodo removes a template. Todos it spawned are kept and
// lose the link.
func (s *SQLiteStore) DeleteRecurringTodo(ctx context.Context, userID, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			"UPDATE todos SET recurring_todo_id = NULL WHERE recurring_todo_id = ? AND user_id = ?", id, userID)
		if err != nil {
			return fmt.Errorf("unlinking todos of recurring todo %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx,
			"DELETE FROM recurring_todos WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return fmt.Errorf("deleting recurring todo %s: %w", id, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return notFound("recurring todo", id)
		}
		return nil
	})
}

// GetRecurringTodoByID retrieves one of the user's templates.
func (s *SQLiteStore) GetRecurringTodoByID(
	ctx context.Context,
	userID, id string,
) (*model.RecurringTodo, error) {
	var rec model.RecurringTodo
	err := s.db.GetContext(ctx, &rec,
		"SELECT "+recurringColumns+" FROM recurring_todos WHERE id = ? AND user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("recurring todo", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting recurring todo %s: %w", id, err)
	}
	return &rec, nil
}

// GetRecurringTodos returns the user's templates, most recently completed
// first, then newest first. An empty state returns every template.
func (s *SQLiteStore) GetRecurringTodos(
	ctx context.Context,
	userID, state string,
) ([]model.RecurringTodo, error) {
	query := "SELECT " + recurringColumns + " FROM recurring_todos WHERE user_id = ?"
	args := []interface{}{userID}
	if state != "" {
		query += " AND state = ?"
		args = append(args, state)
	}
	query += " ORDER BY completed_at DESC, created_at DESC"

	var recs []model.RecurringTodo
	if err := s.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("querying recurring todos: %w", err)
	}
	return recs, nil
}
