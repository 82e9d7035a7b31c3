package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/tracks/internal/model"
)

const todoColumns = `todos.id, todos.user_id, todos.context_id, todos.project_id,
	todos.recurring_todo_id, todos.description, todos.notes, todos.state,
	todos.show_from, todos.due, todos.completed_at, todos.created_at, todos.updated_at`

// CreateTodo inserts a new todo. Generates a UUID if ID is empty. The
// context and optional project must belong to the todo's user.
func (s *SQLiteStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	if todo.State == "" {
		todo.State = model.TodoStateActive
	}
	if err := todo.Validate().Err(); err != nil {
		return err
	}
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	ts := now()
	todo.CreatedAt = ts
	todo.UpdatedAt = ts
	if todo.State == model.TodoStateCompleted && todo.CompletedAt == nil {
		todo.CompletedAt = &ts
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkTodoOwnership(ctx, tx, todo); err != nil {
			return err
		}
		return insertTodo(ctx, tx, todo)
	})
}

func insertTodo(ctx context.Context, ex sqlx.ExecerContext, todo *model.Todo) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO todos (
			id, user_id, context_id, project_id, recurring_todo_id,
			description, notes, state, show_from, due, completed_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.UserID, todo.ContextID, todo.ProjectID, todo.RecurringTodoID,
		todo.Description, todo.Notes, todo.State,
		utcPtr(todo.ShowFrom), utcPtr(todo.Due), utcPtr(todo.CompletedAt),
		todo.CreatedAt, todo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating todo: %w", err)
	}
	return nil
}

// checkTodoOwnership rejects a context or project of another user.
func checkTodoOwnership(ctx context.Context, q sqlx.QueryerContext, todo *model.Todo) error {
	v := model.ValidationErrors{}

	var n int
	err := sqlx.GetContext(ctx, q, &n,
		"SELECT COUNT(*) FROM contexts WHERE id = ? AND user_id = ?", todo.ContextID, todo.UserID)
	if err != nil {
		return fmt.Errorf("checking context %s: %w", todo.ContextID, err)
	}
	if n == 0 {
		v.Add("context", "is invalid")
	}

	if todo.ProjectID != nil {
		err := sqlx.GetContext(ctx, q, &n,
			"SELECT COUNT(*) FROM projects WHERE id = ? AND user_id = ?", *todo.ProjectID, todo.UserID)
		if err != nil {
			return fmt.Errorf("checking project %s: %w", *todo.ProjectID, err)
		}
		if n == 0 {
			v.Add("project", "is invalid")
		}
	}

	return v.Err()
}

// UpdateTodo updates an existing todo by ID.
func (s *SQLiteStore) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	if err := todo.Validate().Err(); err != nil {
		return err
	}
	todo.UpdatedAt = now()

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkTodoOwnership(ctx, tx, todo); err != nil {
			return err
		}
		return updateTodo(ctx, tx, todo)
	})
}

func updateTodo(ctx context.Context, ex sqlx.ExecerContext, todo *model.Todo) error {
	result, err := ex.ExecContext(ctx, `
		UPDATE todos SET
			context_id = ?, project_id = ?, description = ?, notes = ?,
			state = ?, show_from = ?, due = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		todo.ContextID, todo.ProjectID, todo.Description, todo.Notes,
		todo.State, utcPtr(todo.ShowFrom), utcPtr(todo.Due), utcPtr(todo.CompletedAt),
		todo.UpdatedAt,
		todo.ID, todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating todo %s: %w", todo.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound("todo", todo.ID)
	}
	return nil
}

// UpdateTodos writes the state fields of several todos in one transaction.
func (s *SQLiteStore) UpdateTodos(ctx context.Context, todos []*model.Todo) error {
	if len(todos) == 0 {
		return nil
	}
	ts := now()
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, t := range todos {
			t.UpdatedAt = ts
			if err := updateTodo(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteTodo removes a todo and every dependency edge touching it.
func (s *SQLiteStore) DeleteTodo(ctx context.Context, userID, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			"DELETE FROM dependencies WHERE predecessor_id = ?1 OR successor_id = ?1", id)
		if err != nil {
			return fmt.Errorf("deleting dependencies of todo %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx,
			"DELETE FROM todos WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return fmt.Errorf("deleting todo %s: %w", id, err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return notFound("todo", id)
		}
		return nil
	})
}

// GetTodoByID retrieves one of a user's todos.
func (s *SQLiteStore) GetTodoByID(
	ctx context.Context,
	userID, id string,
) (*model.Todo, error) {
	var todo model.Todo
	err := s.db.GetContext(ctx, &todo,
		"SELECT "+todoColumns+" FROM todos WHERE todos.id = ? AND todos.user_id = ?", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("todo", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return &todo, nil
}

// GetTodos retrieves a user's todos matching the filter, most recently
// completed first, then newest first.
func (s *SQLiteStore) GetTodos(
	ctx context.Context,
	filter TodoFilter,
) ([]model.Todo, error) {
	conditions := []string{"todos.user_id = ?"}
	args := []interface{}{filter.UserID}

	if filter.State != nil {
		conditions = append(conditions, "todos.state = ?")
		args = append(args, *filter.State)
	}
	if filter.ProjectID != nil {
		if *filter.ProjectID == "" {
			conditions = append(conditions, "todos.project_id IS NULL")
		} else {
			conditions = append(conditions, "todos.project_id = ?")
			args = append(args, *filter.ProjectID)
		}
	}
	if filter.ContextID != nil {
		conditions = append(conditions, "todos.context_id = ?")
		args = append(args, *filter.ContextID)
	}

	query := "SELECT " + todoColumns + " FROM todos WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY todos.completed_at DESC, todos.created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	var todos []model.Todo
	if err := s.db.SelectContext(ctx, &todos, query, args...); err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	return todos, nil
}

// GetDeferredTodos retrieves a user's deferred todos ordered by show_from
// ascending, then newest first. When readyBy is set, only todos whose
// show_from is at or before it are returned.
func (s *SQLiteStore) GetDeferredTodos(
	ctx context.Context,
	userID string,
	readyBy *time.Time,
) ([]model.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos WHERE todos.user_id = ? AND todos.state = ?"
	args := []interface{}{userID, model.TodoStateDeferred}
	if readyBy != nil {
		query += " AND todos.show_from <= ?"
		args = append(args, readyBy.UTC())
	}
	query += " ORDER BY todos.show_from ASC, todos.created_at DESC"

	var todos []model.Todo
	if err := s.db.SelectContext(ctx, &todos, query, args...); err != nil {
		return nil, fmt.Errorf("querying deferred todos: %w", err)
	}
	return todos, nil
}

// todoGroupColumns are the columns CountTodosByGroup may group on.
var todoGroupColumns = map[string]bool{
	"project_id": true,
	"context_id": true,
	"state":      true,
}

// CountTodosByGroup counts a user's todos per value of column
// (project_id, context_id or state). Todos without a project are counted
// under "".
func (s *SQLiteStore) CountTodosByGroup(
	ctx context.Context,
	userID, column string,
) (map[string]int, error) {
	if !todoGroupColumns[column] {
		return nil, fmt.Errorf("cannot group todos by %q", column)
	}
	counts, err := groupCounts(ctx, s.db,
		"SELECT "+column+", COUNT(*) FROM todos WHERE user_id = ? GROUP BY "+column, userID)
	if err != nil {
		return nil, fmt.Errorf("counting todos by %s: %w", column, err)
	}
	return counts, nil
}
