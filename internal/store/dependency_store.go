package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/tracks/internal/model"
)

// AddDependency records that dep.PredecessorID blocks dep.SuccessorID.
// Both todos must belong to userID. Adding an existing edge is a
// validation error.
func (s *SQLiteStore) AddDependency(ctx context.Context, userID string, dep *model.Dependency) error {
	v := model.ValidationErrors{}
	if dep.PredecessorID == dep.SuccessorID {
		v.Add("predecessor", "can't depend on itself")
		return v
	}
	if dep.ID == "" {
		dep.ID = uuid.New().String()
	}
	if dep.RelationshipType == "" {
		dep.RelationshipType = model.RelationshipBlocks
	}
	dep.CreatedAt = now()

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var owned int
		err := tx.GetContext(ctx, &owned,
			"SELECT COUNT(*) FROM todos WHERE user_id = ? AND id IN (?, ?)",
			userID, dep.PredecessorID, dep.SuccessorID)
		if err != nil {
			return fmt.Errorf("checking dependency todos: %w", err)
		}
		if owned != 2 {
			return notFound("todo", dep.PredecessorID+"/"+dep.SuccessorID)
		}

		var existing int
		err = tx.GetContext(ctx, &existing,
			"SELECT COUNT(*) FROM dependencies WHERE predecessor_id = ? AND successor_id = ?",
			dep.PredecessorID, dep.SuccessorID)
		if err != nil {
			return fmt.Errorf("checking dependency: %w", err)
		}
		if existing > 0 {
			v.Add("predecessor", model.MsgTaken)
			return v
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO dependencies (id, predecessor_id, successor_id, relationship_type, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			dep.ID, dep.PredecessorID, dep.SuccessorID, dep.RelationshipType, dep.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("creating dependency: %w", err)
		}
		return nil
	})
}

// RemoveDependency deletes the edge between two todos.
func (s *SQLiteStore) RemoveDependency(ctx context.Context, predecessorID, successorID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM dependencies WHERE predecessor_id = ? AND successor_id = ?",
		predecessorID, successorID)
	if err != nil {
		return fmt.Errorf("deleting dependency %s -> %s: %w", predecessorID, successorID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound("dependency", predecessorID+" -> "+successorID)
	}
	return nil
}

// GetPredecessors returns the todos that block todoID.
func (s *SQLiteStore) GetPredecessors(ctx context.Context, todoID string) ([]model.Todo, error) {
	var todos []model.Todo
	err := s.db.SelectContext(ctx, &todos, `
		SELECT `+todoColumns+` FROM todos
		JOIN dependencies ON dependencies.predecessor_id = todos.id
		WHERE dependencies.successor_id = ?
		ORDER BY todos.created_at`, todoID)
	if err != nil {
		return nil, fmt.Errorf("querying predecessors of %s: %w", todoID, err)
	}
	return todos, nil
}

// GetSuccessors returns the todos blocked by todoID.
func (s *SQLiteStore) GetSuccessors(ctx context.Context, todoID string) ([]model.Todo, error) {
	var todos []model.Todo
	err := s.db.SelectContext(ctx, &todos, `
		SELECT `+todoColumns+` FROM todos
		JOIN dependencies ON dependencies.successor_id = todos.id
		WHERE dependencies.predecessor_id = ?
		ORDER BY todos.created_at`, todoID)
	if err != nil {
		return nil, fmt.Errorf("querying successors of %s: %w", todoID, err)
	}
	return todos, nil
}

// CountOpenPredecessors counts the unfinished todos blocking todoID.
func (s *SQLiteStore) CountOpenPredecessors(ctx context.Context, todoID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM dependencies
		JOIN todos ON todos.id = dependencies.predecessor_id
		WHERE dependencies.successor_id = ? AND todos.state != ?`,
		todoID, model.TodoStateCompleted)
	if err != nil {
		return 0, fmt.Errorf("counting open predecessors of %s: %w", todoID, err)
	}
	return n, nil
}
