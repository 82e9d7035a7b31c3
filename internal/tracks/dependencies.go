package tracks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
)

// Dependencies maintains "blocks" edges between todos and the pending
// state they imply.
type Dependencies struct {
	store store.Store
	log   zerolog.Logger
}

// NewDependencies returns the dependency service.
func NewDependencies(s store.Store, logger zerolog.Logger) *Dependencies {
	return &Dependencies{store: s, log: logger.With().Str("service", "dependencies").Logger()}
}

// Add makes predecessorID block successorID. An unfinished predecessor
// moves the successor to pending. Edges that would close a cycle are
// rejected with model.ValidationErrors.
func (d *Dependencies) Add(ctx context.Context, userID, predecessorID, successorID string) error {
	pred, err := d.store.GetTodoByID(ctx, userID, predecessorID)
	if err != nil {
		return err
	}
	succ, err := d.store.GetTodoByID(ctx, userID, successorID)
	if err != nil {
		return err
	}

	cyclic, err := d.reaches(ctx, predecessorID, successorID)
	if err != nil {
		return err
	}
	if cyclic {
		return model.ValidationErrors{"predecessor": {"would create a circular dependency"}}
	}

	dep := &model.Dependency{PredecessorID: pred.ID, SuccessorID: succ.ID}
	if err := d.store.AddDependency(ctx, userID, dep); err != nil {
		return err
	}

	if !pred.IsCompleted() && !succ.IsCompleted() && succ.State != model.TodoStatePending {
		if err := succ.Block(); err != nil {
			return err
		}
		if err := d.store.UpdateTodo(ctx, succ); err != nil {
			return fmt.Errorf("blocking todo %s: %w", succ.ID, err)
		}
	}
	d.log.Debug().Str("predecessor", pred.ID).Str("successor", succ.ID).Msg("dependency added")
	return nil
}

// reaches reports whether target already blocks from, directly or
// through other todos.
func (d *Dependencies) reaches(ctx context.Context, from, target string) (bool, error) {
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		preds, err := d.store.GetPredecessors(ctx, id)
		if err != nil {
			return false, err
		}
		for _, p := range preds {
			if p.ID == target {
				return true, nil
			}
			if !seen[p.ID] {
				seen[p.ID] = true
				queue = append(queue, p.ID)
			}
		}
	}
	return false, nil
}

// Remove deletes an edge. A pending successor left with no unfinished
// predecessors is released at now.
func (d *Dependencies) Remove(ctx context.Context, userID, predecessorID, successorID string, now time.Time) error {
	succ, err := d.store.GetTodoByID(ctx, userID, successorID)
	if err != nil {
		return err
	}
	if err := d.store.RemoveDependency(ctx, predecessorID, successorID); err != nil {
		return err
	}
	_, err = d.release(ctx, succ, now)
	return err
}

// Complete marks a todo done at now and releases the pending successors
// it was the last unfinished predecessor of. It returns those successors.
func (d *Dependencies) Complete(ctx context.Context, userID, todoID string, now time.Time) ([]model.Todo, error) {
	todo, err := d.store.GetTodoByID(ctx, userID, todoID)
	if err != nil {
		return nil, err
	}
	if err := todo.Complete(now); err != nil {
		return nil, err
	}
	if err := d.store.UpdateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("completing todo %s: %w", todoID, err)
	}

	successors, err := d.store.GetSuccessors(ctx, todoID)
	if err != nil {
		return nil, err
	}
	var released []model.Todo
	for i := range successors {
		ok, err := d.release(ctx, &successors[i], now)
		if err != nil {
			return nil, err
		}
		if ok {
			released = append(released, successors[i])
		}
	}
	return released, nil
}

// release unblocks a pending todo once nothing unfinished blocks it. A
// todo deferred before it was blocked returns to deferred until show_from.
func (d *Dependencies) release(ctx context.Context, todo *model.Todo, now time.Time) (bool, error) {
	if todo.State != model.TodoStatePending {
		return false, nil
	}
	open, err := d.store.CountOpenPredecessors(ctx, todo.ID)
	if err != nil {
		return false, err
	}
	if open > 0 {
		return false, nil
	}
	if err := todo.Unblock(now); err != nil {
		return false, err
	}
	if err := d.store.UpdateTodo(ctx, todo); err != nil {
		return false, fmt.Errorf("releasing todo %s: %w", todo.ID, err)
	}
	d.log.Debug().Str("todo_id", todo.ID).Str("state", todo.State).Msg("todo unblocked")
	return true, nil
}

// Predecessors returns the todos blocking todoID.
func (d *Dependencies) Predecessors(ctx context.Context, todoID string) ([]model.Todo, error) {
	return d.store.GetPredecessors(ctx, todoID)
}

// Successors returns the todos todoID blocks.
func (d *Dependencies) Successors(ctx context.Context, todoID string) ([]model.Todo, error) {
	return d.store.GetSuccessors(ctx, todoID)
}
