package tracks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
)

// DeferredTodos activates deferred todos whose show_from has passed.
type DeferredTodos struct {
	store store.Store
	log   zerolog.Logger
}

// NewDeferredTodos returns the deferred-todo sweeper.
func NewDeferredTodos(s store.Store, logger zerolog.Logger) *DeferredTodos {
	return &DeferredTodos{store: s, log: logger.With().Str("service", "deferred").Logger()}
}

// FindAndActivateReady scans the user's deferred todos, ordered by
// show_from then newest first, and activates every one whose show_from is
// at or before now. It returns the activated todos.
func (d *DeferredTodos) FindAndActivateReady(ctx context.Context, userID string, now time.Time) ([]model.Todo, error) {
	deferred, err := d.store.GetDeferredTodos(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("finding deferred todos: %w", err)
	}

	var ready []*model.Todo
	for i := range deferred {
		t := &deferred[i]
		if !t.ReadyAt(now) {
			continue
		}
		if err := t.Activate(); err != nil {
			return nil, err
		}
		ready = append(ready, t)
	}

	if err := d.store.UpdateTodos(ctx, ready); err != nil {
		return nil, fmt.Errorf("activating deferred todos: %w", err)
	}

	activated := make([]model.Todo, len(ready))
	for i, t := range ready {
		activated[i] = *t
	}
	if len(activated) > 0 {
		d.log.Info().Str("user_id", userID).Int("count", len(activated)).Msg("deferred todos activated")
	}
	return activated, nil
}

// ActivateAll runs FindAndActivateReady for every user and returns the
// number of todos activated.
func (d *DeferredTodos) ActivateAll(ctx context.Context, now time.Time) (int, error) {
	users, err := d.store.ListUsers(ctx, 1, 0)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, u := range users {
		activated, err := d.FindAndActivateReady(ctx, u.ID, now)
		if err != nil {
			return total, fmt.Errorf("user %s: %w", u.Login, err)
		}
		total += len(activated)
	}
	return total, nil
}
