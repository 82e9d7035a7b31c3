package tracks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
)

// Recurring spawns todos from recurring templates.
type Recurring struct {
	store store.Store
	log   zerolog.Logger
}

// NewRecurring returns the recurring-todo service.
func NewRecurring(s store.Store, logger zerolog.Logger) *Recurring {
	return &Recurring{store: s, log: logger.With().Str("service", "recurring").Logger()}
}

// SpawnNext creates the todo for rec's next occurrence and advances rec.
// Occurrences after now start deferred. When the template has no further
// occurrences it is completed; a template already exhausted returns a nil
// todo. rec is only changed once the write succeeds.
func (r *Recurring) SpawnNext(ctx context.Context, rec *model.RecurringTodo, now time.Time) (*model.Todo, error) {
	next := *rec
	occurrence, ok := next.NextOccurrence()
	if !ok {
		if next.State != model.RecurringStateCompleted {
			r.complete(&next, now)
			if err := r.store.UpdateRecurringTodo(ctx, &next); err != nil {
				return nil, fmt.Errorf("completing recurring todo %s: %w", rec.ID, err)
			}
			*rec = next
		}
		return nil, nil
	}

	todo := next.BuildTodo(occurrence, now)
	at := occurrence.UTC()
	next.LastOccurrence = &at
	next.OccurrencesCount++
	if _, more := next.NextOccurrence(); !more {
		r.complete(&next, now)
	}

	if err := r.store.RecordOccurrence(ctx, &next, &todo); err != nil {
		return nil, fmt.Errorf("spawning from recurring todo %s: %w", rec.ID, err)
	}
	*rec = next
	r.log.Debug().
		Str("recurring_todo_id", rec.ID).
		Str("todo_id", todo.ID).
		Time("occurrence", occurrence).
		Msg("todo spawned")
	return &todo, nil
}

func (r *Recurring) complete(rec *model.RecurringTodo, now time.Time) {
	done := now.UTC()
	rec.State = model.RecurringStateCompleted
	rec.CompletedAt = &done
}
