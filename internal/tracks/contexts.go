package tracks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
)

// ContextList is one user's contexts in position order.
type ContextList struct {
	store  store.Store
	log    zerolog.Logger
	userID string

	// Contexts is kept sorted by position.
	Contexts []model.Context
}

// LoadContexts reads a user's contexts ordered by position.
func LoadContexts(ctx context.Context, s store.Store, logger zerolog.Logger, userID string) (*ContextList, error) {
	contexts, err := s.GetContexts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading contexts for user %s: %w", userID, err)
	}
	return &ContextList{
		store:    s,
		log:      logger.With().Str("user_id", userID).Str("list", "contexts").Logger(),
		userID:   userID,
		Contexts: contexts,
	}, nil
}

// FindByParams resolves "id", then "context_id", to one of the user's
// contexts.
func (l *ContextList) FindByParams(params map[string]string) (*model.Context, error) {
	c, err := findByParams(l.Contexts, "context", params, "id", "context_id")
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InState returns the contexts in state, in position order.
func (l *ContextList) InState(state string) []model.Context {
	return selectItems(l.Contexts, ByState(state))
}

// NextFrom returns the context after c among contexts in c's state.
func (l *ContextList) NextFrom(c model.Context) *model.Context {
	next, ok := neighbour(l.Contexts, c.ID, 1)
	if !ok {
		return nil
	}
	return &next
}

// PreviousFrom returns the context before c among contexts in c's state.
func (l *ContextList) PreviousFrom(c model.Context) *model.Context {
	prev, ok := neighbour(l.Contexts, c.ID, -1)
	if !ok {
		return nil
	}
	return &prev
}

// UpdatePositions stores ids as the new context order. See
// ProjectList.UpdatePositions.
func (l *ContextList) UpdatePositions(ctx context.Context, ids []string) error {
	if err := l.store.UpdateContextPositions(ctx, l.userID, ids); err != nil {
		return fmt.Errorf("updating context positions: %w", err)
	}

	l.Contexts = reorder(l.Contexts, withPrefix(l.Contexts, pick(l.Contexts, ids)), setContextPosition)
	l.log.Debug().Strs("order", idsOf(l.Contexts)).Msg("positions updated")
	return nil
}

// Alphabetize moves the contexts matching f to the front, sorted by
// case-insensitive name, and returns them in their new order.
func (l *ContextList) Alphabetize(ctx context.Context, f Filter) ([]model.Context, error) {
	sorted := sortByName(selectItems(l.Contexts, f))
	if err := l.UpdatePositions(ctx, withPrefix(l.Contexts, sorted)); err != nil {
		return nil, err
	}
	return selectItems(l.Contexts, f), nil
}

func setContextPosition(c *model.Context, pos int) { c.Position = pos }
