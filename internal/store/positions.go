package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UpdateProjectPositions renumbers a user's projects so that ids come
// first, in the given order, at positions 1..len(ids). Projects not named
// in ids keep their relative order after them, so positions stay a
// contiguous 1..N sequence.
//
// Every id is checked on its own: an id that is unknown, owned by another
// user, or repeated fails with *NotAssociatedError. All writes happen in
// one transaction, so a failure leaves the previous order intact.
func (s *SQLiteStore) UpdateProjectPositions(ctx context.Context, userID string, ids []string) error {
	return s.updatePositions(ctx, "projects", "project", userID, ids)
}

// UpdateContextPositions is UpdateProjectPositions for contexts.
func (s *SQLiteStore) UpdateContextPositions(ctx context.Context, userID string, ids []string) error {
	return s.updatePositions(ctx, "contexts", "context", userID, ids)
}

func (s *SQLiteStore) updatePositions(
	ctx context.Context,
	table, kind, userID string,
	ids []string,
) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var current []string
		err := tx.SelectContext(ctx, &current,
			"SELECT id FROM "+table+" WHERE user_id = ? ORDER BY position, created_at", userID)
		if err != nil {
			return fmt.Errorf("loading %s positions for user %s: %w", kind, userID, err)
		}

		order, err := positionOrder(kind, userID, current, ids)
		if err != nil {
			return err
		}

		stmt, err := tx.PreparexContext(ctx,
			"UPDATE "+table+" SET position = ?, updated_at = ? WHERE id = ? AND user_id = ?")
		if err != nil {
			return fmt.Errorf("preparing %s position update: %w", kind, err)
		}
		defer stmt.Close()

		ts := now()
		for i, id := range order {
			if _, err := stmt.ExecContext(ctx, i+1, ts, id, userID); err != nil {
				return fmt.Errorf("setting position of %s %s: %w", kind, id, err)
			}
		}
		return nil
	})
}

// positionOrder validates ids against the current order and returns the
// complete new order: ids first, then the untouched rest.
func positionOrder(kind, userID string, current, ids []string) ([]string, error) {
	available := make(map[string]bool, len(current))
	for _, id := range current {
		available[id] = true
	}

	order := make([]string, 0, len(current))
	for _, id := range ids {
		if !available[id] {
			return nil, &NotAssociatedError{Kind: kind, ID: id, UserID: userID}
		}
		available[id] = false
		order = append(order, id)
	}
	for _, id := range current {
		if available[id] {
			order = append(order, id)
		}
	}
	return order, nil
}
