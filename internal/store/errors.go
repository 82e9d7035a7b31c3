package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("not found")

// notFound builds "<kind> <id> not found".
func notFound(kind, id string) error {
	return fmt.Errorf("%s %s %w", kind, id, ErrNotFound)
}

// NotAssociatedError reports an id handed to a reorder that is not (or is
// no longer) available in the user's collection: a foreign id, an unknown
// id, or a repeat of an id already placed.
type NotAssociatedError struct {
	Kind   string
	ID     string
	UserID string
}

func (e *NotAssociatedError) Error() string {
	return fmt.Sprintf("%s %s is not associated with user %s", e.Kind, e.ID, e.UserID)
}
