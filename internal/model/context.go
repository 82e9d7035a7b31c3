package model

import (
	"slices"
	"time"
)

// Context states.
const (
	ContextStateActive = "active"
	ContextStateHidden = "hidden"
	ContextStateClosed = "closed"
)

// ContextStates lists every valid context state.
var ContextStates = []string{ContextStateActive, ContextStateHidden, ContextStateClosed}

// Context is a place or tool a todo can be done in ("@phone", "@errand").
type Context struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	State     string    `json:"state" db:"state"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks field constraints.
func (c Context) Validate() ValidationErrors {
	v := ValidationErrors{}
	validateLength(v, "name", c.Name, 1, ProjectNameMaxLength, true)
	if !slices.Contains(ContextStates, c.State) {
		v.Add("state", "is not included in the list")
	}
	return v
}
