package model

import (
	"fmt"
	"slices"
	"time"
)

// Todo states.
const (
	TodoStateActive        = "active"
	TodoStateDeferred      = "deferred"
	TodoStatePending       = "pending"
	TodoStateProjectHidden = "project_hidden"
	TodoStateCompleted     = "completed"
)

// TodoStates lists every valid todo state.
var TodoStates = []string{
	TodoStateActive, TodoStateDeferred, TodoStatePending,
	TodoStateProjectHidden, TodoStateCompleted,
}

// TodoDescriptionMaxLength bounds the one-line description.
const TodoDescriptionMaxLength = 100

// Todo is a single next action.
type Todo struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	ContextID       string     `json:"context_id" db:"context_id"`
	ProjectID       *string    `json:"project_id,omitempty" db:"project_id"`
	RecurringTodoID *string    `json:"recurring_todo_id,omitempty" db:"recurring_todo_id"`
	Description     string     `json:"description" db:"description"`
	Notes           string     `json:"notes" db:"notes"`
	State           string     `json:"state" db:"state"`
	ShowFrom        *time.Time `json:"show_from,omitempty" db:"show_from"`
	Due             *time.Time `json:"due,omitempty" db:"due"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// InvalidTransitionError is returned when a todo cannot move from its
// current state to the requested one.
type InvalidTransitionError struct {
	TodoID string
	From   string
	Event  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("todo %s: cannot %s from state %q", e.TodoID, e.Event, e.From)
}

// Validate checks field constraints.
func (t Todo) Validate() ValidationErrors {
	v := ValidationErrors{}
	validateLength(v, "description", t.Description, 1, TodoDescriptionMaxLength, true)
	if t.ContextID == "" {
		v.Add("context", MsgBlank)
	}
	if !slices.Contains(TodoStates, t.State) {
		v.Add("state", "is not included in the list")
	}
	if t.State == TodoStateDeferred && t.ShowFrom == nil {
		v.Add("show_from", MsgBlank)
	}
	return v
}

// IsCompleted reports whether the todo is done.
func (t Todo) IsCompleted() bool { return t.State == TodoStateCompleted }

// ReadyAt reports whether a deferred todo's show_from has passed at now.
func (t Todo) ReadyAt(now time.Time) bool {
	return t.State == TodoStateDeferred && t.ShowFrom != nil && !t.ShowFrom.After(now)
}

// Activate moves a deferred, pending or project-hidden todo to active and
// clears show_from.
func (t *Todo) Activate() error {
	switch t.State {
	case TodoStateDeferred, TodoStatePending, TodoStateProjectHidden:
	default:
		return &InvalidTransitionError{TodoID: t.ID, From: t.State, Event: "activate"}
	}
	t.ShowFrom = nil
	t.State = TodoStateActive
	return nil
}

// Unblock releases a pending todo. A show_from still after now sends it
// back to deferred; otherwise it becomes active.
func (t *Todo) Unblock(now time.Time) error {
	if t.State != TodoStatePending {
		return &InvalidTransitionError{TodoID: t.ID, From: t.State, Event: "unblock"}
	}
	if t.ShowFrom != nil && t.ShowFrom.After(now) {
		t.State = TodoStateDeferred
		return nil
	}
	return t.Activate()
}

// Defer hides an active todo until showFrom.
func (t *Todo) Defer(showFrom time.Time) error {
	if t.State != TodoStateActive && t.State != TodoStateDeferred {
		return &InvalidTransitionError{TodoID: t.ID, From: t.State, Event: "defer"}
	}
	sf := showFrom.UTC()
	t.ShowFrom = &sf
	t.State = TodoStateDeferred
	return nil
}

// Block marks the todo as waiting on an unfinished predecessor. show_from
// is kept for Unblock.
func (t *Todo) Block() error {
	switch t.State {
	case TodoStateActive, TodoStateDeferred, TodoStatePending:
	default:
		return &InvalidTransitionError{TodoID: t.ID, From: t.State, Event: "block"}
	}
	t.State = TodoStatePending
	return nil
}

// Complete marks the todo done at now.
func (t *Todo) Complete(now time.Time) error {
	if t.State == TodoStateCompleted {
		return &InvalidTransitionError{TodoID: t.ID, From: t.State, Event: "complete"}
	}
	done := now.UTC()
	t.CompletedAt = &done
	t.ShowFrom = nil
	t.State = TodoStateCompleted
	return nil
}

// Reopen returns a completed todo to active.
func (t *Todo) Reopen() error {
	if t.State != TodoStateCompleted {
		return &InvalidTransitionError{TodoID: t.ID, From: t.State, Event: "reopen"}
	}
	t.CompletedAt = nil
	t.State = TodoStateActive
	return nil
}
