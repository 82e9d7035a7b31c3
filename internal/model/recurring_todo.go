package model

import (
	"slices"
	"time"
)

// Recurrence periods.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// RecurringPeriods lists every valid recurrence period.
var RecurringPeriods = []string{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}

// Recurring todo states.
const (
	RecurringStateActive    = "active"
	RecurringStateCompleted = "completed"
)

// RecurringTodo is a template that spawns a new Todo for every occurrence.
type RecurringTodo struct {
	ID                  string     `json:"id" db:"id"`
	UserID              string     `json:"user_id" db:"user_id"`
	ContextID           string     `json:"context_id" db:"context_id"`
	ProjectID           *string    `json:"project_id,omitempty" db:"project_id"`
	Description         string     `json:"description" db:"description"`
	Notes               string     `json:"notes" db:"notes"`
	State               string     `json:"state" db:"state"`
	RecurringPeriod     string     `json:"recurring_period" db:"recurring_period"`
	EveryCount          int        `json:"every_count" db:"every_count"`
	StartFrom           time.Time  `json:"start_from" db:"start_from"`
	EndsOn              *time.Time `json:"ends_on,omitempty" db:"ends_on"`
	NumberOfOccurrences int        `json:"number_of_occurrences" db:"number_of_occurrences"`
	OccurrencesCount    int        `json:"occurrences_count" db:"occurrences_count"`
	LastOccurrence      *time.Time `json:"last_occurrence,omitempty" db:"last_occurrence"`
	CompletedAt         *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// Validate checks field constraints.
func (r RecurringTodo) Validate() ValidationErrors {
	v := ValidationErrors{}
	validateLength(v, "description", r.Description, 1, TodoDescriptionMaxLength, true)
	if r.ContextID == "" {
		v.Add("context", MsgBlank)
	}
	if !slices.Contains(RecurringPeriods, r.RecurringPeriod) {
		v.Add("recurring_period", "is not included in the list")
	}
	if r.EveryCount < 1 {
		v.Add("every_count", "must be greater than 0")
	}
	if r.StartFrom.IsZero() {
		v.Add("start_from", MsgBlank)
	}
	if r.EndsOn != nil && r.EndsOn.Before(r.StartFrom) {
		v.Add("ends_on", "must be after start_from")
	}
	if r.NumberOfOccurrences < 0 {
		v.Add("number_of_occurrences", "must be greater than or equal to 0")
	}
	return v
}

// NextOccurrence returns the date of the next todo to spawn. The second
// result is false when the template is completed or exhausted.
func (r RecurringTodo) NextOccurrence() (time.Time, bool) {
	if r.State == RecurringStateCompleted {
		return time.Time{}, false
	}
	if r.NumberOfOccurrences > 0 && r.OccurrencesCount >= r.NumberOfOccurrences {
		return time.Time{}, false
	}

	next := r.StartFrom
	if r.LastOccurrence != nil {
		next = r.advance(*r.LastOccurrence)
	}
	if r.EndsOn != nil && next.After(*r.EndsOn) {
		return time.Time{}, false
	}
	return next, true
}

func (r RecurringTodo) advance(from time.Time) time.Time {
	n := r.EveryCount
	if n < 1 {
		n = 1
	}
	switch r.RecurringPeriod {
	case PeriodWeekly:
		return from.AddDate(0, 0, 7*n)
	case PeriodMonthly:
		return addMonths(from, n, r.StartFrom.Day())
	case PeriodYearly:
		return addMonths(from, 12*n, r.StartFrom.Day())
	default:
		return from.AddDate(0, 0, n)
	}
}

// addMonths moves from forward by months and lands on day, clamped to the
// last day of the target month.
func addMonths(from time.Time, months, day int) time.Time {
	first := time.Date(from.Year(), from.Month(), 1,
		from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
	target := first.AddDate(0, months, 0)
	last := target.AddDate(0, 1, -1).Day()
	return target.AddDate(0, 0, min(day, last)-1)
}

// BuildTodo returns the todo for occurrence. Occurrences in the future
// start deferred until their date.
func (r RecurringTodo) BuildTodo(occurrence, now time.Time) Todo {
	due := occurrence.UTC()
	todo := Todo{
		UserID:          r.UserID,
		ContextID:       r.ContextID,
		ProjectID:       r.ProjectID,
		RecurringTodoID: &r.ID,
		Description:     r.Description,
		Notes:           r.Notes,
		State:           TodoStateActive,
		Due:             &due,
	}
	if occurrence.After(now) {
		showFrom := due
		todo.ShowFrom = &showFrom
		todo.State = TodoStateDeferred
	}
	return todo
}
