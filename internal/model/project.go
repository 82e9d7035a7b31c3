package model

import (
	"slices"
	"time"
)

// Project states.
const (
	ProjectStateActive    = "active"
	ProjectStateHidden    = "hidden"
	ProjectStateCompleted = "completed"
)

// ProjectStates lists every valid project state.
var ProjectStates = []string{ProjectStateActive, ProjectStateHidden, ProjectStateCompleted}

// ProjectNameMaxLength bounds project and context names.
const ProjectNameMaxLength = 255

// Project is a user-ordered grouping of todos.
type Project struct {
	ID             string     `json:"id" db:"id"`
	UserID         string     `json:"user_id" db:"user_id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description" db:"description"`
	State          string     `json:"state" db:"state"`
	Position       int        `json:"position" db:"position"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`

	// CachedNoteCount is filled in by ProjectList.CacheNoteCounts and is
	// nil until then.
	CachedNoteCount *int `json:"cached_note_count,omitempty" db:"-"`
}

// Validate checks field constraints. Name uniqueness per user is checked
// by the store.
func (p Project) Validate() ValidationErrors {
	v := ValidationErrors{}
	validateLength(v, "name", p.Name, 1, ProjectNameMaxLength, true)
	if !slices.Contains(ProjectStates, p.State) {
		v.Add("state", "is not included in the list")
	}
	return v
}

// NeedsReview reports whether the project has gone unreviewed for longer
// than the user's review period. Completed projects never need review.
func (p Project) NeedsReview(pref Preference, now time.Time) bool {
	if p.State == ProjectStateCompleted {
		return false
	}
	last := p.CreatedAt
	if p.LastReviewedAt != nil {
		last = *p.LastReviewedAt
	}
	period := time.Duration(pref.ReviewPeriod) * 24 * time.Hour
	return now.Sub(last) > period
}
