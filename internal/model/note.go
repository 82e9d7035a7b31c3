package model

import (
	"strings"
	"time"
)

// Note is free text attached to a project.
type Note struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks field constraints.
func (n Note) Validate() ValidationErrors {
	v := ValidationErrors{}
	if strings.TrimSpace(n.Body) == "" {
		v.Add("body", MsgBlank)
	}
	if n.ProjectID == "" {
		v.Add("project", MsgBlank)
	}
	return v
}
