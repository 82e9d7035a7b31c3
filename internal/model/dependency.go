package model

import "time"

// RelationshipBlocks is the only dependency kind: the successor cannot be
// acted on until the predecessor is completed.
const RelationshipBlocks = "blocks"

// Dependency is a directed edge between two todos.
type Dependency struct {
	ID               string    `json:"id" db:"id"`
	PredecessorID    string    `json:"predecessor_id" db:"predecessor_id"`
	SuccessorID      string    `json:"successor_id" db:"successor_id"`
	RelationshipType string    `json:"relationship_type" db:"relationship_type"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
