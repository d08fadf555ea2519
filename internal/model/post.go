package model

import "time"

// Post is a feature request on a board. The pipeline reads posts as merge
// targets and writes them only through suggestion acceptance or votes.
type Post struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PrincipalID *int64    `json:"principal_id,omitempty"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Embedding   []float32 `json:"-"`
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace_id"`
	BoardID     int64     `json:"board_id"`
	VoteCount   int32     `json:"vote_count"`
}

// PostCandidate is the slice of a post the similarity matcher needs.
type PostCandidate struct {
	CreatedAt time.Time
	Title     string
	Embedding []float32
	ID        int64
}

type Board struct {
	CreatedAt   time.Time   `json:"created_at"`
	SignalType  *SignalType `json:"signal_type,omitempty"`
	Slug        string      `json:"slug"`
	Name        string      `json:"name"`
	ID          int64       `json:"id"`
	WorkspaceID int64       `json:"workspace_id"`
	IsDefault   bool        `json:"is_default"`
}
