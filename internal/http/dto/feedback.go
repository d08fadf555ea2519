package dto

import (
	"encoding/json"
	"time"
)

type AuthorRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// IngestFeedbackRequest carries either normalized fields or a raw source payload.
// When Payload is set the source's mapper fills in everything else.
type IngestFeedbackRequest struct {
	SourceID        int64           `json:"source_id" binding:"required"`
	SourceType      string          `json:"source_type" binding:"required"`
	ExternalID      string          `json:"external_id"`
	DedupeKey       *string         `json:"dedupe_key,omitempty"`
	Subject         *string         `json:"subject,omitempty"`
	Body            string          `json:"body"`
	Author          AuthorRequest   `json:"author"`
	PrincipalID     *int64          `json:"principal_id,omitempty"`
	ContextEnvelope json.RawMessage `json:"context_envelope,omitempty"`
	Payload         json.RawMessage `json:"payload,omitempty"`
}

type IngestFeedbackResponse struct {
	RawItemID  int64  `json:"raw_item_id,string"`
	DedupeKey  string `json:"dedupe_key"`
	MessageID  string `json:"message_id,omitempty"`
	Enqueued   bool   `json:"enqueued"`
	Duplicated bool   `json:"duplicated"`
}

type SubmissionResponse struct {
	RawItemID int64  `json:"raw_item_id,string"`
	MessageID string `json:"message_id"`
}

type SignalResponse struct {
	ID           int64     `json:"id,string"`
	SignalType   string    `json:"signal_type"`
	Summary      string    `json:"summary"`
	Title        *string   `json:"title,omitempty"`
	HasEmbedding bool      `json:"has_embedding"`
	CreatedAt    time.Time `json:"created_at"`
}

type FeedbackItemResponse struct {
	ID              int64            `json:"id,string"`
	WorkspaceID     int64            `json:"workspace_id,string"`
	SourceID        int64            `json:"source_id,string"`
	SourceType      string           `json:"source_type"`
	ExternalID      string           `json:"external_id"`
	DedupeKey       string           `json:"dedupe_key"`
	Subject         *string          `json:"subject,omitempty"`
	Body            string           `json:"body"`
	AuthorName      *string          `json:"author_name,omitempty"`
	AuthorEmail     *string          `json:"author_email,omitempty"`
	ProcessingState string           `json:"processing_state"`
	StateChangedAt  time.Time        `json:"state_changed_at"`
	LastError       *string          `json:"last_error,omitempty"`
	AttemptCount    int32            `json:"attempt_count"`
	ContextEnvelope json.RawMessage  `json:"context_envelope,omitempty"`
	Signals         []SignalResponse `json:"signals"`
	CreatedAt       time.Time        `json:"created_at"`
}
