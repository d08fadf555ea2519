package model

import (
	"encoding/json"
	"time"
)

type (
	SourceType      string
	ProcessingState string
)

const (
	SourceTypeHelpdeskChat SourceType = "helpdesk_chat"
	SourceTypeEmail        SourceType = "email"
	SourceTypeAPI          SourceType = "api"
	SourceTypeTicketing    SourceType = "ticketing"
)

const (
	ProcessingStateReadyForExtraction ProcessingState = "ready_for_extraction"
	ProcessingStateExtracting         ProcessingState = "extracting"
	ProcessingStateCompleted          ProcessingState = "completed"
	ProcessingStateFailed             ProcessingState = "failed"
)

func (t SourceType) Valid() bool {
	switch t {
	case SourceTypeHelpdeskChat, SourceTypeEmail, SourceTypeAPI, SourceTypeTicketing:
		return true
	}
	return false
}

// Terminal reports whether the pipeline is done with an item in this state.
// Failed items only move again through an explicit resubmit or a queue retry.
func (s ProcessingState) Terminal() bool {
	return s == ProcessingStateCompleted || s == ProcessingStateFailed
}

// FeedbackSource is one configured inbound channel in a workspace.
type FeedbackSource struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Name        string     `json:"name"`
	SourceType  SourceType `json:"source_type"`
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspace_id"`
	IsEnabled   bool       `json:"is_enabled"`
}

type Author struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// RawFeedbackItem is one inbound external message before any model processing.
type RawFeedbackItem struct {
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	StateChangedAt  time.Time       `json:"state_changed_at"`
	Author          Author          `json:"author"`
	Subject         *string         `json:"subject,omitempty"`
	LastError       *string         `json:"last_error,omitempty"`
	PrincipalID     *int64          `json:"principal_id,omitempty"`
	ContextEnvelope json.RawMessage `json:"context_envelope,omitempty"`
	SourceType      SourceType      `json:"source_type"`
	ExternalID      string          `json:"external_id"`
	DedupeKey       string          `json:"dedupe_key"`
	Body            string          `json:"body"`
	ProcessingState ProcessingState `json:"processing_state"`
	ID              int64           `json:"id"`
	WorkspaceID     int64           `json:"workspace_id"`
	SourceID        int64           `json:"source_id"`
	AttemptCount    int32           `json:"attempt_count"`
}

// Content is the text the pipeline reads: subject and body joined.
func (i RawFeedbackItem) Content() string {
	if i.Subject == nil || *i.Subject == "" {
		return i.Body
	}
	if i.Body == "" {
		return *i.Subject
	}
	return *i.Subject + "\n\n" + i.Body
}

func (i RawFeedbackItem) Envelope() Envelope {
	return ParseEnvelope(i.ContextEnvelope)
}
