package model

import "time"

type (
	SuggestionType   string
	SuggestionStatus string
)

const (
	SuggestionTypeMergePost  SuggestionType = "merge_post"
	SuggestionTypeCreatePost SuggestionType = "create_post"
)

const (
	SuggestionStatusPending   SuggestionStatus = "pending"
	SuggestionStatusAccepted  SuggestionStatus = "accepted"
	SuggestionStatusDismissed SuggestionStatus = "dismissed"
)

func (t SuggestionType) Valid() bool {
	return t == SuggestionTypeMergePost || t == SuggestionTypeCreatePost
}

func (s SuggestionStatus) Valid() bool {
	switch s {
	case SuggestionStatusPending, SuggestionStatusAccepted, SuggestionStatusDismissed:
		return true
	}
	return false
}

// FeedbackSuggestion is a proposed action awaiting a reviewer.
// merge_post carries TargetPostID and SimilarityScore; create_post carries
// SuggestedTitle, SuggestedBody and BoardID. ResultPostID is set on acceptance.
type FeedbackSuggestion struct {
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
	ResolvedAt            *time.Time       `json:"resolved_at,omitempty"`
	FeedbackSignalID      *int64           `json:"feedback_signal_id,omitempty"`
	TargetPostID          *int64           `json:"target_post_id,omitempty"`
	SimilarityScore       *float64         `json:"similarity_score,omitempty"`
	SuggestedTitle        *string          `json:"suggested_title,omitempty"`
	SuggestedBody         *string          `json:"suggested_body,omitempty"`
	BoardID               *int64           `json:"board_id,omitempty"`
	Reasoning             *string          `json:"reasoning,omitempty"`
	ResultPostID          *int64           `json:"result_post_id,omitempty"`
	ResolvedByPrincipalID *int64           `json:"resolved_by_principal_id,omitempty"`
	SuggestionType        SuggestionType   `json:"suggestion_type"`
	Status                SuggestionStatus `json:"status"`
	ID                    int64            `json:"id"`
	RawFeedbackItemID     int64            `json:"raw_feedback_item_id"`
	WorkspaceID           int64            `json:"workspace_id"`
}

func (s FeedbackSuggestion) IsPending() bool {
	return s.Status == SuggestionStatusPending
}

type SuggestionFilter struct {
	WorkspaceID *int64
	RawItemID   *int64
	Status      *SuggestionStatus
	Type        *SuggestionType
	Limit       int32
	Offset      int32
}
