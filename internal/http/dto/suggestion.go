package dto

import "time"

type ResolveSuggestionRequest struct {
	PrincipalID int64 `json:"principal_id,string" binding:"required"`
}

type ListSuggestionsQuery struct {
	WorkspaceID *int64  `form:"workspace_id"`
	RawItemID   *int64  `form:"raw_item_id"`
	Status      *string `form:"status"`
	Type        *string `form:"type"`
	Limit       int32   `form:"limit"`
	Offset      int32   `form:"offset"`
}

type SuggestionResponse struct {
	ID                    int64      `json:"id,string"`
	RawFeedbackItemID     int64      `json:"raw_feedback_item_id,string"`
	WorkspaceID           int64      `json:"workspace_id,string"`
	FeedbackSignalID      *int64     `json:"feedback_signal_id,omitempty"`
	SuggestionType        string     `json:"suggestion_type"`
	Status                string     `json:"status"`
	TargetPostID          *int64     `json:"target_post_id,omitempty"`
	SimilarityScore       *float64   `json:"similarity_score,omitempty"`
	SuggestedTitle        *string    `json:"suggested_title,omitempty"`
	SuggestedBody         *string    `json:"suggested_body,omitempty"`
	BoardID               *int64     `json:"board_id,omitempty"`
	Reasoning             *string    `json:"reasoning,omitempty"`
	ResultPostID          *int64     `json:"result_post_id,omitempty"`
	ResolvedAt            *time.Time `json:"resolved_at,omitempty"`
	ResolvedByPrincipalID *int64     `json:"resolved_by_principal_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

type ListSuggestionsResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
}

type PostResponse struct {
	ID          int64     `json:"id,string"`
	WorkspaceID int64     `json:"workspace_id,string"`
	BoardID     int64     `json:"board_id,string"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	VoteCount   int32     `json:"vote_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type CastVoteRequest struct {
	PrincipalID int64 `json:"principal_id,string" binding:"required"`
}

type CastVoteResponse struct {
	Inserted  bool  `json:"inserted"`
	VoteCount int32 `json:"vote_count"`
}
