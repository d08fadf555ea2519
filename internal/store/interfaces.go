package store

import (
	"context"
	"time"

	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

// FeedbackSourceStore defines the contract for inbound channel configuration
type FeedbackSourceStore interface {
	GetByID(ctx context.Context, id int64) (*model.FeedbackSource, error)
	Create(ctx context.Context, source *model.FeedbackSource) (*model.FeedbackSource, error)
}

// RawFeedbackItemStore defines the contract for raw item persistence and its
// conditional state transitions. Each transition reports whether the row was
// in the expected prior state.
type RawFeedbackItemStore interface {
	// CreateOrGet inserts by dedupe key; created is false when the key already existed.
	CreateOrGet(ctx context.Context, item *model.RawFeedbackItem) (*model.RawFeedbackItem, bool, error)
	GetByID(ctx context.Context, id int64) (*model.RawFeedbackItem, error)
	// Claim moves the item to extracting if it is ready, stale in extracting
	// (state changed before staleBefore) or, when allowFailed, failed.
	Claim(ctx context.Context, id int64, staleBefore time.Time, allowFailed bool) (*model.RawFeedbackItem, bool, error)
	// MarkCompleted and MarkFailed only apply while attempt is still the
	// latest claim, so a worker that lost the item to a stale takeover
	// cannot finish it.
	MarkCompleted(ctx context.Context, id int64, attempt int32) (bool, error)
	MarkFailed(ctx context.Context, id int64, attempt int32, lastError string) (bool, error)
	// ResetFailed moves a failed item back to ready_for_extraction.
	ResetFailed(ctx context.Context, id int64) (*model.RawFeedbackItem, bool, error)
	// TouchStaleReady returns up to limit items left in ready_for_extraction
	// since before staleBefore and restarts their state clock.
	TouchStaleReady(ctx context.Context, staleBefore time.Time, limit int32) ([]model.RawFeedbackItem, error)
}

// FeedbackSignalStore defines the contract for extracted signals
type FeedbackSignalStore interface {
	Create(ctx context.Context, signal *model.FeedbackSignal) (*model.FeedbackSignal, error)
	ListByItem(ctx context.Context, rawItemID int64) ([]model.FeedbackSignal, error)
}

// FeedbackSuggestionStore defines the contract for suggestions
type FeedbackSuggestionStore interface {
	// Create inserts a pending suggestion; created is false when a pending
	// suggestion of the same type already exists for the item.
	Create(ctx context.Context, suggestion *model.FeedbackSuggestion) (*model.FeedbackSuggestion, bool, error)
	GetByID(ctx context.Context, id int64) (*model.FeedbackSuggestion, error)
	// GetForUpdate locks the row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id int64) (*model.FeedbackSuggestion, error)
	GetPending(ctx context.Context, rawItemID int64, suggestionType model.SuggestionType) (*model.FeedbackSuggestion, error)
	// Resolve closes a pending suggestion. Returns ErrNotFound if it is no longer pending.
	Resolve(ctx context.Context, id int64, status model.SuggestionStatus, resultPostID *int64, principalID int64) (*model.FeedbackSuggestion, error)
	ListByItem(ctx context.Context, rawItemID int64) ([]model.FeedbackSuggestion, error)
	List(ctx context.Context, filter model.SuggestionFilter) ([]model.FeedbackSuggestion, error)
}

// PostStore defines the contract for the posts the pipeline reads and votes on
type PostStore interface {
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	Create(ctx context.Context, post *model.Post) (*model.Post, error)
	// ListCandidates returns the posts nearest to query within the workspace.
	// Posts without an embedding are never returned.
	ListCandidates(ctx context.Context, workspaceID int64, query []float32, limit int32) ([]model.PostCandidate, error)
	// AddVote reports whether a new vote row was inserted.
	AddVote(ctx context.Context, postID, principalID int64) (bool, error)
	IncrementVoteCount(ctx context.Context, postID int64, delta int32) (int32, error)
}

// BoardStore defines the contract for board lookup during create suggestions
type BoardStore interface {
	GetByID(ctx context.Context, id int64) (*model.Board, error)
	GetBySlug(ctx context.Context, workspaceID int64, slug string) (*model.Board, error)
	GetForSignalType(ctx context.Context, workspaceID int64, signalType model.SignalType) (*model.Board, error)
	GetDefault(ctx context.Context, workspaceID int64) (*model.Board, error)
}
