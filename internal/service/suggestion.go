package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/QuackbackIO/quackback-sub007/common/id"
	"github.com/QuackbackIO/quackback-sub007/common/logger"
	"github.com/QuackbackIO/quackback-sub007/common/metrics"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/store"
)

type SuggestionService interface {
	// Accept applies the suggestion's side effect and closes it in one transaction.
	Accept(ctx context.Context, suggestionID, principalID int64) (*model.Post, error)
	// Dismiss closes a pending suggestion. Dismissing an already resolved suggestion returns it unchanged.
	Dismiss(ctx context.Context, suggestionID, principalID int64) (*model.FeedbackSuggestion, error)
	Get(ctx context.Context, suggestionID int64) (*model.FeedbackSuggestion, error)
	List(ctx context.Context, filter model.SuggestionFilter) ([]model.FeedbackSuggestion, error)
}

type suggestionService struct {
	stores   StoreProvider
	txRunner TxRunner
}

func NewSuggestionService(stores StoreProvider, txRunner TxRunner) SuggestionService {
	return &suggestionService{stores: stores, txRunner: txRunner}
}

func (s *suggestionService) Accept(ctx context.Context, suggestionID, principalID int64) (*model.Post, error) {
	if principalID == 0 {
		return nil, fmt.Errorf("%w: principal_id required", ErrInvalidInput)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SuggestionID: &suggestionID,
		Component:    "intake.service.suggestions",
	})

	var (
		post    *model.Post
		sugType model.SuggestionType
	)
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		sug, err := lockPending(ctx, stores, suggestionID)
		if err != nil {
			return err
		}
		sugType = sug.SuggestionType

		switch sug.SuggestionType {
		case model.SuggestionTypeMergePost:
			post, err = acceptMerge(ctx, stores, sug, principalID)
		case model.SuggestionTypeCreatePost:
			post, err = acceptCreate(ctx, stores, sug, principalID)
		default:
			err = fmt.Errorf("unknown suggestion type %q", sug.SuggestionType)
		}
		if err != nil {
			return err
		}

		if _, err := stores.Suggestions().Resolve(ctx, sug.ID, model.SuggestionStatusAccepted, &post.ID, principalID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSuggestionResolved
			}
			return fmt.Errorf("resolving suggestion: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SuggestionsResolved.WithLabelValues(string(sugType), string(model.SuggestionStatusAccepted)).Inc()
	return post, nil
}

func (s *suggestionService) Dismiss(ctx context.Context, suggestionID, principalID int64) (*model.FeedbackSuggestion, error) {
	if principalID == 0 {
		return nil, fmt.Errorf("%w: principal_id required", ErrInvalidInput)
	}

	var (
		result    *model.FeedbackSuggestion
		dismissed bool
	)
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		sug, err := stores.Suggestions().GetForUpdate(ctx, suggestionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSuggestionNotFound
			}
			return fmt.Errorf("locking suggestion: %w", err)
		}
		if !sug.IsPending() {
			result = sug
			return nil
		}

		resolved, err := stores.Suggestions().Resolve(ctx, sug.ID, model.SuggestionStatusDismissed, nil, principalID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Resolved concurrently; report the current row.
				result, err = stores.Suggestions().GetByID(ctx, sug.ID)
				return err
			}
			return fmt.Errorf("dismissing suggestion: %w", err)
		}
		result = resolved
		dismissed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dismissed {
		metrics.SuggestionsResolved.WithLabelValues(string(result.SuggestionType), string(model.SuggestionStatusDismissed)).Inc()
	}
	return result, nil
}

func (s *suggestionService) Get(ctx context.Context, suggestionID int64) (*model.FeedbackSuggestion, error) {
	sug, err := s.stores.Suggestions().GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("fetching suggestion: %w", err)
	}
	return sug, nil
}

func (s *suggestionService) List(ctx context.Context, filter model.SuggestionFilter) ([]model.FeedbackSuggestion, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *filter.Status)
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, *filter.Type)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidInput)
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}

	suggestions, err := s.stores.Suggestions().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing suggestions: %w", err)
	}
	return suggestions, nil
}

func lockPending(ctx context.Context, stores StoreProvider, suggestionID int64) (*model.FeedbackSuggestion, error) {
	sug, err := stores.Suggestions().GetForUpdate(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("locking suggestion: %w", err)
	}
	if !sug.IsPending() {
		return nil, fmt.Errorf("%w: status is %s", ErrSuggestionResolved, sug.Status)
	}
	return sug, nil
}

func acceptMerge(ctx context.Context, stores StoreProvider, sug *model.FeedbackSuggestion, principalID int64) (*model.Post, error) {
	if sug.TargetPostID == nil {
		return nil, fmt.Errorf("merge suggestion %d has no target post", sug.ID)
	}

	post, err := stores.Posts().GetByID(ctx, *sug.TargetPostID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("fetching target post: %w", err)
	}

	count, _, err := castVote(ctx, stores, post.ID, principalID)
	if err != nil {
		return nil, err
	}
	post.VoteCount = count
	return post, nil
}

func acceptCreate(ctx context.Context, stores StoreProvider, sug *model.FeedbackSuggestion, principalID int64) (*model.Post, error) {
	if sug.BoardID == nil || sug.SuggestedTitle == nil {
		return nil, fmt.Errorf("create suggestion %d is missing board or title", sug.ID)
	}

	body := ""
	if sug.SuggestedBody != nil {
		body = *sug.SuggestedBody
	}

	embedding, err := signalEmbedding(ctx, stores, sug)
	if err != nil {
		return nil, err
	}

	post, err := stores.Posts().Create(ctx, &model.Post{
		ID:          id.New(),
		WorkspaceID: sug.WorkspaceID,
		BoardID:     *sug.BoardID,
		Title:       *sug.SuggestedTitle,
		Body:        body,
		Embedding:   embedding,
		PrincipalID: &principalID,
	})
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	count, _, err := castVote(ctx, stores, post.ID, principalID)
	if err != nil {
		return nil, err
	}
	post.VoteCount = count
	return post, nil
}

// signalEmbedding carries the source signal's embedding onto the new post so
// later feedback can merge into it.
func signalEmbedding(ctx context.Context, stores StoreProvider, sug *model.FeedbackSuggestion) ([]float32, error) {
	if sug.FeedbackSignalID == nil {
		return nil, nil
	}
	signals, err := stores.Signals().ListByItem(ctx, sug.RawFeedbackItemID)
	if err != nil {
		return nil, fmt.Errorf("listing signals: %w", err)
	}
	for _, sig := range signals {
		if sig.ID == *sug.FeedbackSignalID && sig.HasEmbedding() {
			return sig.Embedding, nil
		}
	}
	return nil, nil
}

// castVote inserts the vote row and bumps vote_count by the rows actually inserted.
// Must run inside a transaction.
func castVote(ctx context.Context, stores StoreProvider, postID, principalID int64) (int32, bool, error) {
	inserted, err := stores.Posts().AddVote(ctx, postID, principalID)
	if err != nil {
		return 0, false, fmt.Errorf("adding vote: %w", err)
	}

	var delta int32
	if inserted {
		delta = 1
	}
	count, err := stores.Posts().IncrementVoteCount(ctx, postID, delta)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, false, ErrPostNotFound
		}
		return 0, false, fmt.Errorf("incrementing vote count: %w", err)
	}
	return count, inserted, nil
}
