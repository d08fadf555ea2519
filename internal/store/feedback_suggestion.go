package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/QuackbackIO/quackback-sub007/core/db/sqlc"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

const defaultSuggestionPageSize = 50

type feedbackSuggestionStore struct {
	queries *sqlc.Queries
}

func newFeedbackSuggestionStore(queries *sqlc.Queries) FeedbackSuggestionStore {
	return &feedbackSuggestionStore{queries: queries}
}

func (s *feedbackSuggestionStore) Create(ctx context.Context, suggestion *model.FeedbackSuggestion) (*model.FeedbackSuggestion, bool, error) {
	row, err := s.queries.CreateFeedbackSuggestion(ctx, sqlc.CreateFeedbackSuggestionParams{
		ID:                suggestion.ID,
		RawFeedbackItemID: suggestion.RawFeedbackItemID,
		FeedbackSignalID:  suggestion.FeedbackSignalID,
		WorkspaceID:       suggestion.WorkspaceID,
		SuggestionType:    string(suggestion.SuggestionType),
		TargetPostID:      suggestion.TargetPostID,
		SimilarityScore:   suggestion.SimilarityScore,
		SuggestedTitle:    suggestion.SuggestedTitle,
		SuggestedBody:     suggestion.SuggestedBody,
		BoardID:           suggestion.BoardID,
		Reasoning:         suggestion.Reasoning,
	})
	if err != nil {
		// ON CONFLICT DO NOTHING on the pending (item, type) index returns no row.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return toFeedbackSuggestionModel(row), true, nil
}

func (s *feedbackSuggestionStore) GetByID(ctx context.Context, id int64) (*model.FeedbackSuggestion, error) {
	row, err := s.queries.GetFeedbackSuggestion(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toFeedbackSuggestionModel(row), nil
}

func (s *feedbackSuggestionStore) GetForUpdate(ctx context.Context, id int64) (*model.FeedbackSuggestion, error) {
	row, err := s.queries.GetFeedbackSuggestionForUpdate(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toFeedbackSuggestionModel(row), nil
}

func (s *feedbackSuggestionStore) GetPending(ctx context.Context, rawItemID int64, suggestionType model.SuggestionType) (*model.FeedbackSuggestion, error) {
	row, err := s.queries.GetPendingFeedbackSuggestion(ctx, sqlc.GetPendingFeedbackSuggestionParams{
		RawFeedbackItemID: rawItemID,
		SuggestionType:    string(suggestionType),
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toFeedbackSuggestionModel(row), nil
}

func (s *feedbackSuggestionStore) Resolve(ctx context.Context, id int64, status model.SuggestionStatus, resultPostID *int64, principalID int64) (*model.FeedbackSuggestion, error) {
	row, err := s.queries.ResolveFeedbackSuggestion(ctx, sqlc.ResolveFeedbackSuggestionParams{
		ID:                    id,
		Status:                string(status),
		ResultPostID:          resultPostID,
		ResolvedByPrincipalID: &principalID,
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toFeedbackSuggestionModel(row), nil
}

func (s *feedbackSuggestionStore) ListByItem(ctx context.Context, rawItemID int64) ([]model.FeedbackSuggestion, error) {
	rows, err := s.queries.ListFeedbackSuggestionsByItem(ctx, rawItemID)
	if err != nil {
		return nil, err
	}
	return toFeedbackSuggestionModels(rows), nil
}

func (s *feedbackSuggestionStore) List(ctx context.Context, filter model.SuggestionFilter) ([]model.FeedbackSuggestion, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSuggestionPageSize
	}

	params := sqlc.ListFeedbackSuggestionsParams{
		WorkspaceID:       filter.WorkspaceID,
		RawFeedbackItemID: filter.RawItemID,
		RowLimit:          limit,
		RowOffset:         max(filter.Offset, 0),
	}
	if filter.Status != nil {
		status := string(*filter.Status)
		params.Status = &status
	}
	if filter.Type != nil {
		suggestionType := string(*filter.Type)
		params.SuggestionType = &suggestionType
	}

	rows, err := s.queries.ListFeedbackSuggestions(ctx, params)
	if err != nil {
		return nil, err
	}
	return toFeedbackSuggestionModels(rows), nil
}

func toFeedbackSuggestionModels(rows []sqlc.FeedbackSuggestion) []model.FeedbackSuggestion {
	suggestions := make([]model.FeedbackSuggestion, len(rows))
	for i, row := range rows {
		suggestions[i] = *toFeedbackSuggestionModel(row)
	}
	return suggestions
}

func toFeedbackSuggestionModel(row sqlc.FeedbackSuggestion) *model.FeedbackSuggestion {
	return &model.FeedbackSuggestion{
		ID:                    row.ID,
		RawFeedbackItemID:     row.RawFeedbackItemID,
		FeedbackSignalID:      row.FeedbackSignalID,
		WorkspaceID:           row.WorkspaceID,
		SuggestionType:        model.SuggestionType(row.SuggestionType),
		Status:                model.SuggestionStatus(row.Status),
		TargetPostID:          row.TargetPostID,
		SimilarityScore:       row.SimilarityScore,
		SuggestedTitle:        row.SuggestedTitle,
		SuggestedBody:         row.SuggestedBody,
		BoardID:               row.BoardID,
		Reasoning:             row.Reasoning,
		ResultPostID:          row.ResultPostID,
		ResolvedAt:            timePtrFromPg(row.ResolvedAt),
		ResolvedByPrincipalID: row.ResolvedByPrincipalID,
		CreatedAt:             timeFromPg(row.CreatedAt),
		UpdatedAt:             timeFromPg(row.UpdatedAt),
	}
}
