package store

import (
	"context"

	"github.com/QuackbackIO/quackback-sub007/core/db/sqlc"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

type feedbackSourceStore struct {
	queries *sqlc.Queries
}

func newFeedbackSourceStore(queries *sqlc.Queries) FeedbackSourceStore {
	return &feedbackSourceStore{queries: queries}
}

func (s *feedbackSourceStore) GetByID(ctx context.Context, id int64) (*model.FeedbackSource, error) {
	row, err := s.queries.GetFeedbackSource(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toFeedbackSourceModel(row), nil
}

func (s *feedbackSourceStore) Create(ctx context.Context, source *model.FeedbackSource) (*model.FeedbackSource, error) {
	row, err := s.queries.CreateFeedbackSource(ctx, sqlc.CreateFeedbackSourceParams{
		ID:          source.ID,
		WorkspaceID: source.WorkspaceID,
		SourceType:  string(source.SourceType),
		Name:        source.Name,
		IsEnabled:   source.IsEnabled,
	})
	if err != nil {
		return nil, err
	}
	return toFeedbackSourceModel(row), nil
}

func toFeedbackSourceModel(row sqlc.FeedbackSource) *model.FeedbackSource {
	return &model.FeedbackSource{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		SourceType:  model.SourceType(row.SourceType),
		Name:        row.Name,
		IsEnabled:   row.IsEnabled,
		CreatedAt:   timeFromPg(row.CreatedAt),
		UpdatedAt:   timeFromPg(row.UpdatedAt),
	}
}
