package store

import (
	"context"

	"github.com/QuackbackIO/quackback-sub007/core/db/sqlc"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

type feedbackSignalStore struct {
	queries *sqlc.Queries
}

func newFeedbackSignalStore(queries *sqlc.Queries) FeedbackSignalStore {
	return &feedbackSignalStore{queries: queries}
}

func (s *feedbackSignalStore) Create(ctx context.Context, signal *model.FeedbackSignal) (*model.FeedbackSignal, error) {
	row, err := s.queries.CreateFeedbackSignal(ctx, sqlc.CreateFeedbackSignalParams{
		ID:                signal.ID,
		RawFeedbackItemID: signal.RawFeedbackItemID,
		SignalType:        string(signal.SignalType),
		Summary:           signal.Summary,
		Title:             signal.Title,
		Embedding:         toVector(signal.Embedding),
	})
	if err != nil {
		return nil, err
	}
	return toFeedbackSignalModel(row), nil
}

func (s *feedbackSignalStore) ListByItem(ctx context.Context, rawItemID int64) ([]model.FeedbackSignal, error) {
	rows, err := s.queries.ListFeedbackSignalsByItem(ctx, rawItemID)
	if err != nil {
		return nil, err
	}
	signals := make([]model.FeedbackSignal, len(rows))
	for i, row := range rows {
		signals[i] = *toFeedbackSignalModel(row)
	}
	return signals, nil
}

func toFeedbackSignalModel(row sqlc.FeedbackSignal) *model.FeedbackSignal {
	return &model.FeedbackSignal{
		ID:                row.ID,
		RawFeedbackItemID: row.RawFeedbackItemID,
		SignalType:        model.SignalType(row.SignalType),
		Summary:           row.Summary,
		Title:             row.Title,
		Embedding:         fromVector(row.Embedding),
		CreatedAt:         timeFromPg(row.CreatedAt),
	}
}
