package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/QuackbackIO/quackback-sub007/core/db/sqlc"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

type rawFeedbackItemStore struct {
	queries *sqlc.Queries
}

func newRawFeedbackItemStore(queries *sqlc.Queries) RawFeedbackItemStore {
	return &rawFeedbackItemStore{queries: queries}
}

func (s *rawFeedbackItemStore) CreateOrGet(ctx context.Context, item *model.RawFeedbackItem) (*model.RawFeedbackItem, bool, error) {
	row, err := s.queries.UpsertRawFeedbackItem(ctx, upsertRawFeedbackItemParams(item))
	if err != nil {
		return nil, false, err
	}
	created := row.ID == item.ID
	return toRawFeedbackItemModel(row), created, nil
}

func upsertRawFeedbackItemParams(item *model.RawFeedbackItem) sqlc.UpsertRawFeedbackItemParams {
	return sqlc.UpsertRawFeedbackItemParams{
		ID:              item.ID,
		WorkspaceID:     item.WorkspaceID,
		SourceID:        item.SourceID,
		SourceType:      string(item.SourceType),
		ExternalID:      item.ExternalID,
		DedupeKey:       item.DedupeKey,
		AuthorName:      item.Author.Name,
		AuthorEmail:     item.Author.Email,
		PrincipalID:     item.PrincipalID,
		Subject:         item.Subject,
		Body:            item.Body,
		ContextEnvelope: envelopeJSON(item.ContextEnvelope),
	}
}

func (s *rawFeedbackItemStore) GetByID(ctx context.Context, id int64) (*model.RawFeedbackItem, error) {
	row, err := s.queries.GetRawFeedbackItem(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toRawFeedbackItemModel(row), nil
}

func (s *rawFeedbackItemStore) Claim(ctx context.Context, id int64, staleBefore time.Time, allowFailed bool) (*model.RawFeedbackItem, bool, error) {
	row, err := s.queries.ClaimRawFeedbackItem(ctx, sqlc.ClaimRawFeedbackItemParams{
		ID:          id,
		StaleBefore: pgTimestamptz(staleBefore),
		AllowFailed: allowFailed,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return toRawFeedbackItemModel(row), true, nil
}

func (s *rawFeedbackItemStore) MarkCompleted(ctx context.Context, id int64, attempt int32) (bool, error) {
	n, err := s.queries.CompleteRawFeedbackItem(ctx, sqlc.CompleteRawFeedbackItemParams{
		ID:      id,
		Attempt: attempt,
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *rawFeedbackItemStore) MarkFailed(ctx context.Context, id int64, attempt int32, lastError string) (bool, error) {
	n, err := s.queries.FailRawFeedbackItem(ctx, sqlc.FailRawFeedbackItemParams{
		LastError: &lastError,
		ID:        id,
		Attempt:   attempt,
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *rawFeedbackItemStore) ResetFailed(ctx context.Context, id int64) (*model.RawFeedbackItem, bool, error) {
	row, err := s.queries.ResetFailedRawFeedbackItem(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return toRawFeedbackItemModel(row), true, nil
}

func (s *rawFeedbackItemStore) TouchStaleReady(ctx context.Context, staleBefore time.Time, limit int32) ([]model.RawFeedbackItem, error) {
	rows, err := s.queries.TouchStaleReadyRawFeedbackItems(ctx, sqlc.TouchStaleReadyRawFeedbackItemsParams{
		StaleBefore: pgTimestamptz(staleBefore),
		RowLimit:    limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]model.RawFeedbackItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, *toRawFeedbackItemModel(row))
	}
	return items, nil
}

func toRawFeedbackItemModel(row sqlc.RawFeedbackItem) *model.RawFeedbackItem {
	return &model.RawFeedbackItem{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		SourceID:    row.SourceID,
		SourceType:  model.SourceType(row.SourceType),
		ExternalID:  row.ExternalID,
		DedupeKey:   row.DedupeKey,
		Author: model.Author{
			Name:  row.AuthorName,
			Email: row.AuthorEmail,
		},
		PrincipalID:     row.PrincipalID,
		Subject:         row.Subject,
		Body:            row.Body,
		ContextEnvelope: json.RawMessage(row.ContextEnvelope),
		ProcessingState: model.ProcessingState(row.ProcessingState),
		StateChangedAt:  timeFromPg(row.StateChangedAt),
		LastError:       row.LastError,
		AttemptCount:    row.AttemptCount,
		CreatedAt:       timeFromPg(row.CreatedAt),
		UpdatedAt:       timeFromPg(row.UpdatedAt),
	}
}
