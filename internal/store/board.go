package store

import (
	"context"

	"github.com/QuackbackIO/quackback-sub007/core/db/sqlc"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

type boardStore struct {
	queries *sqlc.Queries
}

func newBoardStore(queries *sqlc.Queries) BoardStore {
	return &boardStore{queries: queries}
}

func (s *boardStore) GetByID(ctx context.Context, id int64) (*model.Board, error) {
	row, err := s.queries.GetBoard(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toBoardModel(row), nil
}

func (s *boardStore) GetBySlug(ctx context.Context, workspaceID int64, slug string) (*model.Board, error) {
	row, err := s.queries.GetBoardBySlug(ctx, sqlc.GetBoardBySlugParams{
		WorkspaceID: workspaceID,
		Slug:        slug,
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toBoardModel(row), nil
}

func (s *boardStore) GetForSignalType(ctx context.Context, workspaceID int64, signalType model.SignalType) (*model.Board, error) {
	st := string(signalType)
	row, err := s.queries.GetBoardForSignalType(ctx, sqlc.GetBoardForSignalTypeParams{
		WorkspaceID: workspaceID,
		SignalType:  &st,
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toBoardModel(row), nil
}

func (s *boardStore) GetDefault(ctx context.Context, workspaceID int64) (*model.Board, error) {
	row, err := s.queries.GetDefaultBoard(ctx, workspaceID)
	if err != nil {
		return nil, notFound(err)
	}
	return toBoardModel(row), nil
}

func toBoardModel(row sqlc.Board) *model.Board {
	board := &model.Board{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		Slug:        row.Slug,
		Name:        row.Name,
		IsDefault:   row.IsDefault,
		CreatedAt:   timeFromPg(row.CreatedAt),
	}
	if row.SignalType != nil {
		st := model.SignalType(*row.SignalType)
		board.SignalType = &st
	}
	return board
}
