package store

import (
	"context"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/QuackbackIO/quackback-sub007/core/db/sqlc"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

type postStore struct {
	queries *sqlc.Queries
}

func newPostStore(queries *sqlc.Queries) PostStore {
	return &postStore{queries: queries}
}

func (s *postStore) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	row, err := s.queries.GetPost(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toPostModel(row), nil
}

func (s *postStore) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	row, err := s.queries.CreatePost(ctx, sqlc.CreatePostParams{
		ID:          post.ID,
		WorkspaceID: post.WorkspaceID,
		BoardID:     post.BoardID,
		Title:       post.Title,
		Body:        post.Body,
		Embedding:   toVector(post.Embedding),
		PrincipalID: post.PrincipalID,
	})
	if err != nil {
		return nil, err
	}
	return toPostModel(row), nil
}

func (s *postStore) ListCandidates(ctx context.Context, workspaceID int64, query []float32, limit int32) ([]model.PostCandidate, error) {
	rows, err := s.queries.ListPostCandidates(ctx, sqlc.ListPostCandidatesParams{
		WorkspaceID: workspaceID,
		Query:       pgvector.NewVector(query),
		RowLimit:    limit,
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]model.PostCandidate, 0, len(rows))
	for _, row := range rows {
		if row.Embedding == nil {
			continue
		}
		candidates = append(candidates, model.PostCandidate{
			ID:        row.ID,
			Title:     row.Title,
			Embedding: row.Embedding.Slice(),
			CreatedAt: timeFromPg(row.CreatedAt),
		})
	}
	return candidates, nil
}

func (s *postStore) AddVote(ctx context.Context, postID, principalID int64) (bool, error) {
	n, err := s.queries.InsertPostVote(ctx, sqlc.InsertPostVoteParams{
		PostID:      postID,
		PrincipalID: principalID,
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *postStore) IncrementVoteCount(ctx context.Context, postID int64, delta int32) (int32, error) {
	count, err := s.queries.IncrementPostVoteCount(ctx, sqlc.IncrementPostVoteCountParams{
		Delta: delta,
		ID:    postID,
	})
	if err != nil {
		return 0, notFound(err)
	}
	return count, nil
}

func toPostModel(row sqlc.Post) *model.Post {
	return &model.Post{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		BoardID:     row.BoardID,
		Title:       row.Title,
		Body:        row.Body,
		VoteCount:   row.VoteCount,
		Embedding:   fromVector(row.Embedding),
		PrincipalID: row.PrincipalID,
		CreatedAt:   timeFromPg(row.CreatedAt),
		UpdatedAt:   timeFromPg(row.UpdatedAt),
	}
}
