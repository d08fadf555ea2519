package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/QuackbackIO/quackback-sub007/internal/store"
)

type VoteResult struct {
	Inserted  bool  `json:"inserted"`
	VoteCount int32 `json:"vote_count"`
}

// VoteService casts direct votes through the same insert-then-increment path
// suggestion acceptance uses.
type VoteService interface {
	Cast(ctx context.Context, postID, principalID int64) (*VoteResult, error)
}

type voteService struct {
	txRunner TxRunner
}

func NewVoteService(txRunner TxRunner) VoteService {
	return &voteService{txRunner: txRunner}
}

func (s *voteService) Cast(ctx context.Context, postID, principalID int64) (*VoteResult, error) {
	if principalID == 0 {
		return nil, fmt.Errorf("%w: principal_id required", ErrInvalidInput)
	}

	var result VoteResult
	err := s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if _, err := stores.Posts().GetByID(ctx, postID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPostNotFound
			}
			return fmt.Errorf("fetching post: %w", err)
		}

		count, inserted, err := castVote(ctx, stores, postID, principalID)
		if err != nil {
			return err
		}
		result = VoteResult{Inserted: inserted, VoteCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
