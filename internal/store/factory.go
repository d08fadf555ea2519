package store

import (
	"github.com/QuackbackIO/quackback-sub007/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Sources() FeedbackSourceStore {
	return newFeedbackSourceStore(s.queries)
}

func (s *Stores) RawItems() RawFeedbackItemStore {
	return newRawFeedbackItemStore(s.queries)
}

func (s *Stores) Signals() FeedbackSignalStore {
	return newFeedbackSignalStore(s.queries)
}

func (s *Stores) Suggestions() FeedbackSuggestionStore {
	return newFeedbackSuggestionStore(s.queries)
}

func (s *Stores) Posts() PostStore {
	return newPostStore(s.queries)
}

func (s *Stores) Boards() BoardStore {
	return newBoardStore(s.queries)
}
