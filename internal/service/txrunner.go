package service

import (
	"context"

	"github.com/QuackbackIO/quackback-sub007/core/db"
	"github.com/QuackbackIO/quackback-sub007/core/db/sqlc"
	"github.com/QuackbackIO/quackback-sub007/internal/store"
)

// StoreProvider exposes only the stores needed by a transactional operation.
type StoreProvider interface {
	Sources() store.FeedbackSourceStore
	RawItems() store.RawFeedbackItemStore
	Signals() store.FeedbackSignalStore
	Suggestions() store.FeedbackSuggestionStore
	Posts() store.PostStore
	Boards() store.BoardStore
}

// TxRunner runs functions within a transaction and provides stores bound to that transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type dbTxRunner struct {
	db *db.DB
}

// NewTxRunner builds a TxRunner backed by the core DB.
func NewTxRunner(db *db.DB) TxRunner {
	return &dbTxRunner{db: db}
}

func (r *dbTxRunner) WithTx(ctx context.Context, fn func(stores StoreProvider) error) error {
	return r.db.WithTx(ctx, func(q *sqlc.Queries) error {
		stores := store.NewStores(q)
		return fn(stores)
	})
}
