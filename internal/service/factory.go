package service

import (
	"log/slog"
	"time"

	"github.com/QuackbackIO/quackback-sub007/internal/queue"
)

type Services struct {
	stores       StoreProvider
	txRunner     TxRunner
	producer     queue.Producer
	pollInterval time.Duration
	logger       *slog.Logger
}

func NewServices(stores StoreProvider, txRunner TxRunner, producer queue.Producer, logger *slog.Logger) *Services {
	return &Services{
		stores:       stores,
		txRunner:     txRunner,
		producer:     producer,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
}

func (s *Services) FeedbackIngest() FeedbackIngestService {
	return NewFeedbackIngestService(s.stores, s.producer, s.pollInterval, s.logger)
}

func (s *Services) Suggestions() SuggestionService {
	return NewSuggestionService(s.stores, s.txRunner)
}

func (s *Services) Votes() VoteService {
	return NewVoteService(s.txRunner)
}
