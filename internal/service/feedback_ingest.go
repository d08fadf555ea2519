package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/QuackbackIO/quackback-sub007/common/id"
	"github.com/QuackbackIO/quackback-sub007/common/metrics"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/queue"
	"github.com/QuackbackIO/quackback-sub007/internal/store"
)

const defaultPollInterval = 500 * time.Millisecond

type IngestParams struct {
	SourceID        int64            `json:"source_id"`
	SourceType      model.SourceType `json:"source_type"`
	ExternalID      string           `json:"external_id"`
	DedupeKey       *string          `json:"dedupe_key,omitempty"`
	Subject         *string          `json:"subject,omitempty"`
	Body            string           `json:"body"`
	Author          model.Author     `json:"author"`
	PrincipalID     *int64           `json:"principal_id,omitempty"`
	ContextEnvelope json.RawMessage  `json:"context_envelope,omitempty"`

	TraceID *string `json:"trace_id,omitempty"`
}

type IngestResult struct {
	Item      *model.RawFeedbackItem
	DedupeKey string
	// Submission is nil for duplicates, which are never re-enqueued.
	Submission *Submission
	Duplicated bool
}

type ItemDetails struct {
	Item    *model.RawFeedbackItem
	Signals []model.FeedbackSignal
}

type FeedbackIngestService interface {
	Ingest(ctx context.Context, params IngestParams) (*IngestResult, error)
	SubmitForExtraction(ctx context.Context, rawItemID int64, traceID *string) (*Submission, error)
	Resubmit(ctx context.Context, rawItemID int64, traceID *string) (*Submission, error)
	Get(ctx context.Context, rawItemID int64) (*ItemDetails, error)
	// RequeueStale re-enqueues up to limit items that have sat in
	// ready_for_extraction since before staleBefore, returning how many were sent.
	RequeueStale(ctx context.Context, staleBefore time.Time, limit int32) (int, error)
}

// Submission is the handle for one enqueued extraction. Callers may Wait on it
// or drop it; the outcome is persisted on the item either way.
type Submission struct {
	RawItemID int64
	MessageID string

	items        store.RawFeedbackItemStore
	pollInterval time.Duration
}

// Wait polls the item until it reaches completed or failed.
func (s *Submission) Wait(ctx context.Context) (*model.RawFeedbackItem, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		item, err := s.items.GetByID(ctx, s.RawItemID)
		if err != nil {
			return nil, fmt.Errorf("polling raw item: %w", err)
		}
		if item.ProcessingState.Terminal() {
			return item, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

type feedbackIngestService struct {
	stores       StoreProvider
	queue        queue.Producer
	pollInterval time.Duration
	logger       *slog.Logger
}

func NewFeedbackIngestService(stores StoreProvider, producer queue.Producer, pollInterval time.Duration, logger *slog.Logger) FeedbackIngestService {
	if logger == nil {
		logger = slog.Default()
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &feedbackIngestService{
		stores:       stores,
		queue:        producer,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

func (s *feedbackIngestService) Ingest(ctx context.Context, params IngestParams) (*IngestResult, error) {
	if err := validateIngest(params); err != nil {
		return nil, err
	}

	source, err := s.stores.Sources().GetByID(ctx, params.SourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSourceNotFound
		}
		return nil, fmt.Errorf("fetching feedback source: %w", err)
	}
	if !source.IsEnabled {
		return nil, ErrSourceDisabled
	}
	if source.SourceType != params.SourceType {
		return nil, fmt.Errorf("%w: source %d is %s, not %s", ErrInvalidInput, source.ID, source.SourceType, params.SourceType)
	}

	dedupeKey := computeDedupeKey(params)

	item, created, err := s.stores.RawItems().CreateOrGet(ctx, &model.RawFeedbackItem{
		ID:              id.New(),
		WorkspaceID:     source.WorkspaceID,
		SourceID:        source.ID,
		SourceType:      params.SourceType,
		ExternalID:      params.ExternalID,
		DedupeKey:       dedupeKey,
		Author:          params.Author,
		Subject:         params.Subject,
		Body:            params.Body,
		ContextEnvelope: params.ContextEnvelope,
		PrincipalID:     params.PrincipalID,
		ProcessingState: model.ProcessingStateReadyForExtraction,
	})
	if err != nil {
		return nil, fmt.Errorf("storing raw item: %w", err)
	}

	if !created {
		metrics.ItemsIngested.WithLabelValues(string(params.SourceType), "duplicate").Inc()
		s.logger.InfoContext(ctx, "duplicate feedback deduped",
			"raw_item_id", item.ID,
			"dedupe_key", dedupeKey,
			"processing_state", item.ProcessingState)
		return &IngestResult{Item: item, DedupeKey: dedupeKey, Duplicated: true}, nil
	}
	metrics.ItemsIngested.WithLabelValues(string(params.SourceType), "created").Inc()

	submission, err := s.submit(ctx, item, params.TraceID)
	if err != nil {
		// The item stays ready_for_extraction; Resubmit picks it up.
		return nil, err
	}

	return &IngestResult{
		Item:       item,
		DedupeKey:  dedupeKey,
		Submission: submission,
	}, nil
}

func (s *feedbackIngestService) SubmitForExtraction(ctx context.Context, rawItemID int64, traceID *string) (*Submission, error) {
	item, err := s.stores.RawItems().GetByID(ctx, rawItemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRawItemNotFound
		}
		return nil, fmt.Errorf("fetching raw item: %w", err)
	}
	return s.submit(ctx, item, traceID)
}

// Resubmit is the operator path out of failed. An item still waiting in
// ready_for_extraction is enqueued again as is, which recovers a lost enqueue.
func (s *feedbackIngestService) Resubmit(ctx context.Context, rawItemID int64, traceID *string) (*Submission, error) {
	item, reset, err := s.stores.RawItems().ResetFailed(ctx, rawItemID)
	if err != nil {
		return nil, fmt.Errorf("resetting raw item: %w", err)
	}

	if !reset {
		item, err = s.stores.RawItems().GetByID(ctx, rawItemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrRawItemNotFound
			}
			return nil, fmt.Errorf("fetching raw item: %w", err)
		}
		if item.ProcessingState != model.ProcessingStateReadyForExtraction {
			return nil, fmt.Errorf("%w: state is %s", ErrNotResubmittable, item.ProcessingState)
		}
	}

	s.logger.InfoContext(ctx, "raw item resubmitted", "raw_item_id", item.ID, "was_failed", reset)
	return s.submit(ctx, item, traceID)
}

func (s *feedbackIngestService) Get(ctx context.Context, rawItemID int64) (*ItemDetails, error) {
	item, err := s.stores.RawItems().GetByID(ctx, rawItemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRawItemNotFound
		}
		return nil, fmt.Errorf("fetching raw item: %w", err)
	}

	signals, err := s.stores.Signals().ListByItem(ctx, rawItemID)
	if err != nil {
		return nil, fmt.Errorf("listing signals: %w", err)
	}

	return &ItemDetails{Item: item, Signals: signals}, nil
}

// The claim admits a single delivery per item, so a message for an item that
// is already queued is skipped by the worker.
func (s *feedbackIngestService) RequeueStale(ctx context.Context, staleBefore time.Time, limit int32) (int, error) {
	items, err := s.stores.RawItems().TouchStaleReady(ctx, staleBefore, limit)
	if err != nil {
		return 0, fmt.Errorf("listing stale raw items: %w", err)
	}

	requeued := 0
	for i := range items {
		if _, err := s.submit(ctx, &items[i], nil); err != nil {
			s.logger.ErrorContext(ctx, "failed to requeue stale raw item",
				"raw_item_id", items[i].ID,
				"error", err)
			continue
		}
		requeued++
	}

	if requeued > 0 {
		metrics.StaleItemsRequeued.Add(float64(requeued))
		s.logger.InfoContext(ctx, "requeued stale raw items", "count", requeued, "found", len(items))
	}
	return requeued, nil
}

func (s *feedbackIngestService) submit(ctx context.Context, item *model.RawFeedbackItem, traceID *string) (*Submission, error) {
	messageID, err := s.queue.Enqueue(ctx, queue.ExtractionMessage{
		RawItemID:  item.ID,
		SourceType: string(item.SourceType),
		TraceID:    traceID,
		Attempt:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("enqueueing raw item: %w", err)
	}

	return &Submission{
		RawItemID:    item.ID,
		MessageID:    messageID,
		items:        s.stores.RawItems(),
		pollInterval: s.pollInterval,
	}, nil
}

func validateIngest(params IngestParams) error {
	var missing []string
	if params.SourceID == 0 {
		missing = append(missing, "source_id")
	}
	if params.SourceType == "" {
		missing = append(missing, "source_type")
	}
	if strings.TrimSpace(params.ExternalID) == "" {
		missing = append(missing, "external_id")
	}
	subject := ""
	if params.Subject != nil {
		subject = *params.Subject
	}
	if strings.TrimSpace(params.Body) == "" && strings.TrimSpace(subject) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalidInput, strings.Join(missing, ", "))
	}

	if !params.SourceType.Valid() {
		return fmt.Errorf("%w: unknown source_type %q", ErrInvalidInput, params.SourceType)
	}
	if len(params.ContextEnvelope) > 0 {
		var bag map[string]any
		if err := json.Unmarshal(params.ContextEnvelope, &bag); err != nil {
			return fmt.Errorf("%w: context_envelope must be a JSON object", ErrInvalidInput)
		}
	}
	return nil
}

func computeDedupeKey(params IngestParams) string {
	if params.DedupeKey != nil && strings.TrimSpace(*params.DedupeKey) != "" {
		return strings.TrimSpace(*params.DedupeKey)
	}
	return fmt.Sprintf("%s:%d:%s", params.SourceType, params.SourceID, strings.TrimSpace(params.ExternalID))
}
