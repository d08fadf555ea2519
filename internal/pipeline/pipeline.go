package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/QuackbackIO/quackback-sub007/common/logger"
	"github.com/QuackbackIO/quackback-sub007/common/metrics"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/store"
)

// ErrNotClaimed means another worker owns the item or it is already terminal.
var ErrNotClaimed = errors.New("raw item not claimable")

const maxLastErrorLen = 2000

// StoreProvider exposes the stores the pipeline reads and writes.
// Mirrors service.StoreProvider - defined here to avoid import cycles.
type StoreProvider interface {
	RawItems() store.RawFeedbackItemStore
	Signals() store.FeedbackSignalStore
	Suggestions() store.FeedbackSuggestionStore
	Posts() store.PostStore
	Boards() store.BoardStore
}

// TxRunner runs fn in a transaction with stores bound to it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

type Result struct {
	Gate        GateDecision
	Suggestions []model.FeedbackSuggestion
	Outcome     Outcome
	RawItemID   int64
	Signals     int
}

type Config struct {
	// ClaimStaleAfter is how long an item may sit in extracting before another
	// worker may take it over.
	ClaimStaleAfter time.Duration
	Now             func() time.Time
}

// Pipeline drives one raw item from ready_for_extraction to completed or failed.
type Pipeline struct {
	stores    StoreProvider
	txRunner  TxRunner
	gate      *Gate
	extractor *Extractor
	matcher   *Matcher
	builder   *Builder
	cfg       Config
}

func New(stores StoreProvider, txRunner TxRunner, gate *Gate, extractor *Extractor, matcher *Matcher, builder *Builder, cfg Config) *Pipeline {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pipeline{
		stores:    stores,
		txRunner:  txRunner,
		gate:      gate,
		extractor: extractor,
		matcher:   matcher,
		builder:   builder,
		cfg:       cfg,
	}
}

// Process claims the item and runs it through the gate, extractor, matcher and
// builder. retry marks a redelivery, which may also claim an item left failed
// by the previous attempt.
//
// Every failure after the claim is recorded on the item as failed with its
// last error. Cancellation of ctx is the exception: the item is left in
// extracting so a later delivery can take it over once stale.
func (p *Pipeline) Process(ctx context.Context, rawItemID int64, retry bool) (res *Result, err error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RawItemID: &rawItemID,
		Component: "intake.pipeline",
	})

	sc := logger.StartSpan(ctx, "pipeline.process")
	defer sc.End()
	ctx = sc.Context()

	start := p.cfg.Now()
	item, claimed, err := p.stores.RawItems().Claim(ctx, rawItemID, start.Add(-p.cfg.ClaimStaleAfter), retry)
	if err != nil {
		sc.RecordError(err)
		return nil, fmt.Errorf("claiming raw item: %w", err)
	}
	if !claimed {
		slog.InfoContext(ctx, "raw item not claimable, skipping", "retry", retry)
		return nil, ErrNotClaimed
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		WorkspaceID: &item.WorkspaceID,
		SourceID:    &item.SourceID,
		SourceType:  logger.Ptr(string(item.SourceType)),
	})
	slog.InfoContext(ctx, "raw item claimed", "attempt", item.AttemptCount)

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in pipeline", "panic", r)
			err = fmt.Errorf("panic: %v", r)
			res = p.fail(ctx, item, err)
		}
		metrics.ExtractionDuration.Observe(p.cfg.Now().Sub(start).Seconds())
	}()

	res, err = p.run(ctx, item)
	if err != nil {
		sc.RecordError(err)
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "pipeline interrupted, leaving item for a later delivery", "error", err)
			return nil, err
		}
		return p.fail(ctx, item, err), err
	}

	sc.SetAttributes(
		attribute.String("pipeline.outcome", string(res.Outcome)),
		attribute.Int("pipeline.signals", res.Signals),
		attribute.Int("pipeline.suggestions", len(res.Suggestions)),
	)
	slog.InfoContext(ctx, "raw item processed",
		"outcome", res.Outcome,
		"signals", res.Signals,
		"suggestions", len(res.Suggestions),
		"duration_ms", p.cfg.Now().Sub(start).Milliseconds())
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, item *model.RawFeedbackItem) (*Result, error) {
	res := &Result{RawItemID: item.ID}

	decision, err := p.gate.Admit(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("quality gate: %w", err)
	}
	res.Gate = decision

	if !decision.Pass {
		ok, err := p.stores.RawItems().MarkCompleted(ctx, item.ID, item.AttemptCount)
		if err != nil {
			return nil, fmt.Errorf("completing rejected item: %w", err)
		}
		if !ok {
			return nil, errLostClaim
		}
		res.Outcome = OutcomeRejected
		return res, nil
	}

	signals, err := p.extractor.Extract(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("extracting signals: %w", err)
	}

	matches := make([]*Match, len(signals))
	for i, sig := range signals {
		match, err := p.matcher.Match(ctx, p.stores.Posts(), item.WorkspaceID, sig.Embedding)
		if err != nil {
			return nil, fmt.Errorf("matching signal %d: %w", sig.ID, err)
		}
		matches[i] = match
	}

	// Signals, suggestions and completion commit together, so a crash leaves
	// the item with none of them and a replay starts clean.
	err = p.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		res.Suggestions = res.Suggestions[:0]
		seen := map[int64]bool{}

		for i, sig := range signals {
			if _, err := stores.Signals().Create(ctx, &sig); err != nil {
				return fmt.Errorf("storing signal: %w", err)
			}

			suggestion, _, err := p.builder.Build(ctx, stores, item, sig, matches[i])
			if err != nil {
				return fmt.Errorf("building suggestion: %w", err)
			}
			if !seen[suggestion.ID] {
				seen[suggestion.ID] = true
				res.Suggestions = append(res.Suggestions, *suggestion)
			}
		}

		ok, err := X
		if err != nil {
			return fmt.Errorf("completing item: %w", err)
		}
		if !ok {
			return errLostClaim
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Outcome = OutcomeCompleted
	res.Signals = len(signals)
	return res, nil
}

var errLostClaim = errors.New("raw item claim lost to a newer attempt")

func (p *Pipeline) fail(ctx context.Context, item *model.RawFeedbackItem, cause error) *Result {
	msg := cause.Error()
	if len(msg) > maxLastErrorLen {
		msg = msg[:maxLastErrorLen]
	}

	// The failure must be recorded even if the caller is shutting down.
	writeCtx := context.WithoutCancel(ctx)
	ok, err := p.stores.RawItems().MarkFailed(writeCtx, item.ID, item.AttemptCount, msg)
	switch {
	case err != nil:
		slog.ErrorContext(ctx, "failed to record item failure", "error", err, "cause", cause)
	case !ok:
		slog.WarnContext(ctx, "item left extracting before failure was recorded", "cause", cause)
	default:
		slog.ErrorContext(ctx, "raw item failed", "error", cause, "retryable", IsRetryable(cause))
	}

	return &Result{RawItemID: item.ID, Outcome: OutcomeFailed}
}

// IsRetryable reports whether a Process error may succeed on redelivery.
// Capability errors carry their own verdict; a missing board and a lost claim
// will not fix themselves; storage errors are assumed transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var capErr *CapabilityError
	if errors.As(err, &capErr) {
		return capErr.Retryable
	}
	if errors.Is(err, ErrNoBoard) || errors.Is(err, errLostClaim) || errors.Is(err, ErrNotClaimed) {
		return false
	}
	return true
}
