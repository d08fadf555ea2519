package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/QuackbackIO/quackback-sub007/common/metrics"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

const (
	CapabilityEmbedder   = "embedder"
	CapabilityClassifier = "classifier"
	CapabilitySummarizer = "summarizer"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Classification struct {
	Actionable bool
	Rationale  string
}

// ActionabilityClassifier judges whether text is actionable product feedback
// rather than greetings, auto-replies or support chatter.
type ActionabilityClassifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

type ExtractedSignal struct {
	Type    model.SignalType
	Summary string
	Title   string
}

// SignalSummarizer distills feedback into one or more typed signals.
type SignalSummarizer interface {
	Summarize(ctx context.Context, content string) ([]ExtractedSignal, error)
}

// RetryClassifier decides whether a capability error is transient.
type RetryClassifier func(ctx context.Context, err error) bool

// CapabilityError is a failed call to an external model.
type CapabilityError struct {
	Err        error
	Capability string
	Retryable  bool
	TimedOut   bool
}

func (e *CapabilityError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s timed out: %v", e.Capability, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// callCapability bounds fn by timeout and converts its failure into a CapabilityError.
// A deadline hit by the per-call timeout is transient; cancellation of the
// parent context is returned unchanged.
func callCapability[T any](ctx context.Context, name string, timeout time.Duration, retryable RetryClassifier, fn func(context.Context) (T, error)) (T, error) {
	callCtx := ctx
	cancel := func() {}
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	start := time.Now()
	out, err := fn(callCtx)
	if err == nil {
		metrics.ObserveCapability(name, start, nil, false)
		return out, nil
	}

	var zero T
	if ctx.Err() != nil {
		metrics.ObserveCapability(name, start, err, false)
		return zero, ctx.Err()
	}

	timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)
	metrics.ObserveCapability(name, start, err, timedOut)

	capErr := &CapabilityError{Err: err, Capability: name, TimedOut: timedOut}
	switch {
	case timedOut:
		capErr.Retryable = true
	case retryable != nil:
		capErr.Retryable = retryable(ctx, err)
	default:
		capErr.Retryable = true
	}
	return zero, capErr
}
