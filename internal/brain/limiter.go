package brain

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/QuackbackIO/quackback-sub007/internal/pipeline"
)

// NewLimiter returns a token bucket shared by the capability wrappers of one provider.
// A non-positive rps disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if err := limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

type LimitedClassifier struct {
	inner   pipeline.ActionabilityClassifier
	limiter *rate.Limiter
}

func NewLimitedClassifier(inner pipeline.ActionabilityClassifier, limiter *rate.Limiter) *LimitedClassifier {
	return &LimitedClassifier{inner: inner, limiter: limiter}
}

func (l *LimitedClassifier) Classify(ctx context.Context, text string) (pipeline.Classification, error) {
	if err := wait(ctx, l.limiter); err != nil {
		return pipeline.Classification{}, err
	}
	return l.inner.Classify(ctx, text)
}

type LimitedSummarizer struct {
	inner   pipeline.SignalSummarizer
	limiter *rate.Limiter
}

func NewLimitedSummarizer(inner pipeline.SignalSummarizer, limiter *rate.Limiter) *LimitedSummarizer {
	return &LimitedSummarizer{inner: inner, limiter: limiter}
}

func (l *LimitedSummarizer) Summarize(ctx context.Context, content string) ([]pipeline.ExtractedSignal, error) {
	if err := wait(ctx, l.limiter); err != nil {
		return nil, err
	}
	return l.inner.Summarize(ctx, content)
}

type LimitedEmbedder struct {
	inner   pipeline.Embedder
	limiter *rate.Limiter
}

func NewLimitedEmbedder(inner pipeline.Embedder, limiter *rate.Limiter) *LimitedEmbedder {
	return &LimitedEmbedder{inner: inner, limiter: limiter}
}

func (l *LimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := wait(ctx, l.limiter); err != nil {
		return nil, err
	}
	return l.inner.Embed(ctx, text)
}
