package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/QuackbackIO/quackback-sub007/common/id"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

const (
	maxSignalsPerItem = 5
	maxSummaryRunes   = 500
	maxTitleRunes     = 120
)

type ExtractorConfig struct {
	CallTimeout time.Duration
	IsRetryable RetryClassifier
}

// Extractor turns a gate-passed item into unsaved signals. It always yields at
// least one signal; embedding failures leave the signal without an embedding.
type Extractor struct {
	summarizer SignalSummarizer
	embedder   Embedder
	cfg        ExtractorConfig
}

// NewExtractor accepts a nil embedder, in which case no signal is embedded.
func NewExtractor(summarizer SignalSummarizer, embedder Embedder, cfg ExtractorConfig) *Extractor {
	return &Extractor{summarizer: summarizer, embedder: embedder, cfg: cfg}
}

func (e *Extractor) Extract(ctx context.Context, item *model.RawFeedbackItem) ([]model.FeedbackSignal, error) {
	content := item.Content()

	extracted, err := callCapability(ctx, CapabilitySummarizer, e.cfg.CallTimeout, e.cfg.IsRetryable,
		func(ctx context.Context) ([]ExtractedSignal, error) {
			return e.summarizer.Summarize(ctx, content)
		})
	if err != nil {
		return nil, err
	}

	extracted = cleanSignals(extracted)
	if len(extracted) == 0 {
		slog.InfoContext(ctx, "summarizer returned no signals, falling back to content")
		extracted = []ExtractedSignal{fallbackSignal(item)}
	}

	signals := make([]model.FeedbackSignal, 0, len(extracted))
	for _, ex := range extracted {
		sig := model.FeedbackSignal{
			ID:                id.New(),
			RawFeedbackItemID: item.ID,
			SignalType:        ex.Type,
			Summary:           ex.Summary,
			Embedding:         e.embed(ctx, ex.Summary),
		}
		if ex.Title != "" {
			title := ex.Title
			sig.Title = &title
		}
		signals = append(signals, sig)
	}

	return signals, nil
}

// embed never fails the extraction; the builder falls back to create_post
// for a signal without an embedding.
func (e *Extractor) embed(ctx context.Context, text string) []float32 {
	if e.embedder == nil {
		return nil
	}

	vec, err := callCapability(ctx, CapabilityEmbedder, e.cfg.CallTimeout, e.cfg.IsRetryable,
		func(ctx context.Context) ([]float32, error) {
			return e.embedder.Embed(ctx, text)
		})
	if err != nil {
		slog.WarnContext(ctx, "embedding failed, signal will not be matched", "error", err)
		return nil
	}
	return vec
}

func cleanSignals(in []ExtractedSignal) []ExtractedSignal {
	out := make([]ExtractedSignal, 0, len(in))
	for _, s := range in {
		s.Summary = truncateRunes(normalizeSpace(s.Summary), maxSummaryRunes)
		s.Title = truncateRunes(normalizeSpace(s.Title), maxTitleRunes)
		if s.Summary == "" {
			continue
		}
		if !s.Type.Valid() {
			s.Type = model.SignalTypeOther
		}
		out = append(out, s)
		if len(out) == maxSignalsPerItem {
			break
		}
	}
	return out
}

func fallbackSignal(item *model.RawFeedbackItem) ExtractedSignal {
	sig := ExtractedSignal{
		Type:    model.SignalTypeFeatureRequest,
		Summary: truncateRunes(normalizeSpace(item.Content()), maxSummaryRunes),
	}
	if item.Subject != nil {
		sig.Title = truncateRunes(normalizeSpace(*item.Subject), maxTitleRunes)
	}
	return sig
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
