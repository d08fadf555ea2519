package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/QuackbackIO/quackback-sub007/common/metrics"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

const (
	RejectReasonBelowWordFloor = "below_word_floor"
	RejectReasonNotActionable  = "not_actionable"
)

// GateDecision is the quality gate verdict. Decisions are not persisted; a
// rejected item is recognizable by having zero signals.
type GateDecision struct {
	Reason    string
	Rationale string
	WordCount int
	Pass      bool
}

type GateConfig struct {
	MinWordCount int
	CallTimeout  time.Duration
	IsRetryable  RetryClassifier
}

// Gate filters noise before any expensive processing: first a word-count
// floor, then the actionability classifier.
type Gate struct {
	classifier ActionabilityClassifier
	cfg        GateConfig
}

func NewGate(classifier ActionabilityClassifier, cfg GateConfig) *Gate {
	return &Gate{classifier: classifier, cfg: cfg}
}

// Admit returns an error only when the classifier could not be consulted.
func (g *Gate) Admit(ctx context.Context, item *model.RawFeedbackItem) (GateDecision, error) {
	content := item.Content()
	words := WordCount(content)

	if words < g.cfg.MinWordCount {
		metrics.GateDecisions.WithLabelValues("reject_word_count").Inc()
		slog.InfoContext(ctx, "gate rejected item below word floor",
			"word_count", words,
			"min_word_count", g.cfg.MinWordCount)
		return GateDecision{Reason: RejectReasonBelowWordFloor, WordCount: words}, nil
	}

	verdict, err := callCapability(ctx, CapabilityClassifier, g.cfg.CallTimeout, g.cfg.IsRetryable,
		func(ctx context.Context) (Classification, error) {
			return g.classifier.Classify(ctx, content)
		})
	if err != nil {
		return GateDecision{}, err
	}

	if !verdict.Actionable {
		metrics.GateDecisions.WithLabelValues("reject_classifier").Inc()
		slog.InfoContext(ctx, "gate rejected non-actionable item",
			"word_count", words,
			"rationale", verdict.Rationale)
		return GateDecision{Reason: RejectReasonNotActionable, Rationale: verdict.Rationale, WordCount: words}, nil
	}

	metrics.GateDecisions.WithLabelValues("pass").Inc()
	return GateDecision{Pass: true, Rationale: verdict.Rationale, WordCount: words}, nil
}

// WordCount counts whitespace-separated tokens that contain at least one
// letter or digit, so punctuation and emoji runs do not count as words.
func WordCount(text string) int {
	n := 0
	for _, token := range strings.Fields(text) {
		if strings.IndexFunc(token, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) >= 0 {
			n++
		}
	}
	return n
}
