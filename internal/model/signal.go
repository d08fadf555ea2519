package model

import "time"

type SignalType string

const (
	SignalTypeFeatureRequest SignalType = "feature_request"
	SignalTypeBugReport      SignalType = "bug_report"
	SignalTypeQuestion       SignalType = "question"
	SignalTypePraise         SignalType = "praise"
	SignalTypeOther          SignalType = "other"
)

func (t SignalType) Valid() bool {
	switch t {
	case SignalTypeFeatureRequest, SignalTypeBugReport, SignalTypeQuestion, SignalTypePraise, SignalTypeOther:
		return true
	}
	return false
}

// FeedbackSignal is an immutable distillation of a raw item. Embedding is nil
// when embedding generation failed; such a signal never matches a post.
type FeedbackSignal struct {
	CreatedAt         time.Time  `json:"created_at"`
	Title             *string    `json:"title,omitempty"`
	SignalType        SignalType `json:"signal_type"`
	Summary           string     `json:"summary"`
	Embedding         []float32  `json:"-"`
	ID                int64      `json:"id"`
	RawFeedbackItemID int64      `json:"raw_feedback_item_id"`
}

func (s FeedbackSignal) HasEmbedding() bool {
	return len(s.Embedding) > 0
}
