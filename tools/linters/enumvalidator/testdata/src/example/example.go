package example

type ProcessingState string

const (
	ProcessingStateCompleted ProcessingState = "completed"
	ProcessingStateFailed    ProcessingState = "failed"
)

type SuggestionStatus string

const (
	SuggestionStatusDismissed SuggestionStatus = "dismissed"
)

type RawFeedbackItem struct {
	ProcessingState ProcessingState
}

type FeedbackSuggestion struct {
	Status SuggestionStatus
}

func bad() {
	i := &RawFeedbackItem{}
	i.ProcessingState = "extracting" // want "enum field ProcessingState assigned string literal"

	s := &FeedbackSuggestion{}
	s.Status = "archived" // want "enum field Status assigned string literal"

	_ = FeedbackSuggestion{Status: "pending"} // want "enum field Status assigned string literal"
}

func good() {
	i := &RawFeedbackItem{}
	i.ProcessingState = ProcessingStateCompleted // OK: using constant

	s := &FeedbackSuggestion{Status: SuggestionStatusDismissed}
	_ = s
}

func alsoGood() {
	// OK: Variable, not literal
	state := ProcessingStateFailed
	i := &RawFeedbackItem{ProcessingState: state}
	_ = i
}
