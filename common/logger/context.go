package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, so a raw item picked up by the worker carries
// its raw_item_id into every log line the pipeline writes for it.
type LogFields struct {
	RawItemID    *int64  // Raw feedback item being processed
	SuggestionID *int64  // Suggestion being resolved
	SourceID     *int64  // Feedback source that produced the item
	WorkspaceID  *int64  // Workspace (tenant) scope
	MessageID    *string // Redis stream message ID
	SourceType   *string // e.g. "helpdesk_chat", "email"
	Component    string  // OTel semantic convention style, e.g. "intake.pipeline.gate"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.RawItemID != nil {
		result.RawItemID = new.RawItemID
	}
	if new.SuggestionID != nil {
		result.SuggestionID = new.SuggestionID
	}
	if new.SourceID != nil {
		result.SourceID = new.SourceID
	}
	if new.WorkspaceID != nil {
		result.WorkspaceID = new.WorkspaceID
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.SourceType != nil {
		result.SourceType = new.SourceType
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{RawItemID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
