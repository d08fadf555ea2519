package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/QuackbackIO/quackback-sub007/common/id"
	"github.com/QuackbackIO/quackback-sub007/common/metrics"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/store"
)

const (
	maxSuggestedBodyRunes = 4000
	quotedContentHeader   = "Original feedback:"
)

// ErrNoBoard means a create suggestion has nowhere to go: no hinted, typed or default board.
var ErrNoBoard = errors.New("no board available for create suggestion")

type BuilderStores interface {
	Suggestions() store.FeedbackSuggestionStore
	Boards() store.BoardStore
}

// Builder turns a signal and its match result into a pending suggestion.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build returns the pending suggestion for (item, type), creating it unless one
// already exists. created reports whether this call inserted it.
func (b *Builder) Build(ctx context.Context, stores BuilderStores, item *model.RawFeedbackItem, signal model.FeedbackSignal, match *Match) (*model.FeedbackSuggestion, bool, error) {
	suggestionType := model.SuggestionTypeCreatePost
	if match != nil {
		suggestionType = model.SuggestionTypeMergePost
	}

	existing, err := stores.Suggestions().GetPending(ctx, item.ID, suggestionType)
	if err == nil {
		slog.DebugContext(ctx, "pending suggestion already exists",
			"suggestion_id", existing.ID,
			"suggestion_type", suggestionType)
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("checking pending suggestion: %w", err)
	}

	signalID := signal.ID
	suggestion := &model.FeedbackSuggestion{
		ID:                id.New(),
		RawFeedbackItemID: item.ID,
		FeedbackSignalID:  &signalID,
		WorkspaceID:       item.WorkspaceID,
		SuggestionType:    suggestionType,
	}

	if match != nil {
		postID, score := match.PostID, match.Score
		reasoning := fmt.Sprintf("Matches existing post %q with similarity %.2f", match.Title, match.Score)
		suggestion.TargetPostID = &postID
		suggestion.SimilarityScore = &score
		suggestion.Reasoning = &reasoning
	} else {
		board, err := b.resolveBoard(ctx, stores.Boards(), item, signal.SignalType)
		if err != nil {
			return nil, false, err
		}
		title := suggestedTitle(signal)
		body := suggestedBody(signal, item)
		reasoning := "No existing post reached the similarity threshold"
		if !signal.HasEmbedding() {
			reasoning = "Signal has no embedding, so it could not be compared with existing posts"
		}
		suggestion.SuggestedTitle = &title
		suggestion.SuggestedBody = &body
		suggestion.BoardID = &board.ID
		suggestion.Reasoning = &reasoning
	}

	created, ok, err := stores.Suggestions().Create(ctx, suggestion)
	if err != nil {
		return nil, false, fmt.Errorf("creating suggestion: %w", err)
	}
	if !ok {
		// Lost a race against another writer for the pending slot.
		existing, err := stores.Suggestions().GetPending(ctx, item.ID, suggestionType)
		if err != nil {
			return nil, false, fmt.Errorf("loading conflicting suggestion: %w", err)
		}
		return existing, false, nil
	}

	metrics.SuggestionsCreated.WithLabelValues(string(suggestionType)).Inc()
	slog.InfoContext(ctx, "suggestion created",
		"suggestion_id", created.ID,
		"suggestion_type", suggestionType,
		"signal_type", signal.SignalType)

	return created, true, nil
}

// resolveBoard prefers the envelope's board hint, then the board configured
// for the signal type, then the workspace default.
func (b *Builder) resolveBoard(ctx context.Context, boards store.BoardStore, item *model.RawFeedbackItem, signalType model.SignalType) (*model.Board, error) {
	if hint := item.Envelope().BoardHint; hint != "" {
		board, err := boards.GetBySlug(ctx, item.WorkspaceID, hint)
		switch {
		case err == nil:
			return board, nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("loading hinted board: %w", err)
		}
		slog.WarnContext(ctx, "board hint does not match any board", "board_hint", hint)
	}

	board, err := boards.GetForSignalType(ctx, item.WorkspaceID, signalType)
	switch {
	case err == nil:
		return board, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("loading board for signal type: %w", err)
	}

	board, err = boards.GetDefault(ctx, item.WorkspaceID)
	switch {
	case err == nil:
		return board, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("workspace %d: %w", item.WorkspaceID, ErrNoBoard)
	default:
		return nil, fmt.Errorf("loading default board: %w", err)
	}
}

func suggestedTitle(signal model.FeedbackSignal) string {
	if signal.Title != nil && *signal.Title != "" {
		return *signal.Title
	}
	summary := signal.Summary
	if i := strings.IndexAny(summary, ".!?\n"); i > 0 {
		summary = summary[:i]
	}
	return truncateRunes(normalizeSpace(summary), maxTitleRunes)
}

func suggestedBody(signal model.FeedbackSignal, item *model.RawFeedbackItem) string {
	content := strings.TrimSpace(item.Content())
	if content == "" || normalizeSpace(content) == signal.Summary {
		return signal.Summary
	}
	body := signal.Summary + "\n\n" + quotedContentHeader + "\n" + content
	return truncateRunes(body, maxSuggestedBodyRunes)
}
