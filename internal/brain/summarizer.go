package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/QuackbackIO/quackback-sub007/common/llm"
	"github.com/QuackbackIO/quackback-sub007/internal/model"
	"github.com/QuackbackIO/quackback-sub007/internal/pipeline"
)

type SignalsResponse struct {
	Signals []SignalItem `json:"signals" jsonschema_description:"Distinct pieces of product feedback found in the message, at most 5"`
}

type SignalItem struct {
	Type    string `json:"type" jsonschema:"enum=feature_request,enum=bug_report,enum=question,enum=praise,enum=other" jsonschema_description:"Kind of feedback"`
	Summary string `json:"summary" jsonschema_description:"One or two sentences restating the feedback in neutral product language"`
	Title   string `json:"title" jsonschema_description:"Short title suitable for a feedback board post, under 80 characters"`
}

var signalsSchema = llm.GenerateSchema[SignalsResponse]()

// Summarizer distills a message into typed signals with an LLM.
type Summarizer struct {
	llm llm.Client
}

func NewSummarizer(client llm.Client) *Summarizer {
	return &Summarizer{llm: client}
}

// Summarize may return no signals; the extractor then falls back to the raw content.
func (s *Summarizer) Summarize(ctx context.Context, content string) ([]pipeline.ExtractedSignal, error) {
	var response SignalsResponse
	start := time.Now()

	resp, err := s.llm.Chat(ctx, llm.Request{
		SystemPrompt: summarizerSystemPrompt,
		UserPrompt:   buildFeedbackPrompt(content),
		SchemaName:   "signals_response",
		Schema:       signalsSchema,
		Temperature:  llm.Temp(0.1),
	}, &response)
	if err != nil {
		return nil, fmt.Errorf("signal summarization: %w", err)
	}

	signals := make([]pipeline.ExtractedSignal, 0, len(response.Signals))
	for _, item := range response.Signals {
		signals = append(signals, pipeline.ExtractedSignal{
			Type:    model.SignalType(strings.TrimSpace(item.Type)),
			Summary: item.Summary,
			Title:   item.Title,
		})
	}

	attrs := []any{
		"signal_count", len(signals),
		"model", s.llm.Model(),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if resp != nil {
		attrs = append(attrs, "prompt_tokens", resp.PromptTokens, "completion_tokens", resp.CompletionTokens)
	}
	slog.DebugContext(ctx, "signals summarized", attrs...)

	return signals, nil
}

const summarizerSystemPrompt = `You turn customer messages into product feedback signals for a feedback board.

Each signal is one distinct request, problem, question or piece of praise. A message asking for
two unrelated things yields two signals. Repeating the same ask in different words is one signal.

## Types

- feature_request: something the product should do that it does not do today
- bug_report: something that is broken or behaves unexpectedly
- question: the customer cannot find out how to do something
- praise: specific positive feedback about a capability
- other: product feedback that fits none of the above

## Examples

Input: "Love the new editor! Could you add keyboard shortcuts for headings? Also the save button sometimes does nothing on Safari."
Output:
- praise: "Customer likes the new editor." (title: New editor)
- feature_request: "Add keyboard shortcuts for inserting headings in the editor." (title: Keyboard shortcuts for headings)
- bug_report: "Save button intermittently does nothing in Safari." (title: Save button unresponsive on Safari)

Input: "Is there any way to get a weekly CSV export of all reports?"
Output:
- feature_request: "Scheduled weekly CSV export of all reports." (title: Weekly CSV report export)

## Rules

- Write summaries from the product's point of view, not the customer's: no "I", no names
- Never include emails, phone numbers or other personal data
- Max 5 signals
- Return an empty list only when the message contains no product feedback at all`
