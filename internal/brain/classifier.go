package brain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/QuackbackIO/quackback-sub007/common/llm"
	"github.com/QuackbackIO/quackback-sub007/internal/pipeline"
)

// maxPromptRunes bounds the feedback text sent to either model.
const maxPromptRunes = 8000

type ClassificationResponse struct {
	Actionable bool   `json:"actionable" jsonschema_description:"True when the message contains product feedback a team could act on"`
	Rationale  string `json:"rationale" jsonschema_description:"One short sentence explaining the verdict"`
}

var classificationSchema = llm.GenerateSchema[ClassificationResponse]()

// Classifier is the LLM-backed actionability check used by the quality gate.
type Classifier struct {
	llm llm.Client
}

func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{llm: client}
}

func (c *Classifier) Classify(ctx context.Context, text string) (pipeline.Classification, error) {
	var response ClassificationResponse
	start := time.Now()

	resp, err := c.llm.Chat(ctx, llm.Request{
		SystemPrompt: classifierSystemPrompt,
		UserPrompt:   buildFeedbackPrompt(text),
		SchemaName:   "actionability_response",
		Schema:       classificationSchema,
		Temperature:  llm.Temp(0),
		MaxTokens:    256,
	}, &response)
	if err != nil {
		return pipeline.Classification{}, fmt.Errorf("actionability classification: %w", err)
	}

	attrs := []any{
		"actionable", response.Actionable,
		"model", c.llm.Model(),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if resp != nil {
		attrs = append(attrs, "prompt_tokens", resp.PromptTokens, "completion_tokens", resp.CompletionTokens)
	}
	slog.DebugContext(ctx, "actionability classified", attrs...)

	return pipeline.Classification{
		Actionable: response.Actionable,
		Rationale:  strings.TrimSpace(response.Rationale),
	}, nil
}

func buildFeedbackPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("## Feedback\n")
	sb.WriteString(truncate(strings.TrimSpace(text), maxPromptRunes))
	return sb.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "\n[truncated]"
}

const classifierSystemPrompt = `You decide whether an inbound customer message is actionable product feedback.

Actionable means a product team could do something with it: a feature request, a bug report,
a usability complaint, a question that reveals a missing capability, or specific praise about
a feature.

## Not actionable

- Greetings, thanks and sign-offs: "thanks!", "have a great day"
- Auto-replies and out of office notices
- Billing, password resets and account administration with no product angle
- Spam, marketing and unrelated chatter

## Examples

Input: "Thanks so much, that fixed it!"
Output: actionable=false (gratitude, nothing to change)

Input: "It would be great if I could export my reports to CSV every week"
Output: actionable=true (feature request)

Input: "I'm out of the office until Monday with limited access to email"
Output: actionable=false (auto-reply)

Input: "The dashboard keeps timing out when I filter by last 90 days"
Output: actionable=true (bug report)

When in doubt, answer actionable=true. A later reviewer can dismiss noise; lost feedback
cannot be recovered.`
