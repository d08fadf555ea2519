package mapper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

var ErrUnsupportedSource = errors.New("no mapper for source type")

// Feedback is a source payload normalized into the fields ingestion needs.
type Feedback struct {
	ExternalID      string
	Subject         *string
	Body            string
	Author          model.Author
	ContextEnvelope json.RawMessage
}

// FeedbackMapper normalizes one source's inbound payload.
type FeedbackMapper interface {
	Map(ctx context.Context, body map[string]any, headers map[string]string) (*Feedback, error)
}

// For returns the mapper registered for a source type.
func For(sourceType model.SourceType) (FeedbackMapper, error) {
	switch sourceType {
	case model.SourceTypeHelpdeskChat:
		return NewHelpdeskChatMapper(), nil
	case model.SourceTypeEmail:
		return NewEmailMapper(), nil
	case model.SourceTypeAPI:
		return NewAPIMapper(), nil
	case model.SourceTypeTicketing:
		return NewTicketingMapper(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, sourceType)
}

func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

func strPtr(m map[string]any, key string) *string {
	if s := str(m, key); s != "" {
		return &s
	}
	return nil
}

func obj(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func list(m map[string]any, key string) []map[string]any {
	raw, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if o, ok := item.(map[string]any); ok {
			out = append(out, o)
		}
	}
	return out
}

func author(m map[string]any) model.Author {
	if m == nil {
		return model.Author{}
	}
	return model.Author{Name: strPtr(m, "name"), Email: strPtr(m, "email")}
}

// envelope marshals the non-empty entries of bag.
func envelope(bag map[string]any) json.RawMessage {
	for k, v := range bag {
		if v == nil || v == "" {
			delete(bag, k)
		}
	}
	if len(bag) == 0 {
		return nil
	}
	raw, err := json.Marshal(bag)
	if err != nil {
		return nil
	}
	return raw
}

var (
	tagPattern   = regexp.MustCompile(`(?s)<[^>]*>`)
	blockPattern = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li)\s*/?>`)
	spacePattern = regexp.MustCompile(`[ \t]+`)
	linesPattern = regexp.MustCompile(`\n{3,}`)
)

var htmlEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// plainText strips markup from helpdesk and email bodies.
func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	s = blockPattern.ReplaceAllString(s, "\n")
	s = tagPattern.ReplaceAllString(s, "")
	s = htmlEntities.Replace(s)
	s = spacePattern.ReplaceAllString(s, " ")
	s = linesPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
