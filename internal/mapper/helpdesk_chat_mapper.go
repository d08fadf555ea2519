package mapper

import (
	"context"
	"errors"
	"strings"
)

// HelpdeskChatMapper reads a chat conversation export:
//
//	{"id": "...", "title": "...", "url": "...", "locale": "...",
//	 "parts": [{"author": {"type": "customer", "name": "...", "email": "..."}, "body": "<p>...</p>"}]}
type HelpdeskChatMapper struct{}

func NewHelpdeskChatMapper() *HelpdeskChatMapper {
	return &HelpdeskChatMapper{}
}

func (m *HelpdeskChatMapper) Map(ctx context.Context, body map[string]any, headers map[string]string) (*Feedback, error) {
	externalID := str(body, "id")
	if externalID == "" {
		return nil, errors.New("helpdesk conversation has no id")
	}

	var (
		texts    []string
		customer map[string]any
	)
	for _, part := range list(body, "parts") {
		partAuthor := obj(part, "author")
		if str(partAuthor, "type") != "customer" {
			continue
		}
		if customer == nil {
			customer = partAuthor
		}
		if text := plainText(str(part, "body")); text != "" {
			texts = append(texts, text)
		}
	}

	return &Feedback{
		ExternalID: externalID,
		Subject:    strPtr(body, "title"),
		Body:       strings.Join(texts, "\n\n"),
		Author:     author(customer),
		ContextEnvelope: envelope(map[string]any{
			"url":    str(body, "url"),
			"locale": str(body, "locale"),
			"parts":  len(texts),
		}),
	}, nil
}
