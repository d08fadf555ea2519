package mapper

import (
	"context"
	"errors"
	"strings"
)

const boardTagPrefix = "board:"

// TicketingMapper reads a ticket webhook: {"ticket": {"id", "subject", "description",
// "requester": {...}, "url", "tags": [...]}}. A "board:<slug>" tag becomes the board hint.
type TicketingMapper struct{}

func NewTicketingMapper() *TicketingMapper {
	return &TicketingMapper{}
}

func (m *TicketingMapper) Map(ctx context.Context, body map[string]any, headers map[string]string) (*Feedback, error) {
	ticket := obj(body, "ticket")
	if ticket == nil {
		return nil, errors.New("ticketing payload has no ticket")
	}
	externalID := str(ticket, "id")
	if externalID == "" {
		return nil, errors.New("ticket has no id")
	}

	var (
		tags      []string
		boardHint string
	)
	raw, _ := ticket["tags"].([]any)
	for _, t := range raw {
		tag, ok := t.(string)
		if !ok || tag == "" {
			continue
		}
		tags = append(tags, tag)
		if boardHint == "" && strings.HasPrefix(tag, boardTagPrefix) {
			boardHint = strings.TrimPrefix(tag, boardTagPrefix)
		}
	}

	env := map[string]any{
		"url":       str(ticket, "url"),
		"boardHint": boardHint,
		"priority":  str(ticket, "priority"),
	}
	if len(tags) > 0 {
		env["tags"] = tags
	}

	return &Feedback{
		ExternalID:      externalID,
		Subject:         strPtr(ticket, "subject"),
		Body:            plainText(str(ticket, "description")),
		Author:          author(obj(ticket, "requester")),
		ContextEnvelope: envelope(env),
	}, nil
}
