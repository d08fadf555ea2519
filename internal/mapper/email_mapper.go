package mapper

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/QuackbackIO/quackback-sub007/internal/model"
)

// EmailMapper reads an inbound-mail webhook with the message's headers flattened
// into the payload: message_id, from, subject, text and html.
type EmailMapper struct{}

func NewEmailMapper() *EmailMapper {
	return &EmailMapper{}
}

func (m *EmailMapper) Map(ctx context.Context, body map[string]any, headers map[string]string) (*Feedback, error) {
	externalID := str(body, "message_id")
	if externalID == "" {
		externalID = strings.TrimSpace(headers["Message-Id"])
	}
	externalID = strings.Trim(externalID, "<>")
	if externalID == "" {
		return nil, errors.New("email has no message id")
	}

	text := str(body, "text")
	if text == "" {
		text = plainText(str(body, "html"))
	}

	return &Feedback{
		ExternalID: externalID,
		Subject:    strPtr(body, "subject"),
		Body:       stripQuotedReply(text),
		Author:     parseFrom(str(body, "from")),
		ContextEnvelope: envelope(map[string]any{
			"to":        str(body, "to"),
			"inReplyTo": str(body, "in_reply_to"),
		}),
	}, nil
}

func parseFrom(from string) model.Author {
	if from == "" {
		return model.Author{}
	}
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return model.Author{Email: &from}
	}
	a := model.Author{Email: &addr.Address}
	if addr.Name != "" {
		a.Name = &addr.Name
	}
	return a
}

// stripQuotedReply drops the quoted thread below the first "On ... wrote:" line or "> " block.
func stripQuotedReply(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") ||
			(strings.HasPrefix(trimmed, "On ") && strings.HasSuffix(trimmed, "wrote:")) {
			return strings.TrimSpace(strings.Join(lines[:i], "\n"))
		}
	}
	return strings.TrimSpace(text)
}
