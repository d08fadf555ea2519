package mapper

import (
	"context"
	"errors"
)

// APIMapper reads the documented direct-submission shape:
// external_id, subject, body, author{name,email} and an optional context object.
type APIMapper struct{}

func NewAPIMapper() *APIMapper {
	return &APIMapper{}
}

func (m *APIMapper) Map(ctx context.Context, body map[string]any, headers map[string]string) (*Feedback, error) {
	externalID := str(body, "external_id")
	if externalID == "" {
		return nil, errors.New("api payload has no external_id")
	}

	var env map[string]any
	if c := obj(body, "context"); c != nil {
		env = make(map[string]any, len(c))
		for k, v := range c {
			env[k] = v
		}
	}

	return &Feedback{
		ExternalID:      externalID,
		Subject:         strPtr(body, "subject"),
		Body:            str(body, "body"),
		Author:          author(obj(body, "author")),
		ContextEnvelope: envelope(env),
	}, nil
}
