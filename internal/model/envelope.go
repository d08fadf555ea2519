package model

import (
	"encoding/json"
	"strings"
)

// Envelope is the typed view of a raw item's context envelope. The envelope
// itself stays an opaque JSON object; only these keys are read.
type Envelope struct {
	BoardHint string `json:"boardHint,omitempty"`
	Locale    string `json:"locale,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ParseEnvelope never fails: malformed or non-object envelopes yield the zero value,
// and values of the wrong JSON type are ignored key by key.
func ParseEnvelope(raw json.RawMessage) Envelope {
	if len(raw) == 0 {
		return Envelope{}
	}

	var bag map[string]json.RawMessage
	if err := json.Unmarshal(raw, &bag); err != nil {
		return Envelope{}
	}

	return Envelope{
		BoardHint: strings.ToLower(envelopeString(bag, "boardHint")),
		Locale:    envelopeString(bag, "locale"),
		URL:       envelopeString(bag, "url"),
	}
}

func envelopeString(bag map[string]json.RawMessage, key string) string {
	v, ok := bag[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
