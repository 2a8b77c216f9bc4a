package sse

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseLine decodes one line of a stream. ok is false for lines that carry no
// data frame (blank separators, comments, other SSE fields); those are not
// errors. A data line whose payload is not a known structured event returns
// an error and should be skipped by the caller.
func ParseLine(line string) (event Event, ok bool, err error) {
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, DATA_PREFIX) {
		return Event{}, false, nil
	}
	return ParsePayload(strings.TrimPrefix(line, DATA_PREFIX))
}

// ParsePayload decodes the text after the `data: ` prefix.
func ParsePayload(payload string) (Event, bool, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Event{}, false, nil
	}
	if payload == DONE_MARKER {
		return Done(), true, nil
	}

	var envelope struct {
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return Event{}, true, fmt.Errorf("malformed frame: %w", err)
	}
	kind, err := ParseKind(envelope.Type)
	if err != nil {
		return Event{}, true, err
	}

	event := Event{Kind: kind, Raw: json.RawMessage(payload)}
	switch kind {
	case KindThinkingUpdate, KindFinalResponse, KindError:
		event.Text = contentText(envelope.Content)
	case KindMetadata:
		event.Metadata = envelope.Content
	case KindDone:
	}
	return event, true, nil
}

// contentText unquotes a JSON string and keeps any other JSON value as its
// literal text.
func contentText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s
	}
	return string(content)
}
