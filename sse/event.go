// Package sse holds the event model shared by the relay and the consumer:
// the closed set of event kinds, their `data: <payload>` framing, an
// incremental line buffer for split reads, and a flushing HTTP writer.
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
)

const DATA_PREFIX = "data: "
const DONE_MARKER = "[DONE]"

var ErrUnknownKind = errors.New("unknown event kind")

// Kind is the discriminator of an Event. The set is closed: every switch over
// Kind in this module handles all five values and rejects anything else.
type Kind int

const (
	KindThinkingUpdate Kind = iota + 1
	KindFinalResponse
	KindMetadata
	KindError
	KindDone
)

func (k Kind) String() string {
	switch k {
	case KindThinkingUpdate:
		return "thinking_update"
	case KindFinalResponse:
		return "final_response"
	case KindMetadata:
		return "metadata"
	case KindError:
		return "error"
	case KindDone:
		return "done"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a payload `type` tag to its Kind. "done" is not a payload
// tag on the wire (the literal [DONE] marker is), so it is rejected here.
func ParseKind(tag string) (Kind, error) {
	switch tag {
	case "thinking_update":
		return KindThinkingUpdate, nil
	case "final_response":
		return KindFinalResponse, nil
	case "metadata":
		return KindMetadata, nil
	case "error":
		return KindError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, tag)
	}
}

// Event is one unit of the outgoing stream.
type Event struct {
	Kind Kind
	// Text carries the content of thinking_update, final_response and error.
	Text string
	// Metadata carries the content of a metadata event.
	Metadata any
	// Raw, when set on a thinking_update, is written verbatim instead of
	// re-encoding Text. The consumer also fills it with the received payload.
	Raw json.RawMessage
}

func ThinkingUpdate(text string) Event {
	return Event{Kind: KindThinkingUpdate, Text: text}
}

func FinalResponse(text string) Event {
	return Event{Kind: KindFinalResponse, Text: text}
}

func Metadata(content any) Event {
	return Event{Kind: KindMetadata, Metadata: content}
}

func Error(text string) Event {
	return Event{Kind: KindError, Text: text}
}

func Done() Event {
	return Event{Kind: KindDone}
}

// Terminal reports whether no event may follow e.
func (e Event) Terminal() bool {
	return e.Kind == KindDone || e.Kind == KindError
}

type textPayload struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type finalPayload struct {
	Type    string   `json:"type"`
	Content string   `json:"content"`
	JSON    struct{} `json:"json"`
}

type metadataPayload struct {
	Type    string `json:"type"`
	Content any    `json:"content"`
}

// Payload returns the bytes that follow the `data: ` prefix.
func (e Event) Payload() ([]byte, error) {
	switch e.Kind {
	case KindThinkingUpdate:
		if len(e.Raw) > 0 {
			return e.Raw, nil
		}
		return json.Marshal(textPayload{Type: e.Kind.String(), Content: e.Text})
	case KindFinalResponse:
		return json.Marshal(finalPayload{Type: e.Kind.String(), Content: e.Text})
	case KindMetadata:
		return json.Marshal(metadataPayload{Type: e.Kind.String(), Content: e.Metadata})
	case KindError:
		return json.Marshal(textPayload{Type: e.Kind.String(), Content: e.Text})
	case KindDone:
		return []byte(DONE_MARKER), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, e.Kind)
	}
}

// Frame returns the full wire frame, blank-line terminated.
func (e Event) Frame() ([]byte, error) {
	payload, err := e.Payload()
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(DATA_PREFIX)+len(payload)+2)
	frame = append(frame, DATA_PREFIX...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	return frame, nil
}
