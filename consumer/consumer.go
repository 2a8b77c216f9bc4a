// Package consumer reads a generation event stream as it arrives and folds
// each event into a State.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/grutapig/colddm/log"
	"github.com/grutapig/colddm/sse"
)

const READ_CHUNK_SIZE = 4096

var ErrNoTerminator = errors.New("event stream ended without done or error")

// StreamError is an error event received from the server.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "generation failed: " + e.Message
}

type State struct {
	// ThinkingUpdates holds progress text in arrival order.
	ThinkingUpdates []string
	// FinalMessage is the latest final_response; a well-behaved server sends one.
	FinalMessage string
	Metadata     json.RawMessage
	Finished     bool
	// SkippedFrames counts data lines that could not be decoded.
	SkippedFrames int
}

// DecodeMetadata unmarshals the metadata event into v.
func (s State) DecodeMetadata(v any) error {
	if len(s.Metadata) == 0 {
		return errors.New("no metadata received")
	}
	return json.Unmarshal(s.Metadata, v)
}

// Observer is called after each event has been applied to the state.
type Observer func(event sse.Event, state *State)

// Consume decodes frames from r as they arrive until a done or error event.
// An error event returns a *StreamError; a stream that ends before either
// returns ErrNoTerminator. The state built so far is returned in every case.
func Consume(ctx context.Context, r io.Reader, observe Observer) (State, error) {
	state := State{}
	var lines sse.LineBuffer
	chunk := make([]byte, READ_CHUNK_SIZE)

	for {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		n, readErr := r.Read(chunk)
		if n > 0 {
			for _, line := range lines.Feed(chunk[:n]) {
				if stop, err := apply(&state, line, observe); stop {
					return state, err
				}
			}
		}
		if readErr == nil {
			continue
		}
		if errors.Is(readErr, io.EOF) {
			if tail, ok := lines.Flush(); ok {
				if stop, err := apply(&state, tail, observe); stop {
					return state, err
				}
			}
			return state, ErrNoTerminator
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}
		return state, fmt.Errorf("read event stream: %w", readErr)
	}
}

// apply folds one line into state and reports whether consumption ends.
func apply(state *State, line string, observe Observer) (bool, error) {
	event, ok, err := sse.ParseLine(line)
	if !ok {
		return false, nil
	}
	if err != nil {
		state.SkippedFrames++
		log.Warnf("consumer: skipping frame: %v", err)
		return false, nil
	}

	var result error
	stop := false
	switch event.Kind {
	case sse.KindThinkingUpdate:
		state.ThinkingUpdates = append(state.ThinkingUpdates, event.Text)
	case sse.KindFinalResponse:
		state.FinalMessage = event.Text
	case sse.KindMetadata:
		raw, _ := event.Metadata.(json.RawMessage)
		state.Metadata = raw
	case sse.KindError:
		result = &StreamError{Message: event.Text}
		stop = true
	case sse.KindDone:
		state.Finished = true
		stop = true
	default:
		state.SkippedFrames++
		log.Warnf("consumer: unexpected event kind %s", event.Kind)
		return false, nil
	}

	if observe != nil {
		observe(event, state)
	}
	return stop, result
}
