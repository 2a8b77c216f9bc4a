package sse

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrStreamClosed = errors.New("event stream already closed")

// Writer frames events onto an HTTP response and flushes after each one, so a
// slow client blocks Send rather than letting output pile up in memory.
type Writer struct {
	w          http.ResponseWriter
	controller *http.ResponseController
	closed     bool
}

// NewWriter writes the event-stream headers and the 200 status line.
func NewWriter(w http.ResponseWriter) *Writer {
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	writer := &Writer{w: w, controller: http.NewResponseController(w)}
	// headers reach the client before any business logic runs
	_ = writer.controller.Flush()
	return writer
}

func (s *Writer) Send(event Event) error {
	if s.closed {
		return ErrStreamClosed
	}
	frame, err := event.Frame()
	if err != nil {
		return err
	}
	if _, err := s.w.Write(frame); err != nil {
		return fmt.Errorf("write %s frame: %w", event.Kind, err)
	}
	if err := s.controller.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("flush %s frame: %w", event.Kind, err)
	}
	return nil
}

// Close marks the stream finished. It reports whether this call closed it;
// later calls are no-ops returning false.
func (s *Writer) Close() bool {
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

func (s *Writer) Closed() bool {
	return s.closed
}
