// Package relay turns one generation request into an outgoing event stream:
// it validates the request, resolves the profile, composes the prompt and
// re-frames the generative backend's stream for the client.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/buger/jsonparser"
	"github.com/google/uuid"
	"github.com/grutapig/colddm/log"
	"github.com/grutapig/colddm/profile"
	"github.com/grutapig/colddm/prompt"
	"github.com/grutapig/colddm/sse"
)

const READ_CHUNK_SIZE = 4096
const MAX_LOGGED_FRAME = 200

const MSG_INPUT_REQUIRED = "Twitter handle and motive are required"
const MSG_MISSING_KEY = "Missing Alchemyst API key"

var ErrInvalidRequest = errors.New("handle and motive are required")
var ErrBackendNotConfigured = errors.New("generative backend credential missing")
var ErrClientGone = errors.New("client stopped reading")

type Backend interface {
	Ready() bool
	StreamChat(ctx context.Context, prompt string) (io.ReadCloser, error)
}

type ProfileFetcher interface {
	Fetch(ctx context.Context, handle string) profile.Record
}

// EventSink is the outgoing stream. Send must not return before the frame
// has been handed to the transport; Close reports whether this call closed it.
type EventSink interface {
	Send(event sse.Event) error
	Close() bool
}

type Request struct {
	Handle string `json:"handle"`
	Motive string `json:"motive"`
}

type Relay struct {
	backend  Backend
	profiles ProfileFetcher
	hooks    []func(Outcome)
	now      func() time.Time
}

type Option func(*Relay)

// WithOnFinish registers a hook called synchronously with every outcome,
// after the outgoing stream is closed.
func WithOnFinish(hook func(Outcome)) Option {
	return func(r *Relay) {
		r.hooks = append(r.hooks, hook)
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		r.now = now
	}
}

func NewRelay(backend Backend, profiles ProfileFetcher, opts ...Option) *Relay {
	r := &Relay{
		backend:  backend,
		profiles: profiles,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives one request to COMPLETE or FAILED and returns once sink is
// closed. Upstream reads are paced by sink.Send, so a slow client slows the
// upstream read instead of growing a buffer. Cancelling ctx closes the
// upstream body.
func (r *Relay) Run(ctx context.Context, request Request, sink EventSink) Outcome {
	run := &run{
		relay: r,
		ctx:   ctx,
		sink:  sink,
		state: StateInit,
		outcome: Outcome{
			RequestId: uuid.NewString(),
			Started:   r.now(),
		},
	}
	run.execute(request)
	run.outcome.Duration = r.now().Sub(run.outcome.Started)

	for _, hook := range r.hooks {
		hook(run.outcome)
	}
	return run.outcome
}

type run struct {
	relay     *Relay
	ctx       context.Context
	sink      EventSink
	state     State
	handle    string
	record    profile.Record
	finalSeen bool
	outcome   Outcome
}

func (r *run) execute(request Request) {
	r.transition(StateValidating)
	r.handle = profile.NormalizeHandle(request.Handle)
	motive := strings.TrimSpace(request.Motive)
	r.outcome.Handle = r.handle
	r.outcome.MotiveLength = utf8.RuneCountInString(motive)
	if r.handle == "" || motive == "" {
		r.fail(ErrInvalidRequest, MSG_INPUT_REQUIRED)
		return
	}
	if r.relay.backend == nil || !r.relay.backend.Ready() {
		r.fail(ErrBackendNotConfigured, MSG_MISSING_KEY)
		return
	}

	r.transition(StateFetchingProfile)
	if !r.emit(sse.ThinkingUpdate(fmt.Sprintf("🔍 Fetching profile data for @%s...", r.handle))) {
		return
	}
	r.record = r.relay.profiles.Fetch(r.ctx, r.handle)
	r.outcome.DataSource = r.record.DataSource
	r.outcome.FallbackReason = r.record.FallbackReason
	r.outcome.DisplayName = r.record.DisplayName
	if !r.emit(sse.ThinkingUpdate(sourceUpdate(r.handle, r.record))) {
		return
	}
	if !r.emit(sse.ThinkingUpdate(statsUpdate(r.record))) {
		return
	}

	r.transition(StateComposing)
	text := prompt.Compose(r.record, motive)
	if !r.emit(sse.ThinkingUpdate("🤖 Crafting ultra-personalized DM with comprehensive profile analysis...")) {
		return
	}

	r.transition(StateStreaming)
	r.stream(text)
}

func sourceUpdate(handle string, record profile.Record) string {
	if record.DataSource == profile.SourceLive {
		return fmt.Sprintf("✅ %s: %s • %s followers • %d tweets",
			record.SourceLabel, record.DisplayName, prompt.Number(record.FollowerCount), len(record.RecentActivity))
	}
	return fmt.Sprintf("⚠️ %s for @%s", record.SourceLabel, handle)
}

func statsUpdate(record profile.Record) string {
	verified := "❌ Not verified"
	if record.Verified {
		verified = "✅ Verified"
	}
	return fmt.Sprintf("📊 Account stats: %s total tweets • %s following • %s",
		prompt.Number(record.TweetCount), prompt.Number(record.FollowingCount), verified)
}

func (r *run) stream(promptText string) {
	body, err := r.relay.backend.StreamChat(r.ctx, promptText)
	if err != nil {
		if r.ctx.Err() != nil {
			r.abort(r.ctx.Err())
			return
		}
		r.fail(err, "Failed to generate DM: "+err.Error())
		return
	}
	defer body.Close()
	// unblocks a pending Read when the client goes away
	stop := context.AfterFunc(r.ctx, func() {
		body.Close()
	})
	defer stop()

	var lines sse.LineBuffer
	chunk := make([]byte, READ_CHUNK_SIZE)
	for {
		n, readErr := body.Read(chunk)
		if n > 0 {
			for _, line := range lines.Feed(chunk[:n]) {
				if r.handleLine(line) {
					return
				}
			}
		}
		if readErr == nil {
			continue
		}
		if r.ctx.Err() != nil {
			r.abort(r.ctx.Err())
			return
		}
		if errors.Is(readErr, io.EOF) {
			if tail, ok := lines.Flush(); ok && r.handleLine(tail) {
				return
			}
			r.endWithoutSentinel()
			return
		}
		r.fail(readErr, "Stream connection error: "+readErr.Error())
		return
	}
}

// handleLine processes one upstream line and reports whether the run has
// reached a terminal state.
func (r *run) handleLine(line string) bool {
	if !strings.HasPrefix(line, sse.DATA_PREFIX) {
		return false
	}
	payload := bytes.TrimSpace([]byte(line[len(sse.DATA_PREFIX):]))
	if len(payload) == 0 {
		return false
	}
	if string(payload) == sse.DONE_MARKER {
		r.outcome.SentinelSeen = true
		r.complete()
		return true
	}
	if !json.Valid(payload) {
		r.skip(payload, errors.New("invalid json"))
		return false
	}
	tag, err := jsonparser.GetString(payload, "type")
	if err != nil {
		r.skip(payload, err)
		return false
	}

	switch tag {
	case "final_response":
		content, err := contentOf(payload)
		if err != nil {
			r.skip(payload, err)
			return false
		}
		if r.finalSeen {
			log.Warnf("relay %s: dropping repeated final_response", r.outcome.RequestId)
			return false
		}
		r.finalSeen = true
		r.outcome.FinalResponse = content
		r.outcome.FinalLength = utf8.RuneCountInString(content)
		r.outcome.OverBudget = r.outcome.FinalLength > prompt.MESSAGE_BUDGET
		if r.outcome.OverBudget {
			log.Infof("relay %s: message is %d characters, over the %d budget", r.outcome.RequestId, r.outcome.FinalLength, prompt.MESSAGE_BUDGET)
		}
		r.emit(sse.FinalResponse(content))
	case "thinking_update":
		content, err := contentOf(payload)
		if err != nil {
			r.skip(payload, err)
			return false
		}
		r.emit(sse.Event{Kind: sse.KindThinkingUpdate, Text: content, Raw: json.RawMessage(payload)})
	default:
		log.Debugf("relay %s: ignoring upstream %q frame", r.outcome.RequestId, tag)
	}
	return r.state.Terminal()
}

// contentOf unescapes a string content and keeps any other JSON value
// literally. A frame without content yields "".
func contentOf(payload []byte) (string, error) {
	value, dataType, _, err := jsonparser.Get(payload, "content")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if dataType == jsonparser.String {
		return jsonparser.ParseString(value)
	}
	return string(value), nil
}

func (r *run) skip(payload []byte, err error) {
	r.outcome.SkippedFrames++
	if len(payload) > MAX_LOGGED_FRAME {
		payload = payload[:MAX_LOGGED_FRAME]
	}
	log.Warnf("relay %s: skipping malformed chunk (%v): %s", r.outcome.RequestId, err, payload)
}

func (r *run) complete() {
	if !r.finalSeen {
		log.Warnf("relay %s: upstream finished without a final_response", r.outcome.RequestId)
	}
	if !r.emit(sse.Metadata(NewMetadata(r.handle, r.record, r.relay.now()))) {
		return
	}
	if !r.emit(sse.Done()) {
		return
	}
	r.finish(StateComplete)
}

// endWithoutSentinel treats EOF as the sentinel once a message was
// forwarded. Otherwise only done is sent so the client stops waiting.
func (r *run) endWithoutSentinel() {
	log.Warnf("relay %s: upstream ended without %s", r.outcome.RequestId, sse.DONE_MARKER)
	if r.finalSeen {
		r.complete()
		return
	}
	if r.emit(sse.Done()) {
		r.finish(StateComplete)
	}
}

func (r *run) emit(event sse.Event) bool {
	if r.state.Terminal() {
		return false
	}
	if err := r.ctx.Err(); err != nil {
		r.abort(err)
		return false
	}
	if err := r.sink.Send(event); err != nil {
		r.abort(fmt.Errorf("%w: %v", ErrClientGone, err))
		return false
	}
	return true
}

// fail sends a single error event and closes the stream, unless the run
// already ended.
func (r *run) fail(err error, message string) {
	if r.state.Terminal() {
		return
	}
	log.Warnf("relay %s: %s failed: %v", r.outcome.RequestId, r.state, err)
	r.outcome.Err = err
	r.outcome.ErrorEvent = message
	if sendErr := r.sink.Send(sse.Error(message)); sendErr != nil {
		log.Warnf("relay %s: error event not delivered: %v", r.outcome.RequestId, sendErr)
	}
	r.finish(StateFailed)
}

// abort ends the run without writing; the client is gone or going.
func (r *run) abort(err error) {
	if r.state.Terminal() {
		return
	}
	log.Infof("relay %s: aborted in %s: %v", r.outcome.RequestId, r.state, err)
	r.outcome.Err = err
	r.finish(StateFailed)
}

func (r *run) finish(state State) {
	r.transition(state)
	r.outcome.State = state
	if !r.sink.Close() {
		log.Warnf("relay %s: stream was already closed", r.outcome.RequestId)
	}
}

func (r *run) transition(to State) {
	log.Debugf("relay %s: %s -> %s", r.outcome.RequestId, r.state, to)
	r.state = to
}
