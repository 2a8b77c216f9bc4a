package relay

import (
	"fmt"
	"time"

	"github.com/grutapig/colddm/profile"
)

type State int

const (
	StateInit State = iota
	StateValidating
	StateFetchingProfile
	StateComposing
	StateStreaming
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateValidating:
		return "VALIDATING"
	case StateFetchingProfile:
		return "FETCHING_PROFILE"
	case StateComposing:
		return "COMPOSING"
	case StateStreaming:
		return "STREAMING"
	case StateComplete:
		return "COMPLETE"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// Outcome summarizes one finished run for hooks registered with WithOnFinish.
type Outcome struct {
	RequestId      string
	Handle         string
	MotiveLength   int
	State          State
	DataSource     profile.DataSource
	FallbackReason string
	DisplayName    string
	// Err is the reason a run failed; nil on COMPLETE.
	Err error
	// ErrorEvent is the text of the error event sent downstream, if any.
	ErrorEvent    string
	FinalResponse string
	FinalLength   int
	// OverBudget reports whether the forwarded message exceeded the advisory
	// character budget. The message is forwarded either way.
	OverBudget bool
	// SentinelSeen is false when upstream ended without its [DONE] frame.
	SentinelSeen bool
	SkippedFrames int
	Started      time.Time
	Duration     time.Duration
}
