package call

import (
	"math"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/timer"
)

// Half is the call state of one origin. A channel owns two halves, one for
// RF and one for the network, and an Arbiter decides between them.
type Half struct {
	Origin Origin
	Type   Type
	SrcID  uint32
	DstID  uint32
	Group  bool
	Frames uint32
	Errors uint32
	RSSI   RSSIStats

	state   State
	elapsed uint32
	started time.Time
	timeout *timer.Timer
	limit   *timer.Timer
}

// NewHalf returns an idle half. timeoutMs is the inactivity timeout; a zero
// maxCallMs disables the call length limit.
func NewHalf(origin Origin, timeoutMs, maxCallMs uint32) *Half {
	return &Half{
		Origin:  origin,
		timeout: timer.New(timeoutMs),
		limit:   timer.New(maxCallMs),
	}
}

// State returns the current call state.
func (h *Half) State() State {
	return h.state
}

// IsIdle reports whether no call is in progress.
func (h *Half) IsIdle() bool {
	return h.state == Idle
}

// InCall reports whether a call has been opened and not yet closed.
func (h *Half) InCall() bool {
	return h.state == Receiving || h.state == Active
}

// Start opens a call on a validated header.
func (h *Half) Start(srcID, dstID uint32, group bool, t Type, now time.Time) {
	h.state = Receiving
	h.Type = t
	h.SrcID = srcID
	h.DstID = dstID
	h.Group = group
	h.Frames = 1
	h.Errors = 0
	h.elapsed = 0
	h.started = now
	h.RSSI.Reset()
	h.timeout.Start()
	h.limit.Start()
}

// Activate moves a receiving call to active.
func (h *Half) Activate() {
	if h.state == Receiving {
		h.state = Active
	}
}

// Touch counts a valid frame and restarts the inactivity timer.
func (h *Half) Touch() {
	h.Frames++
	h.timeout.Start()
}

// AddError counts a frame dropped inside the call.
func (h *Half) AddError() {
	h.Errors++
}

// Clock advances the call timers and returns the reason the call must be
// forced off, or EndNone.
func (h *Half) Clock(ms uint32) EndReason {
	if !h.InCall() {
		return EndNone
	}
	if ms > math.MaxUint32-h.elapsed {
		h.elapsed = math.MaxUint32
	} else {
		h.elapsed += ms
	}

	if h.timeout.Clock(ms) {
		return EndTimeout
	}
	if h.limit.Clock(ms) {
		return EndCallLimit
	}
	return EndNone
}

// End moves the call to Ending and returns its end event. Finish completes
// the transition to Idle once the owner has flushed any end of call traffic.
func (h *Half) End(reason EndReason, now time.Time) Event {
	h.state = Ending
	h.timeout.Stop()
	h.limit.Stop()

	return Event{
		Type:      EventCallEnd,
		Origin:    h.Origin,
		CallType:  h.Type,
		SrcID:     h.SrcID,
		DstID:     h.DstID,
		Group:     h.Group,
		Reason:    reason,
		Duration:  time.Duration(h.elapsed) * time.Millisecond,
		Frames:    h.Frames,
		Errors:    h.Errors,
		RSSI:      h.RSSI.Summary(),
		Timestamp: now,
	}
}

// Finish returns the half to Idle and clears the call identity.
func (h *Half) Finish() {
	h.state = Idle
	h.SrcID = 0
	h.DstID = 0
	h.Group = false
	h.Type = TypeVoice
	h.timeout.Stop()
	h.limit.Stop()
}

// Reset discards everything, including counters.
func (h *Half) Reset() {
	h.Finish()
	h.Frames = 0
	h.Errors = 0
	h.elapsed = 0
	h.started = time.Time{}
	h.RSSI.Reset()
}

// StartEvent returns the call start event for the current call.
func (h *Half) StartEvent() Event {
	return Event{
		Type:      EventCallStart,
		Origin:    h.Origin,
		CallType:  h.Type,
		SrcID:     h.SrcID,
		DstID:     h.DstID,
		Group:     h.Group,
		Timestamp: h.started,
	}
}
