package call

import (
	"fmt"
	"strings"

	"github.com/dbehnke/dvmhost-go/pkg/timer"
)

// Priority names the origin that wins a collision.
type Priority int

const (
	PriorityRF Priority = iota
	PriorityNet
)

func (p Priority) String() string {
	if p == PriorityNet {
		return "net"
	}
	return "rf"
}

// ParsePriority accepts "rf" or "net".
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rf":
		return PriorityRF, nil
	case "net", "network":
		return PriorityNet, nil
	default:
		return PriorityRF, fmt.Errorf("unknown priority %q", s)
	}
}

// Decision is the outcome of a call start request.
type Decision int

const (
	// Accept opens the call.
	Accept Decision = iota
	// Duplicate means the other origin already carries this destination.
	Duplicate
	// Reject means the other origin owns the channel for another destination.
	Reject
	// RejectHang means the channel is held for another destination.
	RejectHang
	// Preempt means the requester wins and the other call must be ended.
	Preempt
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Duplicate:
		return "duplicate"
	case Reject:
		return "reject"
	case RejectHang:
		return "reject (hang)"
	case Preempt:
		return "preempt"
	default:
		return "unknown"
	}
}

// Arbiter applies the collision policy between the RF and network halves.
type Arbiter struct {
	Priority Priority
}

// Decide rules on a header from origin req for dstID, given the other
// origin's half and the destination context. A start for the destination
// the other origin already carries is a duplicate whatever the priority.
func (a Arbiter) Decide(req Origin, dstID uint32, other *Half, dest *DestinationContext) Decision {
	if other != nil && other.InCall() {
		if other.DstID == dstID {
			return Duplicate
		}
		if a.favours(req) {
			return Preempt
		}
		return Reject
	}

	if dest != nil && dest.Blocks(dstID) {
		return RejectHang
	}
	return Accept
}

func (a Arbiter) favours(o Origin) bool {
	return (a.Priority == PriorityRF && o == OriginRF) ||
		(a.Priority == PriorityNet && o == OriginNet)
}

// DestinationContext is the destination currently bound to the channel and
// the hang timer that keeps it sticky after the call ends.
type DestinationContext struct {
	DstID  uint32
	SrcID  uint32
	Origin Origin
	hang   *timer.Timer
}

// NewDestinationContext returns an empty context with the given hang time.
func NewDestinationContext(hangMs uint32) *DestinationContext {
	return &DestinationContext{hang: timer.New(hangMs)}
}

// Bind records the destination of a starting call.
func (d *DestinationContext) Bind(origin Origin, srcID, dstID uint32) {
	d.Origin = origin
	d.SrcID = srcID
	d.DstID = dstID
	d.hang.Stop()
}

// Release starts the hang period after a call ends. Without a hang time the
// context is cleared at once.
func (d *DestinationContext) Release() {
	if d.hang.Timeout() == 0 || d.DstID == 0 {
		d.Clear()
		return
	}
	d.hang.Start()
}

// Holding reports whether the hang period is running.
func (d *DestinationContext) Holding() bool {
	return d.hang.IsRunning()
}

// Blocks reports whether a call to dstID must wait out the hang period.
func (d *DestinationContext) Blocks(dstID uint32) bool {
	return d.Holding() && d.DstID != dstID
}

// Clock advances the hang timer and clears the context on expiry. It
// reports whether the hang expired during this call.
func (d *DestinationContext) Clock(ms uint32) bool {
	if d.hang.Clock(ms) {
		d.Clear()
		return true
	}
	return false
}

// Clear forgets the destination.
func (d *DestinationContext) Clear() {
	d.DstID = 0
	d.SrcID = 0
	d.hang.Stop()
}
