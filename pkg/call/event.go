package call

import "time"

// EventType classifies call events.
type EventType int

const (
	EventCallStart EventType = iota
	EventCallEnd
	EventRejected
	EventHangExpired
)

func (t EventType) String() string {
	switch t {
	case EventCallStart:
		return "call_start"
	case EventCallEnd:
		return "call_end"
	case EventRejected:
		return "rejected"
	case EventHangExpired:
		return "hang_expired"
	default:
		return "unknown"
	}
}

// Event is raised by a channel controller when a call starts, ends or is
// refused. Telemetry and persistence consume these.
type Event struct {
	Type      EventType     `json:"type"`
	Origin    Origin        `json:"origin"`
	Slot      uint8         `json:"slot"`
	CallType  Type          `json:"call_type"`
	SrcID     uint32        `json:"src_id"`
	DstID     uint32        `json:"dst_id"`
	Group     bool          `json:"group"`
	Reason    EndReason     `json:"reason,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	Duration  time.Duration `json:"duration"`
	Frames    uint32        `json:"frames"`
	Errors    uint32        `json:"errors"`
	RSSI      Summary       `json:"rssi"`
	Timestamp time.Time     `json:"timestamp"`
}

// Sink receives call events.
type Sink interface {
	HandleCallEvent(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// HandleCallEvent calls f(ev).
func (f SinkFunc) HandleCallEvent(ev Event) {
	f(ev)
}

// Dispatcher fans events out to every registered sink in order.
type Dispatcher struct {
	sinks []Sink
}

// Add registers a sink. Nil sinks are ignored.
func (d *Dispatcher) Add(s Sink) {
	if s != nil {
		d.sinks = append(d.sinks, s)
	}
}

// Dispatch delivers each event to every sink.
func (d *Dispatcher) Dispatch(events ...Event) {
	for _, ev := range events {
		for _, s := range d.sinks {
			s.HandleCallEvent(ev)
		}
	}
}

// Len returns the number of registered sinks.
func (d *Dispatcher) Len() int {
	return len(d.sinks)
}
