package call

// Origin is the side of the site a call arrives from.
type Origin int

const (
	OriginRF Origin = iota
	OriginNet
)

func (o Origin) String() string {
	if o == OriginNet {
		return "net"
	}
	return "rf"
}

// Other returns the opposite origin.
func (o Origin) Other() Origin {
	if o == OriginNet {
		return OriginRF
	}
	return OriginNet
}

// State is the per-origin call state.
type State int

const (
	Idle State = iota
	Receiving
	Active
	Ending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Receiving:
		return "receiving"
	case Active:
		return "active"
	case Ending:
		return "ending"
	default:
		return "unknown"
	}
}

// Type distinguishes voice from packet data calls.
type Type int

const (
	TypeVoice Type = iota
	TypeData
)

func (t Type) String() string {
	if t == TypeData {
		return "data"
	}
	return "voice"
}

// EndReason records how a call left the air.
type EndReason int

const (
	EndNone EndReason = iota
	// EndTerminator is a graceful end signalled by the source.
	EndTerminator
	// EndTimeout is a forced end after the inactivity timer expired.
	EndTimeout
	// EndLost means the modem reported loss of signal.
	EndLost
	// EndPreempted means the other origin took the channel.
	EndPreempted
	// EndViolation means a header for another destination arrived mid call.
	EndViolation
	// EndCallLimit means the call ran past the configured maximum length.
	EndCallLimit
	// EndReset means the controller was reset with the call in progress.
	EndReset
)

func (r EndReason) String() string {
	switch r {
	case EndTerminator:
		return "terminator"
	case EndTimeout:
		return "timeout"
	case EndLost:
		return "lost"
	case EndPreempted:
		return "preempted"
	case EndViolation:
		return "violation"
	case EndCallLimit:
		return "call limit"
	case EndReset:
		return "reset"
	default:
		return "none"
	}
}

// Graceful reports whether the call ended on a terminator or a completed
// data transfer.
func (r EndReason) Graceful() bool {
	return r == EndTerminator
}
