package timer

// State is the lifecycle position of a Timer.
type State int

const (
	Stopped State = iota
	Running
	Expired
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Timer is a millisecond countdown advanced explicitly by Clock. It never
// reads the wall clock, so the owner decides what a tick means.
//
// A timer with a zero timeout never expires.
type Timer struct {
	timeout uint32
	elapsed uint32
	state   State
}

// New returns a stopped timer with the given timeout in milliseconds.
func New(timeoutMs uint32) *Timer {
	return &Timer{timeout: timeoutMs}
}

// SetTimeout changes the timeout. A running timer keeps its elapsed time.
func (t *Timer) SetTimeout(timeoutMs uint32) {
	t.timeout = timeoutMs
}

// Timeout returns the configured timeout in milliseconds.
func (t *Timer) Timeout() uint32 {
	return t.timeout
}

// Start (re)starts the countdown from zero.
func (t *Timer) Start() {
	t.elapsed = 0
	t.state = Running
}

// Stop halts the countdown and clears any expiry.
func (t *Timer) Stop() {
	t.elapsed = 0
	t.state = Stopped
}

// Clock advances a running timer by ms and reports whether this call moved
// it to Expired. Expiry is reported exactly once per Start.
func (t *Timer) Clock(ms uint32) bool {
	if t.state != Running || t.timeout == 0 {
		return false
	}

	// SetTimeout may have moved the timeout below the elapsed time
	if t.elapsed >= t.timeout || ms >= t.timeout-t.elapsed {
		t.elapsed = t.timeout
		t.state = Expired
		return true
	}
	t.elapsed += ms
	return false
}

// State returns the current lifecycle state.
func (t *Timer) State() State {
	return t.state
}

// IsRunning reports whether the countdown is active.
func (t *Timer) IsRunning() bool {
	return t.state == Running
}

// HasExpired reports whether the timeout elapsed since the last Start.
func (t *Timer) HasExpired() bool {
	return t.state == Expired
}

// Remaining returns the milliseconds left before expiry, or zero when the
// timer is not running.
func (t *Timer) Remaining() uint32 {
	if t.state != Running || t.elapsed >= t.timeout {
		return 0
	}
	return t.timeout - t.elapsed
}

// Elapsed returns the milliseconds counted since the last Start.
func (t *Timer) Elapsed() uint32 {
	return t.elapsed
}
