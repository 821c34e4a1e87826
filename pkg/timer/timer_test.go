package timer

import (
	"math"
	"testing"
)

func TestTimerLifecycle(t *testing.T) {
	tm := New(180)

	if tm.State() != Stopped {
		t.Fatalf("new timer state = %v, want stopped", tm.State())
	}
	if tm.Clock(1000) {
		t.Fatal("stopped timer reported expiry")
	}

	tm.Start()
	if !tm.IsRunning() {
		t.Fatal("timer not running after Start")
	}
	if tm.Clock(100) {
		t.Fatal("expired after 100ms of 180ms")
	}
	if got := tm.Remaining(); got != 80 {
		t.Errorf("Remaining = %d, want 80", got)
	}
	if !tm.Clock(80) {
		t.Fatal("no expiry at 180ms")
	}
	if !tm.HasExpired() || tm.State() != Expired {
		t.Errorf("state = %v, want expired", tm.State())
	}

	// expiry is reported once
	if tm.Clock(100) {
		t.Error("expiry reported twice")
	}
}

func TestTimerRestart(t *testing.T) {
	tm := New(50)
	tm.Start()
	tm.Clock(40)
	tm.Start()
	if tm.Clock(40) {
		t.Fatal("restart did not reset elapsed time")
	}
	if !tm.Clock(10) {
		t.Fatal("no expiry after restart")
	}
}

func TestTimerStop(t *testing.T) {
	tm := New(50)
	tm.Start()
	tm.Clock(60)
	tm.Stop()

	if tm.HasExpired() {
		t.Error("Stop did not clear expiry")
	}
	if tm.Elapsed() != 0 {
		t.Errorf("Elapsed = %d after Stop", tm.Elapsed())
	}
}

func TestTimerZeroTimeout(t *testing.T) {
	tm := New(0)
	tm.Start()
	if tm.Clock(1 << 20) {
		t.Error("zero timeout timer expired")
	}
	if !tm.IsRunning() {
		t.Error("zero timeout timer stopped running")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Stopped, "stopped"},
		{Running, "running"},
		{Expired, "expired"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestTimerLargeTick(t *testing.T) {
	tests := []struct {
		name  string
		first uint32
		tick  uint32
	}{
		{"max tick from zero", 0, math.MaxUint32},
		{"max tick after progress", 10, math.MaxUint32},
		{"tick past timeout", 170, math.MaxUint32 - 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := New(180)
			tm.Start()
			if tt.first > 0 && tm.Clock(tt.first) {
				t.Fatalf("expired after %dms", tt.first)
			}
			if !tm.Clock(tt.tick) {
				t.Fatal("no expiry")
			}
			if tm.Elapsed() != 180 || tm.Remaining() != 0 {
				t.Errorf("elapsed = %d, remaining = %d", tm.Elapsed(), tm.Remaining())
			}
		})
	}
}

func TestTimerShortenedTimeout(t *testing.T) {
	tm := New(1000)
	tm.Start()
	tm.Clock(500)

	tm.SetTimeout(200)
	if tm.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", tm.Remaining())
	}
	if !tm.Clock(0) {
		t.Error("timer past its new timeout did not expire")
	}
}
