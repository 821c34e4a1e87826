package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/dmr"
)

func TestCollector_CallEvents(t *testing.T) {
	c := NewCollector()

	events := []call.Event{
		{Type: call.EventCallStart, Slot: 1, Origin: call.OriginRF, CallType: call.TypeVoice},
		{Type: call.EventCallEnd, Slot: 1, Origin: call.OriginRF, Reason: call.EndTerminator,
			Duration: 3 * time.Second, RSSI: call.Summary{Samples: 4, Average: -87}},
		{Type: call.EventCallStart, Slot: 2, Origin: call.OriginNet, CallType: call.TypeVoice},
		{Type: call.EventCallEnd, Slot: 2, Origin: call.OriginNet, Reason: call.EndTimeout, Duration: time.Second},
		{Type: call.EventRejected, Slot: 2, Origin: call.OriginNet},
		{Type: call.EventHangExpired, Slot: 1},
	}
	for _, ev := range events {
		c.HandleCallEvent(ev)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"rf voice started", testutil.ToFloat64(c.callsStarted.WithLabelValues("1", call.OriginRF.String(), call.TypeVoice.String())), 1},
		{"rf terminator", testutil.ToFloat64(c.callsEnded.WithLabelValues("1", call.OriginRF.String(), call.EndTerminator.String())), 1},
		{"net timeout", testutil.ToFloat64(c.callsEnded.WithLabelValues("2", call.OriginNet.String(), call.EndTimeout.String())), 1},
		{"rejected", testutil.ToFloat64(c.callsRejected.WithLabelValues("2", call.OriginNet.String())), 1},
		{"hang expired", testutil.ToFloat64(c.hangExpired.WithLabelValues("1")), 1},
		{"rssi", testutil.ToFloat64(c.callRSSI.WithLabelValues("1")), -87},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(c.callDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestCollector_ObserveSlot(t *testing.T) {
	c := NewCollector()
	frames := func(name string) float64 {
		return testutil.ToFloat64(c.frames.WithLabelValues("1", name))
	}

	c.ObserveSlot(1, dmr.Stats{RFFrames: 10, Checksum: 2}, true)
	c.ObserveSlot(1, dmr.Stats{RFFrames: 25, Checksum: 2}, false)

	if got := frames("rf_frames"); got != 25 {
		t.Errorf("rf_frames = %v, want 25", got)
	}
	if got := frames("checksum"); got != 2 {
		t.Errorf("checksum = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.slotBusy.WithLabelValues("1")); got != 0 {
		t.Errorf("busy = %v", got)
	}

	// controller reset: counters start over from the new snapshot
	c.ObserveSlot(1, dmr.Stats{RFFrames: 4}, true)
	if got := frames("rf_frames"); got != 29 {
		t.Errorf("rf_frames after reset = %v, want 29", got)
	}
}

func TestCollector_Exposition(t *testing.T) {
	c := NewCollector()
	c.HandleCallEvent(call.Event{Type: call.EventRejected, Slot: 1, Origin: call.OriginRF})

	want := `
# HELP dvmhost_calls_rejected_total Call starts refused by lookups or arbitration.
# TYPE dvmhost_calls_rejected_total counter
dvmhost_calls_rejected_total{origin="` + call.OriginRF.String() + `",slot="1"} 1
`
	if err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(want), "dvmhost_calls_rejected_total"); err != nil {
		t.Error(err)
	}
}
