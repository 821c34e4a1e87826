package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/dmr"
)

const namespace = "dvmhost"

// frameCounters maps each per-slot drop and outcome counter to its label.
var frameCounters = []struct {
	name  string
	value func(dmr.Stats) uint64
}{
	{"rf_frames", func(s dmr.Stats) uint64 { return s.RFFrames }},
	{"net_frames", func(s dmr.Stats) uint64 { return s.NetFrames }},
	{"unsynced", func(s dmr.Stats) uint64 { return s.Unsynced }},
	{"malformed", func(s dmr.Stats) uint64 { return s.Malformed }},
	{"color_code", func(s dmr.Stats) uint64 { return s.ColorCode }},
	{"checksum", func(s dmr.Stats) uint64 { return s.Checksum }},
	{"sequence", func(s dmr.Stats) uint64 { return s.Sequence }},
	{"wrong_slot", func(s dmr.Stats) uint64 { return s.WrongSlot }},
	{"rejected", func(s dmr.Stats) uint64 { return s.Rejected }},
	{"duplicates", func(s dmr.Stats) uint64 { return s.Duplicates }},
	{"queued", func(s dmr.Stats) uint64 { return s.Queued }},
	{"backpressured", func(s dmr.Stats) uint64 { return s.Backpressured }},
	{"overflow", func(s dmr.Stats) uint64 { return s.Overflow }},
	{"net_write_errors", func(s dmr.Stats) uint64 { return s.NetWriteErrors }},
}

// Collector turns call events and slot snapshots into Prometheus metrics.
// It has its own registry so several collectors can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	callsStarted  *prometheus.CounterVec
	callsEnded    *prometheus.CounterVec
	callsRejected *prometheus.CounterVec
	hangExpired   *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	callRSSI      *prometheus.GaugeVec
	slotBusy      *prometheus.GaugeVec
	frames        *prometheus.CounterVec

	mu   sync.Mutex
	last map[uint8]dmr.Stats
}

// NewCollector creates a collector and registers its metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		callsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calls",
			Name:      "started_total",
			Help:      "Calls opened, by slot, origin and call type.",
		}, []string{"slot", "origin", "type"}),
		callsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calls",
			Name:      "ended_total",
			Help:      "Calls closed, by slot, origin and end reason.",
		}, []string{"slot", "origin", "reason"}),
		callsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calls",
			Name:      "rejected_total",
			Help:      "Call starts refused by lookups or arbitration.",
		}, []string{"slot", "origin"}),
		hangExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "talkgroup",
			Name:      "hang_expired_total",
			Help:      "Talkgroup hang periods that ran out.",
		}, []string{"slot"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "calls",
			Name:      "duration_seconds",
			Help:      "Call length from header to end.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		}, []string{"origin"}),
		callRSSI: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rf",
			Name:      "last_call_rssi_dbm",
			Help:      "Average RSSI of the last RF call on the slot.",
		}, []string{"slot"}),
		slotBusy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "slot",
			Name:      "busy",
			Help:      "1 while the slot carries a call.",
		}, []string{"slot"}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slot",
			Name:      "frames_total",
			Help:      "Frame outcomes reported by the slot controller.",
		}, []string{"slot", "counter"}),
		last: make(map[uint8]dmr.Stats),
	}

	c.registry.MustRegister(
		c.callsStarted,
		c.callsEnded,
		c.callsRejected,
		c.hangExpired,
		c.callDuration,
		c.callRSSI,
		c.slotBusy,
		c.frames,
	)
	return c
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// HandleCallEvent records one call event.
func (c *Collector) HandleCallEvent(ev call.Event) {
	slot := slotLabel(ev.Slot)

	switch ev.Type {
	case call.EventCallStart:
		c.callsStarted.WithLabelValues(slot, ev.Origin.String(), ev.CallType.String()).Inc()
	case call.EventCallEnd:
		c.callsEnded.WithLabelValues(slot, ev.Origin.String(), ev.Reason.String()).Inc()
		c.callDuration.WithLabelValues(ev.Origin.String()).Observe(ev.Duration.Seconds())
		if ev.Origin == call.OriginRF && ev.RSSI.Samples > 0 {
			c.callRSSI.WithLabelValues(slot).Set(float64(ev.RSSI.Average))
		}
	case call.EventRejected:
		c.callsRejected.WithLabelValues(slot, ev.Origin.String()).Inc()
	case call.EventHangExpired:
		c.hangExpired.WithLabelValues(slot).Inc()
	}
}

// ObserveSlot folds a controller snapshot into the frame counters. The
// controller's counters are cumulative; only the growth since the last
// snapshot is added, and a snapshot lower than the last one (after a reset)
// starts a new baseline.
func (c *Collector) ObserveSlot(slot uint8, st dmr.Stats, busy bool) {
	label := slotLabel(slot)

	if busy {
		c.slotBusy.WithLabelValues(label).Set(1)
	} else {
		c.slotBusy.WithLabelValues(label).Set(0)
	}

	c.mu.Lock()
	prev := c.last[slot]
	c.last[slot] = st
	c.mu.Unlock()

	for _, fc := range frameCounters {
		now, before := fc.value(st), fc.value(prev)
		if now < before {
			before = 0
		}
		if now > before {
			c.frames.WithLabelValues(label, fc.name).Add(float64(now - before))
		}
	}
}

func slotLabel(slot uint8) string {
	return strconv.Itoa(int(slot))
}
