// Package host runs the site: a single goroutine moves frames between the
// modem, the network and the slot controllers, advances their clocks and
// publishes the call events they raise.
package host

import (
	"context"
	"fmt"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/dmr"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
	"github.com/dbehnke/dvmhost-go/pkg/network"
	"github.com/dbehnke/dvmhost-go/pkg/timer"
)

// Modem is the RF side as seen by the host.
type Modem interface {
	ReadFrame(slot uint8) ([]byte, bool)
	WriteFrame(slot uint8, frame []byte) error
	// Space is how many frames the modem can accept for slot.
	Space(slot uint8) int
	SetTransmit(on bool) error
}

// StatsObserver receives a periodic snapshot of each slot.
type StatsObserver interface {
	ObserveSlot(slot uint8, st dmr.Stats, busy bool)
}

// Observers fans a snapshot out to several observers.
type Observers []StatsObserver

// ObserveSlot passes the snapshot to every observer in order.
func (o Observers) ObserveSlot(slot uint8, st dmr.Stats, busy bool) {
	for _, ob := range o {
		ob.ObserveSlot(slot, st, busy)
	}
}

// Options configure the loop.
type Options struct {
	Tick          time.Duration // loop period, default 5ms
	TXHangMs      uint32        // keep the transmitter keyed after traffic
	StatsInterval time.Duration // default 1s
	Duplex        bool
}

// Host owns the slot controllers. Nothing else may touch them while Run is
// active.
type Host struct {
	opts     Options
	slots    []*dmr.Control
	modem    Modem
	demux    *network.SlotDemux
	events   *call.Dispatcher
	observer StatsObserver
	log      *logger.Logger

	txHang  *timer.Timer
	txOn    bool
	sinceSt time.Duration
	buf     []byte
}

// New builds a host. modem, demux and observer may be nil.
func New(opts Options, slots []*dmr.Control, modem Modem, demux *network.SlotDemux, events *call.Dispatcher, observer StatsObserver, log *logger.Logger) *Host {
	if opts.Tick <= 0 {
		opts.Tick = 5 * time.Millisecond
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = time.Second
	}
	if events == nil {
		events = &call.Dispatcher{}
	}
	return &Host{
		opts:     opts,
		slots:    slots,
		modem:    modem,
		demux:    demux,
		events:   events,
		observer: observer,
		log:      log.WithComponent("host"),
		txHang:   timer.New(opts.TXHangMs),
		buf:      make([]byte, dmr.RSSIFrameLength),
	}
}

// Run steps the site every tick until ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.opts.Tick)
	defer ticker.Stop()

	h.log.Info("Site running",
		logger.Int("slots", len(h.slots)),
		logger.Duration("tick", h.opts.Tick),
		logger.Bool("modem", h.modem != nil),
		logger.Bool("network", h.demux != nil))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			h.Step(uint32(elapsed.Milliseconds()))
		}
	}
}

// Step runs one pass of the loop as if ms milliseconds had passed.
func (h *Host) Step(ms uint32) {
	if h.demux != nil {
		h.demux.Pump()
	}

	busy := false
	for _, c := range h.slots {
		slot := c.Slot()

		if h.modem != nil {
			for {
				frame, ok := h.modem.ReadFrame(slot)
				if !ok {
					break
				}
				c.ProcessFrame(frame)
			}
		}
		if h.demux != nil {
			for h.demux.Waiting(slot) > 0 {
				c.ProcessNetwork()
			}
		}

		events := c.DrainEvents()
		events = append(events, c.Clock(ms)...)
		h.events.Dispatch(events...)

		h.transmit(c)
		busy = busy || c.IsBusy()
	}

	h.keyTransmitter(busy, ms)

	h.sinceSt += time.Duration(ms) * time.Millisecond
	if h.observer != nil && h.sinceSt >= h.opts.StatsInterval {
		h.sinceSt = 0
		for _, c := range h.slots {
			h.observer.ObserveSlot(c.Slot(), c.Stats(), c.IsBusy())
		}
	}
}

// transmit moves queued frames to the modem while it has room. Without a
// modem the queue is discarded.
func (h *Host) transmit(c *dmr.Control) {
	slot := c.Slot()
	if h.modem == nil {
		for c.GetFrame(h.buf) > 0 {
		}
		return
	}

	for h.modem.Space(slot) > 0 {
		n := c.GetFrame(h.buf)
		if n == 0 {
			return
		}
		if err := h.modem.WriteFrame(slot, h.buf[:n]); err != nil {
			h.log.Error("Modem write failed", logger.Int("slot", int(slot)), logger.Error(err))
			return
		}
	}
}

// keyTransmitter keeps a duplex transmitter on while any slot is busy and
// for the hang time after.
func (h *Host) keyTransmitter(busy bool, ms uint32) {
	if h.modem == nil || !h.opts.Duplex {
		return
	}

	switch {
	case busy:
		h.txHang.Start()
		h.setTransmit(true)
	case h.txOn && (h.txHang.Clock(ms) || h.txHang.Timeout() == 0):
		h.setTransmit(false)
	}
}

func (h *Host) setTransmit(on bool) {
	if h.txOn == on {
		return
	}
	if err := h.modem.SetTransmit(on); err != nil {
		h.log.Error("Failed to key transmitter", logger.Bool("on", on), logger.Error(err))
		return
	}
	h.txOn = on
	h.log.Debug("Transmitter keyed", logger.Bool("on", on))
}

func (h *Host) shutdown() {
	for _, c := range h.slots {
		if c.IsBusy() {
			h.log.Info("Resetting busy slot on shutdown", logger.Int("slot", int(c.Slot())))
		}
		c.Reset()
	}
	if h.txOn {
		h.setTransmit(false)
	}
}

// Slot returns the controller for slot, or an error if it is not running.
func (h *Host) Slot(slot uint8) (*dmr.Control, error) {
	for _, c := range h.slots {
		if c.Slot() == slot {
			return c, nil
		}
	}
	return nil, fmt.Errorf("slot %d is not enabled", slot)
}
