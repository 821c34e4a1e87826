package network

import (
	"fmt"

	"github.com/dbehnke/dvmhost-go/pkg/ringbuffer"
)

// SlotDemux splits one master connection into a Network per timeslot. Pump
// moves waiting bursts from the upstream queue into the slot queues; it and
// the slot views must be used from the same goroutine.
type SlotDemux struct {
	upstream Network
	slots    [2]*slotView
	dropped  uint64
}

// NewSlotDemux wraps upstream with per-slot queues of depth size.
func NewSlotDemux(upstream Network, size int) *SlotDemux {
	if size <= 0 {
		size = 128
	}
	d := &SlotDemux{upstream: upstream}
	for i := range d.slots {
		d.slots[i] = &slotView{
			parent: d,
			slot:   uint8(i + 1),
			rx:     ringbuffer.New[*Data](size, fmt.Sprintf("slot %d rx", i+1)),
		}
	}
	return d
}

// Slot returns the Network view of slot 1 or 2.
func (d *SlotDemux) Slot(slot uint8) Network {
	if slot != 1 && slot != 2 {
		panic(fmt.Sprintf("network: no slot %d", slot))
	}
	return d.slots[slot-1]
}

// Pump drains the upstream queue and returns how many bursts it sorted.
// Bursts for an unknown slot or a full slot queue are dropped.
func (d *SlotDemux) Pump() int {
	n := 0
	for {
		data, ok := d.upstream.ReadDMR()
		if !ok {
			return n
		}
		n++
		if data.Slot != 1 && data.Slot != 2 {
			d.dropped++
			continue
		}
		if !d.slots[data.Slot-1].rx.Push(data) {
			d.dropped++
		}
	}
}

// Waiting returns the number of bursts queued for slot.
func (d *SlotDemux) Waiting(slot uint8) int {
	if slot != 1 && slot != 2 {
		return 0
	}
	return d.slots[slot-1].rx.Len()
}

// Dropped returns the number of bursts Pump could not place.
func (d *SlotDemux) Dropped() uint64 {
	return d.dropped
}

type slotView struct {
	parent *SlotDemux
	slot   uint8
	rx     *ringbuffer.RingBuffer[*Data]
}

func (v *slotView) ReadDMR() (*Data, bool) {
	return v.rx.Pop()
}

// WriteDMR stamps the view's slot and sends upstream.
func (v *slotView) WriteDMR(d *Data) error {
	out := *d
	out.Slot = v.slot
	return v.parent.upstream.WriteDMR(&out)
}
