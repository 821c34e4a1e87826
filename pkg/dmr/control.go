package dmr

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
	"github.com/dbehnke/dvmhost-go/pkg/lookup"
	"github.com/dbehnke/dvmhost-go/pkg/network"
	"github.com/dbehnke/dvmhost-go/pkg/ringbuffer"
)

// maxSequenceErrors is how many protocol sequence violations in a row end
// the call that suffers them.
const maxSequenceErrors = 5

var (
	// ErrInvalidSlot is returned for a slot other than 1 or 2.
	ErrInvalidSlot = errors.New("dmr: slot must be 1 or 2")
	// ErrInvalidColorCode is returned for a color code above 15.
	ErrInvalidColorCode = errors.New("dmr: color code must be 0 to 15")
)

// Options configure one slot controller.
type Options struct {
	Slot         uint8
	ColorCode    uint8
	Duplex       bool // repeat RF traffic back over the air
	Priority     call.Priority
	RFTimeoutMs  uint32
	NetTimeoutMs uint32
	CallLimitMs  uint32 // zero disables the limit
	TGHangMs     uint32
	QueueSize    int
	PendingSize  int
	Verbose      bool
	Debug        bool
}

// Collaborators are the injected dependencies of a controller. Any of the
// lookups may be nil, in which case every id is accepted.
type Collaborators struct {
	Network    network.Network
	RadioIDs   lookup.RadioIDLookup
	Talkgroups lookup.TalkgroupLookup
	RSSI       lookup.RSSIMapper
	Logger     *logger.Logger
}

// Stats are the drop and outcome counters of a controller. Each per-frame
// failure lands in exactly one counter.
type Stats struct {
	RFFrames  uint64 // accepted from the modem
	NetFrames uint64 // accepted from the network

	Unsynced   uint64 // no sync and no call to place it in
	Malformed  uint64 // short frame or unknown data type
	ColorCode  uint64 // wrong color code
	Checksum   uint64 // FEC or CRC failure
	Sequence   uint64 // valid frame in the wrong call state
	WrongSlot  uint64 // network frame for the other slot
	Rejected   uint64 // refused by lookups or arbitration
	Duplicates uint64 // other origin already carries the destination

	Queued         uint64
	Backpressured  uint64 // parked in the pending queue
	Overflow       uint64 // lost because the pending queue was full too
	NetWriteErrors uint64
}

// Control is the protocol state machine of one DMR slot. It is not safe for
// concurrent use; a single owner feeds it frames and clock ticks.
type Control struct {
	slot      uint8
	colorCode uint8
	duplex    bool
	verbose   bool
	debug     bool

	network    network.Network
	radioIDs   lookup.RadioIDLookup
	talkgroups lookup.TalkgroupLookup
	rssi       lookup.RSSIMapper
	log        *logger.Logger

	arbiter call.Arbiter
	rf      *call.Half
	net     *call.Half
	dest    *call.DestinationContext

	// last decoded link control per origin, replaced wholesale
	rfLC  *LC
	netLC *LC

	rfEmbedded  EmbeddedData
	netEmbedded EmbeddedData
	rfData      pduState
	netData     pduState

	rfVoiceN   int
	rfSeqErrs  int
	rfStream   uint32
	rfSeq      byte
	rfLastRSSI byte
	netStream  uint32
	netSeqErrs int

	queue   *ringbuffer.RingBuffer[[]byte]
	pending *ringbuffer.RingBuffer[[]byte]
	events  []call.Event
	stats   Stats
}

// pduState follows a packet data call from its header to its last block.
type pduState struct {
	header *DataHeader
	left   int
	pdu    []byte
}

func (p *pduState) reset() {
	*p = pduState{}
}

// NewControl builds the controller for one slot.
func NewControl(opts Options, collab Collaborators) (*Control, error) {
	if opts.Slot != 1 && opts.Slot != 2 {
		return nil, ErrInvalidSlot
	}
	if opts.ColorCode > 15 {
		return nil, ErrInvalidColorCode
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 128
	}
	if opts.PendingSize <= 0 {
		opts.PendingSize = 32
	}

	log := collab.Logger
	if log == nil {
		log = logger.New(logger.Config{Level: "info"})
	}

	c := &Control{
		slot:       opts.Slot,
		colorCode:  opts.ColorCode,
		duplex:     opts.Duplex,
		verbose:    opts.Verbose,
		debug:      opts.Debug,
		network:    collab.Network,
		radioIDs:   collab.RadioIDs,
		talkgroups: collab.Talkgroups,
		rssi:       collab.RSSI,
		log:        log.WithComponent(fmt.Sprintf("dmr.slot%d", opts.Slot)),
		arbiter:    call.Arbiter{Priority: opts.Priority},
		rf:         call.NewHalf(call.OriginRF, opts.RFTimeoutMs, opts.CallLimitMs),
		net:        call.NewHalf(call.OriginNet, opts.NetTimeoutMs, opts.CallLimitMs),
		dest:       call.NewDestinationContext(opts.TGHangMs),
		queue:      ringbuffer.New[[]byte](opts.QueueSize, fmt.Sprintf("slot %d tx", opts.Slot)),
		pending:    ringbuffer.New[[]byte](opts.PendingSize, fmt.Sprintf("slot %d pending", opts.Slot)),
	}
	return c, nil
}

// Slot returns the slot number.
func (c *Control) Slot() uint8 {
	return c.slot
}

// SetDebugVerbose toggles debug and verbose logging.
func (c *Control) SetDebugVerbose(debug, verbose bool) {
	c.debug = debug
	c.verbose = verbose
}

// IsBusy reports whether either origin has a call open.
func (c *Control) IsBusy() bool {
	return !c.rf.IsIdle() || !c.net.IsIdle()
}

// RFState returns the RF call state.
func (c *Control) RFState() call.State {
	return c.rf.State()
}

// NetState returns the network call state.
func (c *Control) NetState() call.State {
	return c.net.State()
}

// RFLC returns the cached RF link control, if any.
func (c *Control) RFLC() *LC {
	return c.rfLC
}

// NetLC returns the cached network link control, if any.
func (c *Control) NetLC() *LC {
	return c.netLC
}

// Destination returns the bound destination and whether its hang period
// is running.
func (c *Control) Destination() (dstID uint32, holding bool) {
	return c.dest.DstID, c.dest.Holding()
}

// Stats returns a copy of the counters.
func (c *Control) Stats() Stats {
	return c.stats
}

// DrainEvents returns the events raised by frame processing since the last
// call and forgets them.
func (c *Control) DrainEvents() []call.Event {
	ev := c.events
	c.events = nil
	return ev
}

// GetFrame pops the oldest queued modem frame into buf and returns its
// length, or 0 when nothing is queued.
func (c *Control) GetFrame(buf []byte) int {
	frame, ok := c.queue.Pop()
	if !ok {
		return 0
	}
	return copy(buf, frame)
}

// QueueLen returns the number of frames awaiting GetFrame, pending
// included.
func (c *Control) QueueLen() int {
	return c.queue.Len() + c.pending.Len()
}

// Clock advances every timer by ms. Calls forced off by a timer and hang
// expiry are returned as events. Frames parked by backpressure are retried.
func (c *Control) Clock(ms uint32) []call.Event {
	var events []call.Event
	now := time.Now()

	// the hang is clocked first so a hang started by a timer end below
	// runs its full length
	dst, origin := c.dest.DstID, c.dest.Origin
	if c.dest.Clock(ms) {
		c.log.Debug("Talkgroup hang expired", logger.Uint32("dst", dst))
		events = append(events, call.Event{
			Type:      call.EventHangExpired,
			Origin:    origin,
			Slot:      c.slot,
			DstID:     dst,
			Timestamp: now,
		})
	}

	if reason := c.rf.Clock(ms); reason != call.EndNone {
		events = append(events, c.endRF(reason, now))
	}
	if reason := c.net.Clock(ms); reason != call.EndNone {
		events = append(events, c.endNet(reason, now))
	}

	c.retryPending()
	return events
}

// Reset returns the controller to its initial state. Queued frames,
// caches, timers and counters are discarded.
func (c *Control) Reset() {
	now := time.Now()
	if c.rf.InCall() {
		c.logEnd(c.rf.End(call.EndReset, now))
	}
	if c.net.InCall() {
		c.logEnd(c.net.End(call.EndReset, now))
	}

	c.rf.Reset()
	c.net.Reset()
	c.dest.Clear()
	c.rfLC = nil
	c.netLC = nil
	c.rfEmbedded.Reset()
	c.netEmbedded.Reset()
	c.rfData.reset()
	c.netData.reset()
	c.rfVoiceN = 0
	c.rfSeqErrs = 0
	c.rfStream = 0
	c.rfSeq = 0
	c.rfLastRSSI = 0
	c.netStream = 0
	c.netSeqErrs = 0
	c.queue.Clear()
	c.pending.Clear()
	c.events = nil
	c.stats = Stats{}
}

// enqueue hands a frame to the delivery queue. When the queue is full the
// frame waits in the pending queue and is retried on the next clock tick;
// frames behind pending ones also wait so order is kept.
func (c *Control) enqueue(frame []byte) {
	if c.pending.IsEmpty() && c.queue.Push(frame) {
		c.stats.Queued++
		return
	}
	if c.pending.Push(frame) {
		c.stats.Backpressured++
		return
	}
	c.stats.Overflow++
	c.log.Warn("Delivery queue overflow, frame lost",
		logger.Int("queued", c.queue.Len()),
		logger.Int("pending", c.pending.Len()))
}

func (c *Control) retryPending() {
	for !c.pending.IsEmpty() && !c.queue.IsFull() {
		frame, _ := c.pending.Pop()
		c.queue.Push(frame)
		c.stats.Queued++
	}
}

// flush drops everything not yet delivered.
func (c *Control) flush() {
	c.queue.Clear()
	c.pending.Clear()
}

func (c *Control) emit(ev call.Event) {
	c.events = append(c.events, ev)
}

func (c *Control) startEvent(h *call.Half) call.Event {
	ev := h.StartEvent()
	ev.Slot = c.slot
	return ev
}

func (c *Control) reject(origin call.Origin, srcID, dstID uint32, group bool, detail string) {
	c.stats.Rejected++
	c.log.Warn("Call rejected",
		logger.Stringer("origin", origin),
		logger.Uint32("src", srcID),
		logger.Uint32("dst", dstID),
		logger.String("reason", detail))
	c.emit(call.Event{
		Type:      call.EventRejected,
		Origin:    origin,
		Slot:      c.slot,
		SrcID:     srcID,
		DstID:     dstID,
		Group:     group,
		Detail:    detail,
		Timestamp: time.Now(),
	})
}

// permitted applies the radio and talkgroup lookups to a call request.
func (c *Control) permitted(srcID, dstID uint32, group bool) (bool, string) {
	if c.radioIDs != nil && !c.radioIDs.IsValid(srcID) {
		return false, "source radio not permitted"
	}
	if group {
		if c.talkgroups != nil && !c.talkgroups.IsValidOnSlot(dstID, c.slot) {
			return false, "talkgroup not permitted"
		}
	} else if c.radioIDs != nil && !c.radioIDs.IsValid(dstID) {
		return false, "destination radio not permitted"
	}
	return true, ""
}

// admit runs the lookups and arbitration for a call start from origin.
// It ends whatever the decision displaces and reports whether the new call
// may open.
func (c *Control) admit(origin call.Origin, srcID, dstID uint32, group bool) bool {
	if ok, why := c.permitted(srcID, dstID, group); !ok {
		c.reject(origin, srcID, dstID, group, why)
		return false
	}

	other := c.net
	if origin == call.OriginNet {
		other = c.rf
	}

	decision := c.arbiter.Decide(origin, dstID, other, c.dest)
	switch decision {
	case call.Accept:
		return true
	case call.Preempt:
		c.log.Info("Preempting call",
			logger.Stringer("winner", origin),
			logger.Uint32("dst", dstID),
			logger.Uint32("preempted_dst", other.DstID))
		if origin == call.OriginRF {
			c.emit(c.endNet(call.EndPreempted, time.Now()))
		} else {
			c.emit(c.endRF(call.EndPreempted, time.Now()))
		}
		c.flush()
		return true
	case call.Duplicate:
		c.stats.Duplicates++
		if c.verbose {
			c.log.Debug("Duplicate call ignored",
				logger.Stringer("origin", origin),
				logger.Uint32("dst", dstID))
		}
		return false
	case call.RejectHang:
		c.reject(origin, srcID, dstID, group, "talkgroup hang")
		return false
	default:
		c.reject(origin, srcID, dstID, group, "channel busy")
		return false
	}
}

// endRF closes the RF call. Unless the call ended on a terminator, the
// network is sent a synthesized terminator so its side closes too.
func (c *Control) endRF(reason call.EndReason, now time.Time) call.Event {
	ev := c.rf.End(reason, now)
	ev.Slot = c.slot

	if !reason.Graceful() && c.rf.Type == call.TypeVoice && c.rfLC != nil {
		if burst, err := NewLCBurst(c.rfLC, DTTerminatorWithLC, c.colorCode, SyncMSData); err == nil {
			c.writeNetwork(c.rfLC.SrcID, c.rfLC.DstID, c.rfLC.IsGroup(), network.FrameDataSync, byte(DTTerminatorWithLC), burst)
		}
	}

	c.logEnd(ev)
	c.rfEmbedded.Reset()
	c.rfData.reset()
	c.rfVoiceN = 0
	c.rfSeqErrs = 0
	c.rfLC = nil
	if c.dest.Origin == call.OriginRF {
		c.dest.Release()
	}
	c.rf.Finish()
	return ev
}

// endNet closes the network call. A call that timed out is closed over the
// air with a synthesized terminator.
func (c *Control) endNet(reason call.EndReason, now time.Time) call.Event {
	ev := c.net.End(reason, now)
	ev.Slot = c.slot

	if (reason == call.EndTimeout || reason == call.EndCallLimit) && c.net.Type == call.TypeVoice && c.netLC != nil {
		if burst, err := NewLCBurst(c.netLC, DTTerminatorWithLC, c.colorCode, SyncBSData); err == nil {
			c.enqueue(ModemFrame(TagData, ControlSyncData|byte(DTTerminatorWithLC), burst))
		}
	}

	c.logEnd(ev)
	c.netEmbedded.Reset()
	c.netData.reset()
	c.netSeqErrs = 0
	c.netStream = 0
	c.netLC = nil
	if c.dest.Origin == call.OriginNet {
		c.dest.Release()
	}
	c.net.Finish()
	return ev
}

func (c *Control) logEnd(ev call.Event) {
	fields := []logger.Field{
		logger.Stringer("origin", ev.Origin),
		logger.Uint32("src", ev.SrcID),
		logger.Uint32("dst", ev.DstID),
		logger.Stringer("reason", ev.Reason),
		logger.Duration("duration", ev.Duration),
		logger.Uint("frames", uint(ev.Frames)),
		logger.Uint("errors", uint(ev.Errors)),
	}
	if ev.RSSI.Samples > 0 {
		fields = append(fields, logger.Int("rssi_avg", ev.RSSI.Average))
	}

	if ev.Reason.Graceful() {
		c.log.Info("Call ended", fields...)
	} else {
		c.log.Warn("Call ended abnormally", fields...)
	}
}

// writeNetwork forwards an RF burst to the network under the current RF
// stream.
func (c *Control) writeNetwork(srcID, dstID uint32, group bool, ft network.FrameType, dt byte, burst []byte) {
	if c.network == nil {
		return
	}

	d := &network.Data{
		Seq:       c.rfSeq,
		SrcID:     srcID,
		DstID:     dstID,
		Slot:      c.slot,
		Group:     group,
		FrameType: ft,
		DataType:  dt,
		StreamID:  c.rfStream,
		RSSI:      c.rfLastRSSI,
	}
	copy(d.Payload[:], burst)
	c.rfSeq++

	if err := c.network.WriteDMR(d); err != nil {
		c.stats.NetWriteErrors++
		err = fmt.Errorf("slot %d: forward to network: %w", c.slot, err)
		if c.debug {
			c.log.Debug("Network write failed", logger.Error(err))
		}
	}
}

func newStreamID() uint32 {
	for {
		if id := rand.Uint32(); id != 0 {
			return id
		}
	}
}
