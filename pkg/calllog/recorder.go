// Package calllog keeps the call history: it tracks the call in progress on
// each slot and writes finished calls to the database.
package calllog

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/database"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

const (
	queueSize     = 128
	pruneInterval = time.Hour
)

// Store is where finished calls are written.
type Store interface {
	Create(rec *database.CallRecord) error
	DeleteOlderThan(before time.Time) (int64, error)
}

// Options tunes the recorder.
type Options struct {
	// MinDuration drops calls shorter than this, such as kerchunks.
	MinDuration time.Duration
	// Retention prunes records older than this. Zero keeps everything.
	Retention time.Duration
}

// ActiveCall is a call that has started and not yet ended.
type ActiveCall struct {
	Slot      uint8     `json:"slot"`
	Origin    string    `json:"origin"`
	CallType  string    `json:"call_type"`
	SrcID     uint32    `json:"src_id"`
	DstID     uint32    `json:"dst_id"`
	Group     bool      `json:"group"`
	StartTime time.Time `json:"start_time"`
}

// Recorder is a call.Sink. Database writes happen on Run's goroutine so the
// slot loop never waits on disk.
type Recorder struct {
	store   Store
	opts    Options
	log     *logger.Logger
	queue   chan *database.CallRecord
	dropped atomic.Uint64

	mu     sync.RWMutex
	active map[uint8]*ActiveCall
}

// New creates a recorder writing to store.
func New(store Store, opts Options, log *logger.Logger) *Recorder {
	return &Recorder{
		store:  store,
		opts:   opts,
		log:    log.WithComponent("calllog"),
		queue:  make(chan *database.CallRecord, queueSize),
		active: make(map[uint8]*ActiveCall),
	}
}

// HandleCallEvent tracks call starts and queues finished calls.
func (r *Recorder) HandleCallEvent(ev call.Event) {
	switch ev.Type {
	case call.EventCallStart:
		r.mu.Lock()
		r.active[ev.Slot] = &ActiveCall{
			Slot:      ev.Slot,
			Origin:    ev.Origin.String(),
			CallType:  ev.CallType.String(),
			SrcID:     ev.SrcID,
			DstID:     ev.DstID,
			Group:     ev.Group,
			StartTime: ev.Timestamp,
		}
		r.mu.Unlock()

	case call.EventCallEnd:
		r.mu.Lock()
		delete(r.active, ev.Slot)
		r.mu.Unlock()

		if ev.Duration < r.opts.MinDuration {
			r.log.Debug("Skipped saving very short call",
				logger.Uint32("src", ev.SrcID),
				logger.Duration("duration", ev.Duration))
			return
		}
		select {
		case r.queue <- NewRecord(ev):
		default:
			r.dropped.Add(1)
			r.log.Warn("Call log queue full, record dropped", logger.Uint32("src", ev.SrcID))
		}
	}
}

// Active returns the calls in progress, ordered by slot.
func (r *Recorder) Active() []ActiveCall {
	r.mu.RLock()
	defer r.mu.RUnlock()

	calls := make([]ActiveCall, 0, len(r.active))
	for _, c := range r.active {
		calls = append(calls, *c)
	}
	sort.Slice(calls, func(i, j int) bool { return calls[i].Slot < calls[j].Slot })
	return calls
}

// Dropped returns how many records were lost to a full queue.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Run writes queued records and prunes old ones until ctx is cancelled.
// Records still queued at shutdown are written before it returns.
func (r *Recorder) Run(ctx context.Context) error {
	prune := time.NewTicker(pruneInterval)
	defer prune.Stop()
	r.prune()

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case rec := <-r.queue:
					r.save(rec)
				default:
					return ctx.Err()
				}
			}
		case rec := <-r.queue:
			r.save(rec)
		case <-prune.C:
			r.prune()
		}
	}
}

func (r *Recorder) save(rec *database.CallRecord) {
	if err := r.store.Create(rec); err != nil {
		r.log.Error("Failed to save call",
			logger.Error(err),
			logger.Uint32("src", rec.SrcID),
			logger.Uint32("dst", rec.DstID))
		return
	}
	r.log.Debug("Saved call",
		logger.Int("slot", rec.Slot),
		logger.Uint32("src", rec.SrcID),
		logger.Uint32("dst", rec.DstID),
		logger.Float64("duration", rec.Duration))
}

func (r *Recorder) prune() {
	if r.opts.Retention <= 0 {
		return
	}
	n, err := r.store.DeleteOlderThan(time.Now().Add(-r.opts.Retention))
	if err != nil {
		r.log.Error("Failed to prune call log", logger.Error(err))
		return
	}
	if n > 0 {
		r.log.Info("Pruned call log", logger.Int64("records", n))
	}
}

// NewRecord converts a call end event into a database row.
func NewRecord(ev call.Event) *database.CallRecord {
	end := ev.Timestamp
	if end.IsZero() {
		end = time.Now()
	}
	return &database.CallRecord{
		Slot:      int(ev.Slot),
		Origin:    ev.Origin.String(),
		SrcID:     ev.SrcID,
		DstID:     ev.DstID,
		GroupCall: ev.Group,
		CallType:  ev.CallType.String(),
		EndReason: ev.Reason.String(),
		Duration:  ev.Duration.Seconds(),
		Frames:    ev.Frames,
		Errors:    ev.Errors,
		RSSIMin:   ev.RSSI.Min,
		RSSIMax:   ev.RSSI.Max,
		RSSIAvg:   ev.RSSI.Average,
		StartTime: end.Add(-ev.Duration),
		EndTime:   end,
	}
}
