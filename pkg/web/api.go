package web

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/calllog"
	"github.com/dbehnke/dvmhost-go/pkg/database"
	"github.com/dbehnke/dvmhost-go/pkg/dmr"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

const (
	defaultCallLimit = 50
	maxCallLimit     = 500
)

// SlotStatus is the last snapshot reported for a slot.
type SlotStatus struct {
	Slot    uint8     `json:"slot"`
	Busy    bool      `json:"busy"`
	Stats   dmr.Stats `json:"stats"`
	Updated time.Time `json:"updated"`
}

// SlotBoard keeps the latest snapshot of each slot. The host reports into
// it from its own goroutine; handlers read copies.
type SlotBoard struct {
	mu    sync.RWMutex
	slots map[uint8]SlotStatus
}

// NewSlotBoard creates an empty board.
func NewSlotBoard() *SlotBoard {
	return &SlotBoard{slots: make(map[uint8]SlotStatus)}
}

// ObserveSlot records a snapshot.
func (b *SlotBoard) ObserveSlot(slot uint8, st dmr.Stats, busy bool) {
	b.mu.Lock()
	b.slots[slot] = SlotStatus{Slot: slot, Busy: busy, Stats: st, Updated: time.Now()}
	b.mu.Unlock()
}

// Snapshot returns every slot's status ordered by slot.
func (b *SlotBoard) Snapshot() []SlotStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]SlotStatus, 0, len(b.slots))
	for _, s := range b.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// CallHistory is the call log query side.
type CallHistory interface {
	GetRecent(limit int) ([]database.CallRecord, error)
	CountByReason() (map[string]int64, error)
}

// ActiveCalls lists calls in progress.
type ActiveCalls interface {
	Active() []calllog.ActiveCall
}

// API handles REST API endpoints
type API struct {
	logger  *logger.Logger
	slots   *SlotBoard
	history CallHistory
	active  ActiveCalls
	started time.Time
}

// NewAPI creates a new API instance. Any source may be nil; its endpoints
// then answer with empty results.
func NewAPI(log *logger.Logger, slots *SlotBoard, history CallHistory, active ActiveCalls) *API {
	if slots == nil {
		slots = NewSlotBoard()
	}
	return &API{
		logger:  log,
		slots:   slots,
		history: history,
		active:  active,
		started: time.Now(),
	}
}

// HandleStatus handles the /api/status endpoint
func (a *API) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	version, commit, built := GetVersionInfo()
	a.writeJSON(w, map[string]interface{}{
		"status":     "running",
		"service":    "dvmhost",
		"version":    version,
		"commit":     commit,
		"build_time": built,
		"uptime_s":   int64(time.Since(a.started).Seconds()),
		"slots":      a.slots.Snapshot(),
	})
}

// HandleSlots handles the /api/slots endpoint
func (a *API) HandleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.writeJSON(w, a.slots.Snapshot())
}

// HandleCalls handles the /api/calls endpoint: the most recent finished
// calls, newest first. ?limit= caps the count.
func (a *API) HandleCalls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultCallLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxCallLimit)
	}

	if a.history == nil {
		a.writeJSON(w, []database.CallRecord{})
		return
	}
	records, err := a.history.GetRecent(limit)
	if err != nil {
		a.logger.Error("Failed to load call history", logger.Error(err))
		http.Error(w, "call history unavailable", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, records)
}

// HandleCallStats handles the /api/calls/stats endpoint: call counts by end
// reason.
func (a *API) HandleCallStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts := map[string]int64{}
	if a.history != nil {
		var err error
		if counts, err = a.history.CountByReason(); err != nil {
			a.logger.Error("Failed to count calls", logger.Error(err))
			http.Error(w, "call history unavailable", http.StatusInternalServerError)
			return
		}
	}
	a.writeJSON(w, counts)
}

// HandleActiveCalls handles the /api/calls/active endpoint
func (a *API) HandleActiveCalls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	calls := []calllog.ActiveCall{}
	if a.active != nil {
		calls = a.active.Active()
	}
	a.writeJSON(w, calls)
}

func (a *API) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("Failed to encode response", logger.Error(err))
	}
}
