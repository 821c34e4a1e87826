package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/calllog"
	"github.com/dbehnke/dvmhost-go/pkg/database"
	"github.com/dbehnke/dvmhost-go/pkg/dmr"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

type fakeHistory struct {
	records []database.CallRecord
	limit   int
	err     error
}

func (h *fakeHistory) GetRecent(limit int) ([]database.CallRecord, error) {
	h.limit = limit
	if h.err != nil {
		return nil, h.err
	}
	return h.records[:min(limit, len(h.records))], nil
}

func (h *fakeHistory) CountByReason() (map[string]int64, error) {
	if h.err != nil {
		return nil, h.err
	}
	counts := map[string]int64{}
	for _, r := range h.records {
		counts[r.EndReason]++
	}
	return counts, nil
}

type fakeActive []calllog.ActiveCall

func (a fakeActive) Active() []calllog.ActiveCall { return a }

func testAPI(history CallHistory, active ActiveCalls) (*API, *SlotBoard) {
	board := NewSlotBoard()
	return NewAPI(logger.New(logger.Config{Level: "error"}), board, history, active), board
}

func get(t *testing.T, h http.HandlerFunc, target string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h(w, req)

	resp := w.Result()
	defer func() { _ = resp.Body.Close() }()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestAPI_Status(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2025-03-01")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "unknown") })

	api, board := testAPI(nil, nil)
	board.ObserveSlot(2, dmr.Stats{NetFrames: 5}, false)
	board.ObserveSlot(1, dmr.Stats{RFFrames: 3}, true)

	var result struct {
		Status  string       `json:"status"`
		Service string       `json:"service"`
		Version string       `json:"version"`
		Commit  string       `json:"commit"`
		Slots   []SlotStatus `json:"slots"`
	}
	if code := get(t, api.HandleStatus, "/api/status", &result); code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", code)
	}
	if result.Status != "running" || result.Service != "dvmhost" || result.Version != "1.2.3" || result.Commit != "abc123" {
		t.Errorf("result = %+v", result)
	}
	if len(result.Slots) != 2 || result.Slots[0].Slot != 1 || result.Slots[1].Stats.NetFrames != 5 {
		t.Errorf("slots = %+v", result.Slots)
	}
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	api, _ := testAPI(nil, nil)
	handlers := map[string]http.HandlerFunc{
		"status": api.HandleStatus,
		"slots":  api.HandleSlots,
		"calls":  api.HandleCalls,
		"active": api.HandleActiveCalls,
		"stats":  api.HandleCallStats,
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			w := httptest.NewRecorder()
			h(w, req)
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405, got %d", w.Code)
			}
		})
	}
}

func TestAPI_Calls(t *testing.T) {
	now := time.Now()
	history := &fakeHistory{}
	for i := range 3 {
		history.records = append(history.records, database.CallRecord{
			ID: uint(i + 1), SrcID: 3120001, DstID: 91, EndReason: "terminator", StartTime: now,
		})
	}
	api, _ := testAPI(history, nil)

	tests := []struct {
		target    string
		code      int
		limit     int
		wantCalls int
	}{
		{"/api/calls", http.StatusOK, defaultCallLimit, 3},
		{"/api/calls?limit=2", http.StatusOK, 2, 2},
		{"/api/calls?limit=100000", http.StatusOK, maxCallLimit, 3},
		{"/api/calls?limit=0", http.StatusBadRequest, 0, 0},
		{"/api/calls?limit=x", http.StatusBadRequest, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			history.limit = 0
			var calls []database.CallRecord
			if code := get(t, api.HandleCalls, tt.target, &calls); code != tt.code {
				t.Fatalf("code = %d, want %d", code, tt.code)
			}
			if history.limit != tt.limit || len(calls) != tt.wantCalls {
				t.Errorf("limit = %d, calls = %d", history.limit, len(calls))
			}
		})
	}
}

func TestAPI_CallsHistoryError(t *testing.T) {
	api, _ := testAPI(&fakeHistory{err: errors.New("locked")}, nil)
	if code := get(t, api.HandleCalls, "/api/calls", nil); code != http.StatusInternalServerError {
		t.Errorf("calls code = %d", code)
	}
	if code := get(t, api.HandleCallStats, "/api/calls/stats", nil); code != http.StatusInternalServerError {
		t.Errorf("stats code = %d", code)
	}
}

func TestAPI_WithoutSources(t *testing.T) {
	api, _ := testAPI(nil, nil)

	var calls []database.CallRecord
	if code := get(t, api.HandleCalls, "/api/calls", &calls); code != http.StatusOK || len(calls) != 0 {
		t.Errorf("calls: code=%d len=%d", code, len(calls))
	}
	var active []calllog.ActiveCall
	if code := get(t, api.HandleActiveCalls, "/api/calls/active", &active); code != http.StatusOK || len(active) != 0 {
		t.Errorf("active: code=%d len=%d", code, len(active))
	}
}

func TestAPI_ActiveAndStats(t *testing.T) {
	history := &fakeHistory{records: []database.CallRecord{
		{EndReason: "terminator"}, {EndReason: "terminator"}, {EndReason: "timeout"},
	}}
	api, _ := testAPI(history, fakeActive{{Slot: 1, SrcID: 7, DstID: 9}})

	var active []calllog.ActiveCall
	get(t, api.HandleActiveCalls, "/api/calls/active", &active)
	if len(active) != 1 || active[0].SrcID != 7 {
		t.Errorf("active = %+v", active)
	}

	var counts map[string]int64
	get(t, api.HandleCallStats, "/api/calls/stats", &counts)
	if counts["terminator"] != 2 || counts["timeout"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
