package calllog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/database"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func openRepo(t *testing.T) *database.CallRecordRepository {
	t.Helper()
	db, err := database.NewDB(database.Config{Path: filepath.Join(t.TempDir(), "calls.db")}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close db: %v", err)
		}
	})
	return db.CallRecords()
}

// runUntilDrained runs the recorder until its queue is empty, then stops it.
func runUntilDrained(t *testing.T, r *Recorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v", err)
	}
}

func TestRecorder_SavesFinishedCalls(t *testing.T) {
	repo := openRepo(t)
	r := New(repo, Options{MinDuration: 500 * time.Millisecond}, testLogger())
	end := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	r.HandleCallEvent(call.Event{Type: call.EventCallStart, Slot: 1, Origin: call.OriginRF, SrcID: 3120001, DstID: 91, Group: true, Timestamp: end.Add(-2 * time.Second)})
	if active := r.Active(); len(active) != 1 || active[0].SrcID != 3120001 {
		t.Fatalf("Active = %+v", active)
	}

	r.HandleCallEvent(call.Event{
		Type: call.EventCallEnd, Slot: 1, Origin: call.OriginRF, CallType: call.TypeVoice,
		SrcID: 3120001, DstID: 91, Group: true, Reason: call.EndTerminator,
		Duration: 2 * time.Second, Frames: 33, Errors: 1,
		RSSI:      call.Summary{Min: -95, Max: -80, Average: -88, Samples: 12},
		Timestamp: end,
	})
	// a kerchunk below the minimum duration is not kept
	r.HandleCallEvent(call.Event{Type: call.EventCallEnd, Slot: 2, Origin: call.OriginNet, Duration: 100 * time.Millisecond, Timestamp: end})

	if active := r.Active(); len(active) != 0 {
		t.Errorf("Active after end = %+v", active)
	}

	runUntilDrained(t, r)

	records, err := repo.GetRecent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("saved %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Slot != 1 || rec.Origin != "rf" || !rec.GroupCall || rec.EndReason != call.EndTerminator.String() {
		t.Errorf("record = %+v", rec)
	}
	if rec.Duration != 2 || rec.Frames != 33 || rec.RSSIAvg != -88 {
		t.Errorf("record stats = %+v", rec)
	}
	if !rec.StartTime.Equal(end.Add(-2 * time.Second)) {
		t.Errorf("start = %v", rec.StartTime)
	}
}

type failingStore struct {
	creates int
	pruned  time.Time
}

func (s *failingStore) Create(*database.CallRecord) error {
	s.creates++
	return errors.New("disk full")
}

func (s *failingStore) DeleteOlderThan(before time.Time) (int64, error) {
	s.pruned = before
	return 0, nil
}

func TestRecorder_StoreErrors(t *testing.T) {
	store := &failingStore{}
	r := New(store, Options{Retention: 24 * time.Hour}, testLogger())
	r.HandleCallEvent(call.Event{Type: call.EventCallEnd, Slot: 1, Duration: time.Second})

	runUntilDrained(t, r)

	if store.creates != 1 {
		t.Errorf("creates = %d", store.creates)
	}
	if store.pruned.IsZero() || time.Since(store.pruned) < 24*time.Hour {
		t.Errorf("pruned before %v", store.pruned)
	}
}

func TestRecorder_QueueFull(t *testing.T) {
	r := New(&failingStore{}, Options{}, testLogger())
	for range queueSize + 2 {
		r.HandleCallEvent(call.Event{Type: call.EventCallEnd, Duration: time.Second})
	}
	if r.Dropped() != 2 {
		t.Errorf("Dropped = %d, want 2", r.Dropped())
	}
}

func TestRecorder_IgnoresOtherEvents(t *testing.T) {
	r := New(&failingStore{}, Options{}, testLogger())
	r.HandleCallEvent(call.Event{Type: call.EventRejected, Slot: 1})
	r.HandleCallEvent(call.Event{Type: call.EventHangExpired, Slot: 1})
	if len(r.Active()) != 0 || len(r.queue) != 0 {
		t.Error("non-call events were recorded")
	}
}
