package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	log := logger.New(logger.Config{Level: "error"})
	db, err := NewDB(Config{Path: filepath.Join(t.TempDir(), "test.db")}, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB(t *testing.T) {
	db := openTestDB(t)
	if db.GetDB() == nil {
		t.Error("Expected non-nil database connection")
	}
}

func TestNewDB_CreatesDirectory(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	path := filepath.Join(t.TempDir(), "nested", "dir", "calls.db")

	db, err := NewDB(Config{Path: path}, log)
	if err != nil {
		t.Fatalf("Failed to create database in a new directory: %v", err)
	}
	_ = db.Close()
}

func TestCallRecord_BeforeCreate(t *testing.T) {
	db := openTestDB(t)

	rec := &CallRecord{
		Slot:      1,
		Origin:    "rf",
		SrcID:     1234567,
		DstID:     91,
		GroupCall: true,
		EndReason: "terminator",
		Duration:  5.5,
		Frames:    92,
	}
	if err := db.CallRecords().Create(rec); err != nil {
		t.Fatalf("Failed to create call record: %v", err)
	}

	if rec.ID == 0 {
		t.Error("Expected non-zero ID after creation")
	}
	if rec.CreatedAt.IsZero() || rec.EndTime.IsZero() {
		t.Error("Expected CreatedAt and EndTime to be set by hook")
	}
	if got := rec.EndTime.Sub(rec.StartTime); got != 5500*time.Millisecond {
		t.Errorf("Expected StartTime 5.5s before EndTime, got %v", got)
	}
}

func seedCalls(t *testing.T, repo *CallRecordRepository) time.Time {
	t.Helper()
	now := time.Now()
	reasons := []string{"terminator", "timeout", "terminator", "lost", "terminator"}
	for i, reason := range reasons {
		rec := &CallRecord{
			Slot:      1 + i%2,
			Origin:    "net",
			SrcID:     uint32(1234560 + i%2),
			DstID:     uint32(91 + i%3),
			GroupCall: true,
			EndReason: reason,
			Duration:  float64(i),
			StartTime: now.Add(time.Duration(i) * time.Minute),
			EndTime:   now.Add(time.Duration(i)*time.Minute + 5*time.Second),
		}
		if err := repo.Create(rec); err != nil {
			t.Fatalf("Failed to create call record %d: %v", i, err)
		}
	}
	return now
}

func TestCallRecordRepository_Queries(t *testing.T) {
	repo := openTestDB(t).CallRecords()
	now := seedCalls(t, repo)

	t.Run("recent is newest first", func(t *testing.T) {
		recs, err := repo.GetRecent(3)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(recs))
		}
		if recs[0].StartTime.Before(recs[1].StartTime) {
			t.Error("Expected records ordered by start_time DESC")
		}
	})

	t.Run("paginated", func(t *testing.T) {
		recs, total, err := repo.GetRecentPaginated(2, 2)
		if err != nil {
			t.Fatal(err)
		}
		if total != 5 || len(recs) != 2 {
			t.Errorf("Expected total 5 and page of 2, got %d and %d", total, len(recs))
		}
	})

	t.Run("by source", func(t *testing.T) {
		recs, err := repo.GetBySource(1234560, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 3 {
			t.Errorf("Expected 3 calls from 1234560, got %d", len(recs))
		}
	})

	t.Run("by destination", func(t *testing.T) {
		recs, err := repo.GetByDestination(91, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 2 {
			t.Errorf("Expected 2 calls to 91, got %d", len(recs))
		}
	})

	t.Run("by time range", func(t *testing.T) {
		recs, err := repo.GetByTimeRange(now.Add(30*time.Second), now.Add(150*time.Second), 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 2 {
			t.Errorf("Expected 2 calls in range, got %d", len(recs))
		}
	})

	t.Run("count by reason", func(t *testing.T) {
		counts, err := repo.CountByReason()
		if err != nil {
			t.Fatal(err)
		}
		if counts["terminator"] != 3 || counts["timeout"] != 1 || counts["lost"] != 1 {
			t.Errorf("Unexpected counts %v", counts)
		}
	})
}

func TestCallRecordRepository_DeleteOlderThan(t *testing.T) {
	repo := openTestDB(t).CallRecords()
	now := seedCalls(t, repo)

	deleted, err := repo.DeleteOlderThan(now.Add(150 * time.Second))
	if err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}
}
