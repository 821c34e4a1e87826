package radioid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/database"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
	"github.com/dbehnke/dvmhost-go/pkg/lookup"
)

const csvData = `RADIO_ID,CALLSIGN,FIRST_NAME,LAST_NAME,CITY,STATE,COUNTRY
3138617,K7ABC,John,Doe,Seattle,WA,USA
3200449,W7XYZ,Jane,Smith,Portland,OR,USA
1234567,VE3TEST,Bob,Johnson,Toronto,ON,Canada`

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error"})
}

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestSyncer_Sync(t *testing.T) {
	db, err := database.NewDB(database.Config{Path: filepath.Join(t.TempDir(), "radioid.db")}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	table := lookup.NewRadioIDTable(nil, testLogger())
	syncer := NewSyncer(serve(t, http.StatusOK, csvData), time.Hour, table, db.Radios(), testLogger())

	if err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if table.Len() != 3 {
		t.Errorf("Expected 3 radios in table, got %d", table.Len())
	}
	r, ok := table.Find(3138617)
	if !ok || r.Callsign != "K7ABC" {
		t.Errorf("Find(3138617) = %+v, %v", r, ok)
	}

	count, err := db.Radios().Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("Expected 3 stored radios, got %d", count)
	}
}

func TestSyncer_SyncErrorsKeepTable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"empty export", http.StatusOK, "RADIO_ID,CALLSIGN\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := lookup.NewRadioIDTable(nil, testLogger())
			table.Replace([]database.Radio{{RadioID: 1, Callsign: "N0CALL"}})

			syncer := NewSyncer(serve(t, tt.status, tt.body), time.Hour, table, nil, testLogger())
			if err := syncer.Sync(context.Background()); err == nil {
				t.Fatal("expected error")
			}
			if table.Len() != 1 {
				t.Errorf("table replaced on failure: %d entries", table.Len())
			}
		})
	}
}

type failingStore struct{}

func (failingStore) UpsertBatch([]database.Radio, int) error { return errors.New("read-only") }
func (failingStore) Count() (int64, error)                   { return 0, nil }

func TestSyncer_StoreError(t *testing.T) {
	table := lookup.NewRadioIDTable(nil, testLogger())
	syncer := NewSyncer(serve(t, http.StatusOK, csvData), time.Hour, table, failingStore{}, testLogger())

	if err := syncer.Sync(context.Background()); err == nil {
		t.Error("expected store error")
	}
	// the in-memory table is still usable
	if table.Len() != 3 {
		t.Errorf("table has %d entries", table.Len())
	}
}

func TestSyncer_StartStops(t *testing.T) {
	table := lookup.NewRadioIDTable(nil, testLogger())
	syncer := NewSyncer(serve(t, http.StatusOK, csvData), time.Hour, table, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- syncer.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for table.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start = %v", err)
	}
	if table.Len() != 3 {
		t.Errorf("table has %d entries", table.Len())
	}
}

func TestNewSyncer_Defaults(t *testing.T) {
	s := NewSyncer("", 0, lookup.NewRadioIDTable(nil, testLogger()), nil, testLogger())
	if s.url != RadioIDURL || s.interval != DefaultInterval {
		t.Errorf("url=%q interval=%v", s.url, s.interval)
	}
}
