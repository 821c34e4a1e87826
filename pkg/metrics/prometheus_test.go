package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

func TestPrometheusHandler_ServeHTTP(t *testing.T) {
	collector := NewCollector()
	handler := NewPrometheusHandler(collector)
	// a second handler on the same registry must not panic
	_ = NewPrometheusHandler(collector)

	collector.HandleCallEvent(call.Event{Type: call.EventCallStart, Slot: 1, Origin: call.OriginRF, CallType: call.TypeVoice})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	for _, metric := range []string{
		"dvmhost_calls_started_total",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), metric) {
			t.Errorf("Expected metric %s in output", metric)
		}
	}
}

func TestPrometheusServer_Disabled(t *testing.T) {
	s := NewPrometheusServer(PrometheusConfig{Enabled: false}, NewCollector(), nil)
	if err := s.Start(context.Background()); err != nil {
		t.Errorf("disabled server returned %v", err)
	}
}

func TestPrometheusServer_StartStop(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	s := NewPrometheusServer(PrometheusConfig{Enabled: true, Port: 0, Path: "/metrics"}, NewCollector(), log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	addr, err := s.Addr(waitCtx)
	if err != nil {
		t.Fatalf("server never bound: %v", err)
	}

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", addr.Port))
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
