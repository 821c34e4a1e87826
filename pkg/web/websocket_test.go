package web

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dbehnke/dvmhost-go/pkg/call"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

func dialHub(t *testing.T) (*WebSocketHub, *websocket.Conn) {
	t.Helper()
	hub := NewWebSocketHub(logger.New(logger.Config{Level: "error"}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(hub.Handler())
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return hub, conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return ev
}

func TestWebSocketHub_CallEvents(t *testing.T) {
	hub, conn := dialHub(t)

	hub.HandleCallEvent(call.Event{Type: call.EventCallStart, Slot: 2, Origin: call.OriginNet, SrcID: 3120001, DstID: 91, Group: true})
	hub.HandleCallEvent(call.Event{
		Type: call.EventCallEnd, Slot: 2, Origin: call.OriginNet, SrcID: 3120001, DstID: 91,
		Reason: call.EndTimeout, Duration: 2 * time.Second, Frames: 40,
	})

	start := readEvent(t, conn)
	if start.Type != "call_start" || start.Data["origin"] != "net" || start.Data["src_id"] != float64(3120001) {
		t.Errorf("start = %+v", start)
	}
	if start.Timestamp.IsZero() {
		t.Error("broadcast without timestamp")
	}
	end := readEvent(t, conn)
	if end.Type != "call_end" || end.Data["reason"] != call.EndTimeout.String() || end.Data["duration_s"] != 2.0 {
		t.Errorf("end = %+v", end)
	}
	if _, ok := end.Data["rssi"]; ok {
		t.Error("network call carried rssi")
	}
}

func TestWebSocketHub_SlotsUpdate(t *testing.T) {
	hub, conn := dialHub(t)

	hub.BroadcastSlotsUpdate([]SlotStatus{{Slot: 1, Busy: true}})
	ev := readEvent(t, conn)
	if ev.Type != "slots_update" {
		t.Fatalf("type = %q", ev.Type)
	}
	slots, ok := ev.Data["slots"].([]interface{})
	if !ok || len(slots) != 1 {
		t.Errorf("slots = %#v", ev.Data["slots"])
	}
}

func TestWebSocketHub_ClientDisconnect(t *testing.T) {
	hub, conn := dialHub(t)
	_ = conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client not unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWebSocketHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewWebSocketHub(logger.New(logger.Config{Level: "error"}))
	// nothing is running; the buffered channel takes the event
	hub.Broadcast(Event{Type: "test"})
	if len(hub.broadcast) != 1 {
		t.Errorf("queued = %d", len(hub.broadcast))
	}
}
