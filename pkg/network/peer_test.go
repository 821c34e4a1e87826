package network

import (
	"bytes"
	"context"
	"crypto/sha256"
	"net"
	"testing"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/config"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
)

// mockMaster answers the login handshake on a loopback socket.
type mockMaster struct {
	t      *testing.T
	conn   *net.UDPConn
	salt   []byte
	pass   string
	peer   *net.UDPAddr
	hashOK bool
}

func newMockMaster(t *testing.T, pass string) *mockMaster {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		t.Fatalf("Failed to create mock master: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &mockMaster{t: t, conn: conn, salt: []byte{0xA1, 0xB2, 0xC3, 0xD4}, pass: pass}
}

func (m *mockMaster) port() int {
	return m.conn.LocalAddr().(*net.UDPAddr).Port
}

func (m *mockMaster) read(sig string) []byte {
	m.t.Helper()
	buffer := make([]byte, 1024)
	for {
		_ = m.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, addr, err := m.conn.ReadFromUDP(buffer)
		if err != nil {
			m.t.Fatalf("mock master waiting for %s: %v", sig, err)
		}
		m.peer = addr
		if hasPrefix(buffer[:n], sig) {
			return append([]byte(nil), buffer[:n]...)
		}
	}
}

func (m *mockMaster) ack(payload []byte) {
	b := append([]byte(PacketTypeRPTACK), payload...)
	if _, err := m.conn.WriteToUDP(b, m.peer); err != nil {
		m.t.Fatalf("mock master write: %v", err)
	}
}

func (m *mockMaster) handshake() {
	m.read(PacketTypeRPTL)
	m.ack(m.salt)

	rptk := m.read(PacketTypeRPTK)
	want := sha256.Sum256(append(append([]byte(nil), m.salt...), m.pass...))
	m.hashOK = bytes.Equal(rptk[8:40], want[:])
	m.ack([]byte{0, 0, 0, 0})

	m.read(PacketTypeRPTC)
	m.ack([]byte{0, 0, 0, 0})
}

func testPeer(t *testing.T, port int) *Peer {
	cfg := config.NetworkConfig{
		Address:   "127.0.0.1",
		Port:      port,
		RadioID:   312000,
		Password:  "test",
		PingTime:  5,
		MaxMissed: 3,
		QueueSize: 2,
	}
	log := logger.New(logger.Config{Level: "error"})
	return NewPeer(cfg, RepeaterInfo{Callsign: "N0CALL"}, log)
}

func waitState(t *testing.T, p *Peer, want ConnectionState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for p.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("peer state = %v, want %v", p.State(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPeer_LoginUsesMasterSalt(t *testing.T) {
	master := newMockMaster(t, "test")
	peer := testPeer(t, master.port())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- peer.Start(ctx)
	}()

	master.handshake()
	waitState(t, peer, StateConnected)

	if !master.hashOK {
		t.Error("RPTK hash was not sha256(master salt + password)")
	}

	cancel()
	select {
	case err := <-errChan:
		if err != context.Canceled {
			t.Errorf("Start returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Test timeout")
	}

	// a clean shutdown says goodbye
	master.read(PacketTypeRPTCL)
}

func TestPeer_ReadWriteDMR(t *testing.T) {
	master := newMockMaster(t, "test")
	peer := testPeer(t, master.port())

	if err := peer.WriteDMR(&Data{Slot: 1}); err != ErrNotConnected {
		t.Fatalf("WriteDMR before login = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go func() { _ = peer.Start(ctx) }()

	master.handshake()
	waitState(t, peer, StateConnected)

	// master to peer, one more than the queue holds
	for i := 0; i < 3; i++ {
		d := &Data{Seq: byte(i), SrcID: 3120001, DstID: 91, Slot: 2, Group: true, FrameType: FrameVoice, DataType: 1}
		if _, err := master.conn.WriteToUDP(d.Encode(), master.peer); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for peer.Stats().Received < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("peer received %d bursts, want 3", peer.Stats().Received)
		}
		time.Sleep(10 * time.Millisecond)
	}

	st := peer.Stats()
	if st.Dropped != 1 || st.Queued != 2 {
		t.Errorf("stats = %+v, want 1 dropped and 2 queued", st)
	}
	for want := byte(0); want < 2; want++ {
		d, ok := peer.ReadDMR()
		if !ok || d.Seq != want {
			t.Fatalf("ReadDMR = %v/%v, want seq %d", d, ok, want)
		}
	}
	if _, ok := peer.ReadDMR(); ok {
		t.Error("ReadDMR returned a burst from an empty queue")
	}

	// peer to master carries the repeater id
	if err := peer.WriteDMR(&Data{SrcID: 1, DstID: 2, Slot: 1, Group: true}); err != nil {
		t.Fatalf("WriteDMR: %v", err)
	}
	got, err := ParseDMRD(master.read(PacketTypeDMRD))
	if err != nil {
		t.Fatalf("master could not parse burst: %v", err)
	}
	if got.RepeaterID != 312000 || got.SrcID != 1 || got.DstID != 2 {
		t.Errorf("master got %+v", got)
	}
}

func TestPeer_MasterNAK(t *testing.T) {
	master := newMockMaster(t, "test")
	peer := testPeer(t, master.port())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() { errChan <- peer.Start(ctx) }()

	master.read(PacketTypeRPTL)
	if _, err := master.conn.WriteToUDP([]byte("MSTNAK\x00\x04\xc2\xc0"), master.peer); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errChan:
		if err == nil {
			t.Fatal("expected login failure")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Test timeout")
	}
}
