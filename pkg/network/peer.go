package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dbehnke/dvmhost-go/pkg/config"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
	"github.com/dbehnke/dvmhost-go/pkg/ringbuffer"
)

// Network is the IP side of a site as seen by the protocol core: a pollable
// receive queue and a sink for outbound bursts.
type Network interface {
	// ReadDMR pops the next received burst without blocking.
	ReadDMR() (*Data, bool)
	// WriteDMR sends a burst to the master.
	WriteDMR(d *Data) error
}

// ConnectionState represents the state of the master connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateLoginSent
	StateAuthSent
	StateConfigSent
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateLoginSent:
		return "login sent"
	case StateAuthSent:
		return "auth sent"
	case StateConfigSent:
		return "config sent"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

var (
	// ErrNotConnected is returned by WriteDMR before login completes.
	ErrNotConnected = errors.New("not connected to master")
	// ErrMasterNAK is returned when the master refuses or drops the login.
	ErrMasterNAK = errors.New("master sent MSTNAK")
	// ErrMasterTimeout is returned after too many unanswered pings.
	ErrMasterTimeout = errors.New("master stopped answering pings")
)

const handshakeTimeout = 5 * time.Second

// Peer is a HomeBrew repeater connection to a master. Received bursts are
// queued in a bounded ring buffer that the host loop drains through ReadDMR.
type Peer struct {
	config     config.NetworkConfig
	info       RepeaterInfo
	repeaterID uint32
	log        *logger.Logger

	conn       *net.UDPConn
	masterAddr *net.UDPAddr
	state      ConnectionState
	stateMu    sync.RWMutex

	rx     *ringbuffer.RingBuffer[*Data]
	rxMu   sync.Mutex
	missed int32

	dropped atomic.Uint64
	sent    atomic.Uint64
	recv    atomic.Uint64
}

// NewPeer creates a peer; nothing is sent until Start.
func NewPeer(cfg config.NetworkConfig, info RepeaterInfo, log *logger.Logger) *Peer {
	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}
	return &Peer{
		config:     cfg,
		info:       info,
		repeaterID: uint32(cfg.RadioID),
		log:        log.WithComponent("network.peer"),
		state:      StateDisconnected,
		rx:         ringbuffer.New[*Data](size, "network rx"),
	}
}

// Run keeps the peer connected until ctx is cancelled, reconnecting after
// failures.
func (p *Peer) Run(ctx context.Context) error {
	for {
		err := p.Start(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.log.Warn("Master connection lost, retrying", logger.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(p.config.PingTime) * time.Second):
		}
	}
}

// Start connects, logs in and serves the connection until ctx is cancelled
// or the master goes away.
func (p *Peer) Start(ctx context.Context) error {
	masterAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", p.config.Address, p.config.Port))
	if err != nil {
		return fmt.Errorf("failed to resolve master address: %w", err)
	}
	p.masterAddr = masterAddr

	localAddr := &net.UDPAddr{
		IP:   net.IPv4zero,
		Port: p.config.LocalPort,
	}
	conn, err := net.ListenUDP("udp", localAddr)
	if err != nil {
		return fmt.Errorf("failed to create UDP connection: %w", err)
	}
	p.conn = conn
	defer func() {
		p.setState(StateDisconnected)
		_ = conn.Close()
	}()

	p.log.Info("Connecting to master",
		logger.String("master", masterAddr.String()),
		logger.String("local", conn.LocalAddr().String()))

	if err := p.authenticate(); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 2)
	go func() {
		errChan <- p.receiveLoop(ctx)
	}()
	go func() {
		errChan <- p.keepaliveLoop(ctx)
	}()

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-errChan:
	}

	if ctx.Err() != nil {
		_, _ = p.conn.WriteToUDP(encodeRPTCL(p.repeaterID), p.masterAddr)
	}
	return err
}

// authenticate performs the RPTL, RPTK, RPTC handshake. The master's first
// RPTACK carries the salt for the password hash.
func (p *Peer) authenticate() error {
	p.log.Info("Sending RPTL (login request)", logger.Uint32("repeater_id", p.repeaterID))
	reply, err := p.exchange(encodeRPTL(p.repeaterID), StateLoginSent)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if len(reply) < RPTACKPacketSize {
		return fmt.Errorf("login: short RPTACK of %d bytes", len(reply))
	}
	salt := append([]byte(nil), reply[6:6+SaltLength]...)

	p.log.Info("Sending RPTK (key exchange)")
	if _, err := p.exchange(encodeRPTK(p.repeaterID, salt, p.config.Password), StateAuthSent); err != nil {
		return fmt.Errorf("key exchange: %w", err)
	}

	p.log.Info("Sending RPTC (configuration)")
	if _, err := p.exchange(encodeRPTC(p.repeaterID, p.info), StateConfigSent); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	p.setState(StateConnected)
	atomic.StoreInt32(&p.missed, 0)
	p.log.Info("Logged in to master")

	// Clear read deadline for normal operation
	return p.conn.SetReadDeadline(time.Time{})
}

// exchange sends one handshake packet and waits for RPTACK.
func (p *Peer) exchange(pkt []byte, next ConnectionState) ([]byte, error) {
	if _, err := p.conn.WriteToUDP(pkt, p.masterAddr); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	p.setState(next)

	buffer := make([]byte, 1024)
	deadline := time.Now().Add(handshakeTimeout)
	for {
		if err := p.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		n, _, err := p.conn.ReadFromUDP(buffer)
		if err != nil {
			return nil, fmt.Errorf("waiting for RPTACK: %w", err)
		}

		reply := buffer[:n]
		switch {
		case hasPrefix(reply, PacketTypeRPTACK):
			return append([]byte(nil), reply...), nil
		case hasPrefix(reply, PacketTypeMSTNAK):
			return nil, ErrMasterNAK
		default:
			// stray traffic from a previous session
			p.log.Debug("Ignoring packet during login", logger.String("type", string(reply[:min(n, 4)])))
		}
	}
}

// receiveLoop continuously receives and processes packets
func (p *Peer) receiveLoop(ctx context.Context) error {
	buffer := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Set read deadline to allow context checking
		_ = p.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, _, err := p.conn.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return fmt.Errorf("read error: %w", err)
		}

		if err := p.handlePacket(buffer[:n]); err != nil {
			return err
		}
	}
}

// handlePacket processes a received packet
func (p *Peer) handlePacket(data []byte) error {
	switch {
	case hasPrefix(data, PacketTypeDMRD):
		d, err := ParseDMRD(data)
		if err != nil {
			p.log.Debug("Failed to parse DMRD packet", logger.Error(err))
			return nil
		}
		p.recv.Add(1)
		p.enqueue(d)

	case hasPrefix(data, PacketTypeMSTPONG):
		atomic.StoreInt32(&p.missed, 0)

	case hasPrefix(data, PacketTypeMSTNAK):
		p.log.Warn("Received MSTNAK - master dropped the login")
		return ErrMasterNAK

	case hasPrefix(data, PacketTypeMSTCL):
		p.log.Warn("Received MSTCL - master closing connection")
		return fmt.Errorf("master closed the connection")

	case hasPrefix(data, PacketTypeRPTACK):
		// late handshake ack

	default:
		p.log.Debug("Received unknown packet type", logger.Int("len", len(data)))
	}
	return nil
}

func (p *Peer) enqueue(d *Data) {
	p.rxMu.Lock()
	ok := p.rx.Push(d)
	p.rxMu.Unlock()

	if !ok {
		p.dropped.Add(1)
		p.log.Debug("Receive queue full, dropping burst",
			logger.Uint32("src", d.SrcID),
			logger.Uint32("dst", d.DstID))
	}
}

// keepaliveLoop sends periodic RPTPING packets
func (p *Peer) keepaliveLoop(ctx context.Context) error {
	interval := time.Duration(p.config.PingTime) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p.State() != StateConnected {
				continue
			}

			if p.config.MaxMissed > 0 && int(atomic.AddInt32(&p.missed, 1)) > p.config.MaxMissed {
				return ErrMasterTimeout
			}

			if _, err := p.conn.WriteToUDP(encodeRPTPING(p.repeaterID), p.masterAddr); err != nil {
				p.log.Error("Failed to send RPTPING", logger.Error(err))
			}
		}
	}
}

// ReadDMR pops the oldest received burst.
func (p *Peer) ReadDMR() (*Data, bool) {
	p.rxMu.Lock()
	defer p.rxMu.Unlock()
	return p.rx.Pop()
}

// WriteDMR sends a burst to the master under this repeater's id.
func (p *Peer) WriteDMR(d *Data) error {
	if p.State() != StateConnected {
		return ErrNotConnected
	}

	out := *d
	out.RepeaterID = p.repeaterID
	if _, err := p.conn.WriteToUDP(out.Encode(), p.masterAddr); err != nil {
		return fmt.Errorf("failed to send DMRD: %w", err)
	}
	p.sent.Add(1)
	return nil
}

// State returns the connection state.
func (p *Peer) State() ConnectionState {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

func (p *Peer) setState(state ConnectionState) {
	p.stateMu.Lock()
	p.state = state
	p.stateMu.Unlock()
}

// PeerStats are the traffic counters of a peer.
type PeerStats struct {
	Received uint64
	Sent     uint64
	Dropped  uint64
	Queued   int
}

// Stats returns the traffic counters.
func (p *Peer) Stats() PeerStats {
	p.rxMu.Lock()
	queued := p.rx.Len()
	p.rxMu.Unlock()

	return PeerStats{
		Received: p.recv.Load(),
		Sent:     p.sent.Load(),
		Dropped:  p.dropped.Load(),
		Queued:   queued,
	}
}
