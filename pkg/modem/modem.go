// Package modem drives an MMDVM compatible DMR modem over a serial port.
// Received bursts are queued per slot as modem frames
// [tag][control][burst]{[rssi hi][rssi lo]} for the slot controllers, and
// frames handed to WriteFrame are sent for transmission.
package modem

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/dbehnke/dvmhost-go/pkg/dmr"
	"github.com/dbehnke/dvmhost-go/pkg/logger"
	"github.com/dbehnke/dvmhost-go/pkg/ringbuffer"
)

var (
	ErrReadTimeout         = errors.New("modem: read timeout")
	ErrUnsupportedProtocol = errors.New("modem: unsupported MMDVM protocol version")
	ErrNAK                 = errors.New("modem: command refused (NAK)")
	ErrNoDMR               = errors.New("modem: firmware has no DMR support")
	ErrShortFrame          = errors.New("modem: frame too short")
)

var validSpeeds = []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800}

const (
	responseTimeout = time.Second
	statusInterval  = 250 * time.Millisecond
	readTimeout     = 100 * time.Millisecond
	versionRetries  = 6
)

// Options configure the modem for DMR.
type Options struct {
	ColorCode uint8
	Duplex    bool
	TXDelayMs int
	RXLevel   int // percent
	TXLevel   int // percent
	QueueSize int // received frames buffered per slot
}

// Modem is an MMDVM modem. Run owns the serial reads; ReadFrame and
// WriteFrame may be called from another goroutine.
type Modem struct {
	port io.ReadWriteCloser
	opts Options
	log  *logger.Logger

	writeMu sync.Mutex

	mu          sync.Mutex
	rx          [2]*ringbuffer.RingBuffer[[]byte]
	space       [2]int
	dropped     uint64
	protocol    byte
	description string

	parser parser
}

// Open opens the serial port, identifies the modem and puts it in DMR mode.
func Open(port string, speed int, opts Options, log *logger.Logger) (*Modem, error) {
	if port == "" {
		return nil, errors.New("modem: no serial port configured")
	}
	if !slices.Contains(validSpeeds, speed) {
		return nil, fmt.Errorf("modem: speed %d is not one of %v", speed, validSpeeds)
	}

	p, err := serial.Open(port, &serial.Mode{BaudRate: speed})
	if err != nil {
		return nil, fmt.Errorf("modem open %s: %w", port, err)
	}
	if err := p.SetReadTimeout(readTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("modem read timeout: %w", err)
	}

	m := New(p, opts, log)
	if err := m.Init(); err != nil {
		p.Close()
		return nil, err
	}
	return m, nil
}

// New wraps an already open port. Reads on port must return (0, nil) or
// an error when no data arrives in time.
func New(port io.ReadWriteCloser, opts Options, log *logger.Logger) *Modem {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	m := &Modem{
		port: port,
		opts: opts,
		log:  log.WithComponent("modem"),
	}
	for i := range m.rx {
		m.rx[i] = ringbuffer.New[[]byte](opts.QueueSize, fmt.Sprintf("modem slot %d rx", i+1))
	}
	return m
}

// Init runs the version, config and mode handshake.
func (m *Modem) Init() error {
	if err := m.readVersion(); err != nil {
		return err
	}
	if err := m.command(cmdSetConfig, m.config()); err != nil {
		return fmt.Errorf("set config: %w", err)
	}
	if err := m.command(cmdSetMode, []byte{modeDMR}); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	m.log.Info("Modem ready",
		logger.String("description", m.description),
		logger.Int("protocol", int(m.protocol)),
		logger.Bool("duplex", m.opts.Duplex),
		logger.Int("color_code", int(m.opts.ColorCode)))
	return nil
}

func (m *Modem) readVersion() error {
	for range versionRetries {
		if err := m.write(encodeMessage(cmdGetVersion, nil)); err != nil {
			return fmt.Errorf("get version: %w", err)
		}
		msg, err := m.await(cmdGetVersion)
		if errors.Is(err, ErrReadTimeout) {
			continue
		}
		if err != nil {
			return fmt.Errorf("get version: %w", err)
		}
		if len(msg.payload) < 1 {
			return fmt.Errorf("get version: %w", ErrShortFrame)
		}

		m.protocol = msg.payload[0]
		switch m.protocol {
		case 1:
			m.description = string(msg.payload[1:])
		case 2:
			if len(msg.payload) < 20 {
				return fmt.Errorf("get version: %w", ErrShortFrame)
			}
			if msg.payload[1]&capDMR == 0 {
				return ErrNoDMR
			}
			m.description = string(msg.payload[20:])
		default:
			return fmt.Errorf("%w: %d", ErrUnsupportedProtocol, m.protocol)
		}
		return nil
	}
	return fmt.Errorf("get version: %w", ErrReadTimeout)
}

// config builds the protocol 1 SET_CONFIG body with only DMR enabled.
func (m *Modem) config() []byte {
	b := make([]byte, 23)
	if !m.opts.Duplex {
		b[0] |= 0x80
	}
	b[1] = capDMR
	b[2] = byte(m.opts.TXDelayMs / 10)
	b[3] = modeIdle
	b[4] = level(m.opts.RXLevel)
	b[6] = m.opts.ColorCode
	b[8] = 128 // oscillator offset
	b[10] = level(m.opts.TXLevel)
	b[13] = 128 // tx dc offset
	b[14] = 128 // rx dc offset
	return b
}

func level(percent int) byte {
	percent = max(0, min(percent, 100))
	return byte(float64(percent)*2.55 + 0.5)
}

// command sends cmd and waits for the ACK.
func (m *Modem) command(cmd byte, payload []byte) error {
	if err := m.write(encodeMessage(cmd, payload)); err != nil {
		return err
	}
	_, err := m.await(respACK)
	return err
}

// await reads until a message of type want arrives. Used only before Run.
func (m *Modem) await(want byte) (message, error) {
	buf := make([]byte, 256)
	deadline := time.Now().Add(responseTimeout)
	var msgs []message

	for time.Now().Before(deadline) {
		n, err := m.port.Read(buf)
		if err != nil {
			return message{}, fmt.Errorf("modem read: %w", err)
		}
		msgs = m.parser.feed(buf[:n], msgs[:0])
		for _, msg := range msgs {
			switch {
			case msg.cmd == want:
				return msg, nil
			case msg.cmd == respNAK:
				reason := 0
				if len(msg.payload) > 1 {
					reason = int(msg.payload[1])
				}
				return message{}, fmt.Errorf("%w: reason %d", ErrNAK, reason)
			default:
				m.handle(msg)
			}
		}
	}
	return message{}, ErrReadTimeout
}

// Run reads the serial port until ctx is cancelled or the port fails,
// polling modem status as it goes.
func (m *Modem) Run(ctx context.Context) error {
	buf := make([]byte, 512)
	var msgs []message
	lastStatus := time.Time{}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if time.Since(lastStatus) >= statusInterval {
			lastStatus = time.Now()
			if err := m.write(encodeMessage(cmdGetStatus, nil)); err != nil {
				return fmt.Errorf("status poll: %w", err)
			}
		}

		n, err := m.port.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("modem read: %w", err)
		}
		if n == 0 {
			continue
		}

		msgs = m.parser.feed(buf[:n], msgs[:0])
		for _, msg := range msgs {
			m.handle(msg)
		}
	}
}

func (m *Modem) handle(msg message) {
	switch msg.cmd {
	case cmdDMRData1, cmdDMRData2:
		slot := 1
		if msg.cmd == cmdDMRData2 {
			slot = 2
		}
		if len(msg.payload) < dmr.ModemFrameLength-1 {
			m.log.Debug("Short DMR frame from modem", logger.Int("len", len(msg.payload)))
			return
		}
		frame := make([]byte, 0, len(msg.payload)+1)
		frame = append(frame, dmr.TagData)
		frame = append(frame, msg.payload...)
		m.queue(slot, frame)

	case cmdDMRLost1, cmdDMRLost2:
		slot := 1
		if msg.cmd == cmdDMRLost2 {
			slot = 2
		}
		m.queue(slot, []byte{dmr.TagLost, 0})

	case cmdGetStatus:
		// modes, state, flags, dstar space, dmr space 1, dmr space 2
		if len(msg.payload) >= 6 {
			m.mu.Lock()
			m.space[0] = int(msg.payload[4])
			m.space[1] = int(msg.payload[5])
			m.mu.Unlock()
		}

	case respACK, cmdGetVersion:

	case respNAK:
		if len(msg.payload) >= 2 {
			m.log.Warn("Modem NAK",
				logger.Int("command", int(msg.payload[0])),
				logger.Int("reason", int(msg.payload[1])))
		}

	case respDebug1, respDebug2, respDebug3, respDebug4, respDebug5, respDebugDump:
		m.log.Debug("Modem debug", logger.String("text", printable(msg.payload)))

	default:
		m.log.Debug("Unexpected modem message", logger.Stringer("msg", msg))
	}
}

func (m *Modem) queue(slot int, frame []byte) {
	m.mu.Lock()
	ok := m.rx[slot-1].Push(frame)
	if !ok {
		m.dropped++
	}
	m.mu.Unlock()

	if !ok {
		m.log.Debug("Modem receive queue full, dropping frame", logger.Int("slot", slot))
	}
}

// ReadFrame pops the oldest frame received on slot.
func (m *Modem) ReadFrame(slot uint8) ([]byte, bool) {
	if slot != 1 && slot != 2 {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rx[slot-1].Pop()
}

// Space returns the free transmit buffer space last reported for slot, in
// frames.
func (m *Modem) Space(slot uint8) int {
	if slot != 1 && slot != 2 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.space[slot-1]
}

// Dropped returns the number of received frames lost to full queues.
func (m *Modem) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// WriteFrame sends a modem frame for transmission on slot. The tag byte is
// not sent; any RSSI trailer is dropped.
func (m *Modem) WriteFrame(slot uint8, frame []byte) error {
	if len(frame) < dmr.ModemFrameLength {
		return ErrShortFrame
	}
	var cmd byte
	switch slot {
	case 1:
		cmd = cmdDMRData1
	case 2:
		cmd = cmdDMRData2
	default:
		return fmt.Errorf("modem: no slot %d", slot)
	}

	if err := m.write(encodeMessage(cmd, frame[1:dmr.ModemFrameLength])); err != nil {
		return fmt.Errorf("slot %d write: %w", slot, err)
	}

	m.mu.Lock()
	if m.space[slot-1] > 0 {
		m.space[slot-1]--
	}
	m.mu.Unlock()
	return nil
}

// SetTransmit keys or unkeys the DMR transmitter of a duplex modem.
func (m *Modem) SetTransmit(on bool) error {
	var b byte
	if on {
		b = 1
	}
	return m.write(encodeMessage(cmdDMRStart, []byte{b}))
}

// Close returns the modem to idle and closes the port.
func (m *Modem) Close() error {
	_ = m.write(encodeMessage(cmdSetMode, []byte{modeIdle}))
	return m.port.Close()
}

func (m *Modem) write(b []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_, err := m.port.Write(b)
	return err
}

// RawRSSI extracts the RSSI trailer of a received frame.
func RawRSSI(frame []byte) (uint16, bool) {
	if len(frame) < dmr.RSSIFrameLength {
		return 0, false
	}
	return binary.BigEndian.Uint16(frame[dmr.ModemFrameLength:dmr.RSSIFrameLength]), true
}

func printable(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c >= 0x20 && c < 0x7F {
			out = append(out, c)
		}
	}
	return string(out)
}
