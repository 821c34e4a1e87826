package modem

import "fmt"

// MMDVM serial protocol.
const (
	frameStart = 0xE0

	cmdGetVersion = 0x00
	cmdGetStatus  = 0x01
	cmdSetConfig  = 0x02
	cmdSetMode    = 0x03

	cmdDMRData1 = 0x18
	cmdDMRLost1 = 0x19
	cmdDMRData2 = 0x1A
	cmdDMRLost2 = 0x1B
	cmdDMRStart = 0x1D

	respACK = 0x70
	respNAK = 0x7F

	respDebug1    = 0xF1
	respDebug2    = 0xF2
	respDebug3    = 0xF3
	respDebug4    = 0xF4
	respDebug5    = 0xF5
	respDebugDump = 0xFA

	modeIdle = 0
	modeDMR  = 2

	capDMR = 0x02

	maxMessageLength = 255
	headerLength     = 3
)

// message is one decoded modem frame: its command byte and the bytes after.
type message struct {
	cmd     byte
	payload []byte
}

func (m message) String() string {
	return fmt.Sprintf("cmd=%#02x len=%d", m.cmd, len(m.payload))
}

// encodeMessage frames payload behind the start byte, length and command.
func encodeMessage(cmd byte, payload []byte) []byte {
	n := headerLength + len(payload)
	if n > maxMessageLength {
		panic(fmt.Sprintf("modem: message of %d bytes", n))
	}
	b := make([]byte, 0, n)
	b = append(b, frameStart, byte(n), cmd)
	return append(b, payload...)
}

type parseState int

const (
	stateStart parseState = iota
	stateLength
	stateBody
)

// parser reassembles messages from the serial byte stream. Bytes outside a
// frame are skipped until the next start byte.
type parser struct {
	state  parseState
	length int
	buf    []byte
}

// feed consumes b and returns every message it completes.
func (p *parser) feed(b []byte, out []message) []message {
	for _, c := range b {
		switch p.state {
		case stateStart:
			if c == frameStart {
				p.buf = append(p.buf[:0], c)
				p.state = stateLength
			}
		case stateLength:
			if int(c) < headerLength {
				p.state = stateStart
				continue
			}
			p.length = int(c)
			p.buf = append(p.buf, c)
			p.state = stateBody
		case stateBody:
			p.buf = append(p.buf, c)
			if len(p.buf) == p.length {
				payload := make([]byte, p.length-headerLength)
				copy(payload, p.buf[headerLength:])
				out = append(out, message{cmd: p.buf[2], payload: payload})
				p.state = stateStart
			}
		}
	}
	return out
}
