package dmr

import "github.com/dbehnke/dvmhost-go/pkg/edac"

// Embedded LC is spread over voice bursts B to E, 32 bits per burst, as an
// 8x16 matrix: seven Hamming(16,11,4) rows plus a column parity row. The
// 72 LC bits carry a 5-bit checksum in the last column of rows 2 to 6.

const embeddedBits = 128

type embeddedState int

const (
	embeddedNone embeddedState = iota
	embeddedFirst
	embeddedSecond
	embeddedThird
)

// embedded matrix spans holding LC bits, half-open
var embeddedDataSpans = [][2]int{
	{0, 11}, {16, 27}, {32, 42}, {48, 58}, {64, 74}, {80, 90}, {96, 106},
}

// EmbeddedData assembles or produces the embedded LC carried by a
// superframe.
type EmbeddedData struct {
	raw   [embeddedBits]bool
	state embeddedState
	lc    *LC
}

// Reset discards any partially collected fragments.
func (e *EmbeddedData) Reset() {
	e.raw = [embeddedBits]bool{}
	e.state = embeddedNone
	e.lc = nil
}

// LC returns the last successfully decoded LC, if any.
func (e *EmbeddedData) LC() *LC {
	return e.lc
}

// Add feeds the embedded signalling of one voice burst. It returns the LC
// once the last of four fragments arrives and the matrix validates.
func (e *EmbeddedData) Add(burst []byte, lcss LCSS) (*LC, bool) {
	var bits [40]bool
	for i := 0; i < 5; i++ {
		edac.ByteToBitsBE(burst[14+i], bits[i*8:i*8+8])
	}
	frag := bits[4:36]

	switch {
	case lcss == LCSSFirst:
		copy(e.raw[0:32], frag)
		e.state = embeddedFirst
		return nil, false
	case lcss == LCSSContinuation && e.state == embeddedFirst:
		copy(e.raw[32:64], frag)
		e.state = embeddedSecond
		return nil, false
	case lcss == LCSSContinuation && e.state == embeddedSecond:
		copy(e.raw[64:96], frag)
		e.state = embeddedThird
		return nil, false
	case lcss == LCSSLast && e.state == embeddedThird:
		copy(e.raw[96:128], frag)
		e.state = embeddedNone
		lc, ok := e.decode()
		if ok {
			e.lc = lc
		}
		return lc, ok
	default:
		// out of sequence, start over on the next first fragment
		e.state = embeddedNone
		return nil, false
	}
}

func (e *EmbeddedData) decode() (*LC, bool) {
	var data [embeddedBits]bool
	b := 0
	for a := 0; a < embeddedBits; a++ {
		data[b] = e.raw[a]
		b += 16
		if b > 127 {
			b -= 127
		}
	}

	for a := 0; a < 112; a += 16 {
		if !edac.Decode16114(data[a : a+16]) {
			return nil, false
		}
	}

	for a := 0; a < 16; a++ {
		parity := false
		for r := 0; r < 8; r++ {
			parity = parity != data[a+r*16]
		}
		if parity {
			return nil, false
		}
	}

	var lcBits [72]bool
	n := 0
	for _, s := range embeddedDataSpans {
		n += copy(lcBits[n:], data[s[0]:s[1]])
	}

	var crc uint32
	for i, pos := range []int{42, 58, 74, 90, 106} {
		if data[pos] {
			crc |= 0x10 >> uint(i)
		}
	}
	if !edac.CheckFiveBit(lcBits[:], crc) {
		return nil, false
	}

	var lcBytes [9]byte
	for i := range lcBytes {
		lcBytes[i] = edac.BitsToByteBE(lcBits[i*8 : i*8+8])
	}
	return ParseLC(lcBytes[:]), true
}

// SetLC encodes lc so that Fragment can produce the four embedded blocks.
func (e *EmbeddedData) SetLC(lc *LC) {
	raw := lc.Bytes()
	var lcBits [72]bool
	for i := 0; i < 9; i++ {
		edac.ByteToBitsBE(raw[i], lcBits[i*8:i*8+8])
	}
	crc := edac.EncodeFiveBit(lcBits[:])

	var data [embeddedBits]bool
	for i, pos := range []int{42, 58, 74, 90, 106} {
		data[pos] = crc&(0x10>>uint(i)) != 0
	}
	n := 0
	for _, s := range embeddedDataSpans {
		n += copy(data[s[0]:s[1]], lcBits[n:])
	}

	for a := 0; a < 112; a += 16 {
		edac.Encode16114(data[a : a+16])
	}
	for a := 0; a < 16; a++ {
		parity := false
		for r := 0; r < 7; r++ {
			parity = parity != data[a+r*16]
		}
		data[a+112] = parity
	}

	b := 0
	for a := 0; a < embeddedBits; a++ {
		e.raw[a] = data[b]
		b += 16
		if b > 127 {
			b -= 127
		}
	}
	e.lc = lc
	e.state = embeddedNone
}

// Fragment writes embedded block n (1 to 4, for bursts B to E) into burst
// and returns the LCSS to signal in its EMB.
func (e *EmbeddedData) Fragment(burst []byte, n int) LCSS {
	if n < 1 || n > 4 {
		return LCSSSingle
	}

	var bits [40]bool
	for i := 0; i < 5; i++ {
		edac.ByteToBitsBE(burst[14+i], bits[i*8:i*8+8])
	}
	copy(bits[4:36], e.raw[(n-1)*32:n*32])
	for i := 0; i < 5; i++ {
		burst[14+i] = edac.BitsToByteBE(bits[i*8 : i*8+8])
	}

	switch n {
	case 1:
		return LCSSFirst
	case 4:
		return LCSSLast
	default:
		return LCSSContinuation
	}
}
