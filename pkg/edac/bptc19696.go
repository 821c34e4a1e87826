package edac

// BPTC(196,96) protects the 96 information bits of DMR data bursts
// (link control headers, terminators, CSBKs, data headers, rate 1/2 data).
//
// The 196 coded bits sit either side of the 48-bit sync/embedded field of a
// 33-byte burst: bits 0-97 occupy bytes 0..12 (top two bits of byte 12) and
// bits 98-195 occupy the low two bits of byte 20 and bytes 21..32.
// The code matrix is 13 rows by 15 columns, Hamming(15,11,3) on the nine data
// rows and Hamming(13,9,3) on every column, interleaved by (a*181)%196.

const (
	bptcTotalBits = 196
	bptcInfoBits  = 96
	bptcCols      = 15
	bptcDataRows  = 9
	bptcMaxIter   = 5

	// BPTCBurstLength is the size of a DMR burst carrying BPTC(196,96).
	BPTCBurstLength = 33
	// BPTCPayloadLength is the decoded payload size.
	BPTCPayloadLength = 12
)

// data bit ranges inside the deinterleaved matrix, inclusive
var bptcDataRanges = [][2]int{
	{4, 11}, {16, 26}, {31, 41}, {46, 56}, {61, 71},
	{76, 86}, {91, 101}, {106, 116}, {121, 131},
}

type bptcMatrix [bptcTotalBits]bool

// DecodeBPTC19696 corrects and extracts the 12-byte payload of a burst.
func DecodeBPTC19696(burst []byte) []byte {
	if len(burst) < BPTCBurstLength {
		panic("edac: bptc19696: burst too short")
	}

	var raw bptcMatrix
	for i := 0; i < 13; i++ {
		ByteToBitsBE(burst[i], raw[i*8:i*8+8])
	}
	var tmp [8]bool
	ByteToBitsBE(burst[20], tmp[:])
	raw[98] = tmp[6]
	raw[99] = tmp[7]
	for i := 0; i < 12; i++ {
		ByteToBitsBE(burst[21+i], raw[100+i*8:108+i*8])
	}

	var m bptcMatrix
	for a := 0; a < bptcTotalBits; a++ {
		m[a] = raw[(a*181)%bptcTotalBits]
	}

	m.correct()

	var info [bptcInfoBits]bool
	pos := 0
	for _, r := range bptcDataRanges {
		for a := r[0]; a <= r[1]; a++ {
			info[pos] = m[a]
			pos++
		}
	}

	out := make([]byte, BPTCPayloadLength)
	for i := range out {
		out[i] = BitsToByteBE(info[i*8 : i*8+8])
	}
	return out
}

// EncodeBPTC19696 encodes a 12-byte payload into the information bit
// positions of burst. Sync and slot type bits are left untouched.
func EncodeBPTC19696(payload, burst []byte) {
	if len(payload) < BPTCPayloadLength {
		panic("edac: bptc19696: payload too short")
	}
	if len(burst) < BPTCBurstLength {
		panic("edac: bptc19696: burst too short")
	}

	var info [bptcInfoBits]bool
	for i := 0; i < BPTCPayloadLength; i++ {
		ByteToBitsBE(payload[i], info[i*8:i*8+8])
	}

	var m bptcMatrix
	pos := 0
	for _, r := range bptcDataRanges {
		for a := r[0]; a <= r[1]; a++ {
			m[a] = info[pos]
			pos++
		}
	}

	for r := 0; r < bptcDataRows; r++ {
		p := r*bptcCols + 1
		Encode15113_2(m[p : p+bptcCols])
	}
	var col [13]bool
	for c := 0; c < bptcCols; c++ {
		m.column(c, col[:])
		Encode1393(col[:])
		m.setColumn(c, col[:])
	}

	var raw bptcMatrix
	for a := 0; a < bptcTotalBits; a++ {
		raw[(a*181)%bptcTotalBits] = m[a]
	}

	for i := 0; i < 12; i++ {
		burst[i] = BitsToByteBE(raw[i*8 : i*8+8])
	}
	b := BitsToByteBE(raw[96:104])
	burst[12] = (burst[12] & 0x3F) | (b & 0xC0)
	burst[20] = (burst[20] & 0xFC) | ((b >> 4) & 0x03)
	for i := 0; i < 12; i++ {
		burst[21+i] = BitsToByteBE(raw[100+i*8 : 108+i*8])
	}
}

func (m *bptcMatrix) column(c int, col []bool) {
	pos := c + 1
	for a := 0; a < 13; a++ {
		if pos < bptcTotalBits {
			col[a] = m[pos]
		} else {
			col[a] = false
		}
		pos += bptcCols
	}
}

func (m *bptcMatrix) setColumn(c int, col []bool) {
	pos := c + 1
	for a := 0; a < 13; a++ {
		if pos < bptcTotalBits {
			m[pos] = col[a]
		}
		pos += bptcCols
	}
}

func (m *bptcMatrix) correct() {
	var col [13]bool
	for iter := 0; iter < bptcMaxIter; iter++ {
		fixing := false

		for c := 0; c < bptcCols; c++ {
			m.column(c, col[:])
			if Decode1393(col[:]) {
				m.setColumn(c, col[:])
				fixing = true
			}
		}

		for r := 0; r < bptcDataRows; r++ {
			p := r*bptcCols + 1
			if Decode15113_2(m[p : p+bptcCols]) {
				fixing = true
			}
		}

		if !fixing {
			return
		}
	}
}
