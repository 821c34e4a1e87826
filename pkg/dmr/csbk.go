package dmr

import (
	"errors"

	"github.com/dbehnke/dvmhost-go/pkg/edac"
)

var (
	// ErrCSBKChecksum is returned when a CSBK fails its CRC.
	ErrCSBKChecksum = errors.New("dmr: csbk crc mismatch")
	// ErrHeaderChecksum is returned when a data or PI header fails its CRC.
	ErrHeaderChecksum = errors.New("dmr: header crc mismatch")
)

// CSBK is a control signalling block. Only the addressing common to the
// unit to unit opcodes is decoded; the rest stays in Data.
type CSBK struct {
	LastBlock bool
	Protect   bool
	CSBKO     CSBKO
	FID       byte
	Data      [8]byte
	DstID     uint32
	SrcID     uint32
}

func unmaskCRC16(b []byte, mask [2]byte) {
	b[10] ^= mask[0]
	b[11] ^= mask[1]
}

// DecodeCSBK extracts a CSBK from a data burst.
func DecodeCSBK(burst []byte) (*CSBK, error) {
	b := edac.DecodeBPTC19696(burst)
	unmaskCRC16(b, CSBKCRCMask)
	if !edac.CheckCCITT162(b) {
		return nil, ErrCSBKChecksum
	}

	c := &CSBK{
		LastBlock: b[0]&0x80 != 0,
		Protect:   b[0]&0x40 != 0,
		CSBKO:     CSBKO(b[0] & 0x3F),
		FID:       b[1],
		DstID:     uint32(b[4])<<16 | uint32(b[5])<<8 | uint32(b[6]),
		SrcID:     uint32(b[7])<<16 | uint32(b[8])<<8 | uint32(b[9]),
	}
	copy(c.Data[:], b[2:10])
	return c, nil
}

// Encode writes the CSBK with its masked CRC into burst.
func (c *CSBK) Encode(burst []byte) {
	var b [12]byte
	b[0] = byte(c.CSBKO) & 0x3F
	if c.LastBlock {
		b[0] |= 0x80
	}
	if c.Protect {
		b[0] |= 0x40
	}
	b[1] = c.FID
	copy(b[2:10], c.Data[:])
	b[4] = byte(c.DstID >> 16)
	b[5] = byte(c.DstID >> 8)
	b[6] = byte(c.DstID)
	b[7] = byte(c.SrcID >> 16)
	b[8] = byte(c.SrcID >> 8)
	b[9] = byte(c.SrcID)

	edac.AddCCITT162(b[:])
	unmaskCRC16(b[:], CSBKCRCMask)
	edac.EncodeBPTC19696(b[:], burst)
}
