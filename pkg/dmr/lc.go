package dmr

import (
	"errors"
	"fmt"

	"github.com/dbehnke/dvmhost-go/pkg/edac"
)

// ErrLCChecksum is returned when the RS(12,9) parity of a full LC is wrong.
var ErrLCChecksum = errors.New("dmr: link control parity mismatch")

// LC is a decoded full link control word (9 bytes on air).
//
//	byte 0   PF | R | FLCO
//	byte 1   feature set id
//	byte 2   service options
//	byte 3-5 destination id
//	byte 6-8 source id
type LC struct {
	Protect bool
	FLCO    FLCO
	FID     byte
	Options byte
	DstID   uint32
	SrcID   uint32
}

// NewGroupLC returns a group voice LC.
func NewGroupLC(srcID, dstID uint32) *LC {
	return &LC{FLCO: FLCOGroup, SrcID: srcID, DstID: dstID}
}

// NewPrivateLC returns a unit to unit voice LC.
func NewPrivateLC(srcID, dstID uint32) *LC {
	return &LC{FLCO: FLCOPrivate, SrcID: srcID, DstID: dstID}
}

// IsGroup reports whether the LC addresses a talkgroup.
func (lc *LC) IsGroup() bool {
	return lc.FLCO != FLCOPrivate
}

func (lc *LC) String() string {
	kind := "group"
	if !lc.IsGroup() {
		kind = "private"
	}
	return fmt.Sprintf("%s %d -> %d", kind, lc.SrcID, lc.DstID)
}

// ParseLC decodes the nine LC bytes at the start of b.
func ParseLC(b []byte) *LC {
	_ = b[8]
	return &LC{
		Protect: b[0]&0x80 != 0,
		FLCO:    FLCO(b[0] & 0x3F),
		FID:     b[1],
		Options: b[2],
		DstID:   uint32(b[3])<<16 | uint32(b[4])<<8 | uint32(b[5]),
		SrcID:   uint32(b[6])<<16 | uint32(b[7])<<8 | uint32(b[8]),
	}
}

// Bytes returns the nine byte wire form.
func (lc *LC) Bytes() [9]byte {
	var b [9]byte
	b[0] = byte(lc.FLCO) & 0x3F
	if lc.Protect {
		b[0] |= 0x80
	}
	b[1] = lc.FID
	b[2] = lc.Options
	b[3] = byte(lc.DstID >> 16)
	b[4] = byte(lc.DstID >> 8)
	b[5] = byte(lc.DstID)
	b[6] = byte(lc.SrcID >> 16)
	b[7] = byte(lc.SrcID >> 8)
	b[8] = byte(lc.SrcID)
	return b
}

func fullLCMask(dt DataType) ([3]byte, error) {
	switch dt {
	case DTVoiceLCHeader:
		return VoiceLCHeaderCRCMask, nil
	case DTTerminatorWithLC:
		return TerminatorWithLCCRCMask, nil
	default:
		return [3]byte{}, fmt.Errorf("dmr: %s does not carry a full LC", dt)
	}
}

// DecodeFullLC extracts the LC from a voice LC header or terminator burst.
func DecodeFullLC(burst []byte, dt DataType) (*LC, error) {
	mask, err := fullLCMask(dt)
	if err != nil {
		return nil, err
	}

	b := edac.DecodeBPTC19696(burst)
	b[9] ^= mask[0]
	b[10] ^= mask[1]
	b[11] ^= mask[2]

	if !edac.CheckRS129(b) {
		return nil, ErrLCChecksum
	}
	return ParseLC(b), nil
}

// EncodeFullLC writes lc with RS(12,9) parity and BPTC(196,96) into the
// information bits of burst.
func EncodeFullLC(lc *LC, dt DataType, burst []byte) error {
	mask, err := fullLCMask(dt)
	if err != nil {
		return err
	}

	var b [LCHeaderLength]byte
	raw := lc.Bytes()
	copy(b[:], raw[:])
	edac.EncodeRS129(b[:])
	b[9] ^= mask[0]
	b[10] ^= mask[1]
	b[11] ^= mask[2]

	edac.EncodeBPTC19696(b[:], burst)
	return nil
}
