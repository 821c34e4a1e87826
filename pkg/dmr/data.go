package dmr

import (
	"errors"
	"fmt"

	"github.com/dbehnke/dvmhost-go/pkg/edac"
)

var (
	// ErrBlockChecksum is returned when a confirmed block fails its CRC-9.
	ErrBlockChecksum = errors.New("dmr: data block crc9 mismatch")
	// ErrPDUChecksum is returned when a reassembled PDU fails its CRC-32.
	ErrPDUChecksum = errors.New("dmr: pdu crc32 mismatch")
)

// DataHeader precedes the blocks of a packet data call.
type DataHeader struct {
	Group           bool
	ResponseRequest bool
	DPF             byte
	SAP             byte
	DstID           uint32
	SrcID           uint32
	Blocks          int
	FullMessage     bool
	Sync            bool
	N               byte
	FSN             byte
}

// Confirmed reports whether the blocks carry a serial number and CRC-9.
func (h *DataHeader) Confirmed() bool {
	return h.DPF == DPFConfirmedData
}

// DecodeDataHeader extracts a data header from a data burst.
func DecodeDataHeader(burst []byte) (*DataHeader, error) {
	b := edac.DecodeBPTC19696(burst)
	unmaskCRC16(b, DataHeaderCRCMask)
	if !edac.CheckCCITT162(b) {
		return nil, ErrHeaderChecksum
	}

	h := &DataHeader{
		Group:           b[0]&0x80 != 0,
		ResponseRequest: b[0]&0x40 != 0,
		DPF:             b[0] & 0x0F,
		SAP:             (b[1] >> 4) & 0x0F,
		DstID:           uint32(b[2])<<16 | uint32(b[3])<<8 | uint32(b[4]),
		SrcID:           uint32(b[5])<<16 | uint32(b[6])<<8 | uint32(b[7]),
	}

	switch h.DPF {
	case DPFUDT:
		h.Blocks = int(b[8]&0x03) + 1
	case DPFDefinedRaw, DPFDefinedShort:
		h.Blocks = int(b[0]&0x30) + int(b[1]&0x0F)
		h.FullMessage = b[8]&0x01 != 0
	case DPFProprietary:
		h.Blocks = 0
	default:
		h.FullMessage = b[8]&0x80 != 0
		h.Blocks = int(b[8] & 0x7F)
		h.Sync = b[9]&0x80 != 0
		h.N = (b[9] >> 4) & 0x07
		h.FSN = b[9] & 0x0F
	}

	if h.Blocks > MaxPDUBlocks {
		return nil, fmt.Errorf("dmr: data header announces %d blocks", h.Blocks)
	}
	return h, nil
}

// Encode writes the header with its masked CRC into burst. Only the block
// layout used by unconfirmed, confirmed and response packets is produced.
func (h *DataHeader) Encode(burst []byte) {
	var b [12]byte
	b[0] = h.DPF & 0x0F
	if h.Group {
		b[0] |= 0x80
	}
	if h.ResponseRequest {
		b[0] |= 0x40
	}
	b[1] = (h.SAP << 4) & 0xF0
	b[2] = byte(h.DstID >> 16)
	b[3] = byte(h.DstID >> 8)
	b[4] = byte(h.DstID)
	b[5] = byte(h.SrcID >> 16)
	b[6] = byte(h.SrcID >> 8)
	b[7] = byte(h.SrcID)
	b[8] = byte(h.Blocks) & 0x7F
	if h.FullMessage {
		b[8] |= 0x80
	}
	if h.Sync {
		b[9] |= 0x80
	}
	b[9] |= (h.N & 0x07) << 4
	b[9] |= h.FSN & 0x0F

	edac.AddCCITT162(b[:])
	unmaskCRC16(b[:], DataHeaderCRCMask)
	edac.EncodeBPTC19696(b[:], burst)
}

// DecodePIHeader checks the privacy indicator header and returns its
// 10-byte payload.
func DecodePIHeader(burst []byte) ([]byte, error) {
	b := edac.DecodeBPTC19696(burst)
	unmaskCRC16(b, PIHeaderCRCMask)
	if !edac.CheckCCITT161(b) {
		return nil, ErrHeaderChecksum
	}
	return b[:10], nil
}

// EncodePIHeader writes a 10-byte PI payload with its masked CRC.
func EncodePIHeader(payload []byte, burst []byte) {
	var b [12]byte
	copy(b[:10], payload)
	edac.AddCCITT161(b[:])
	unmaskCRC16(b[:], PIHeaderCRCMask)
	edac.EncodeBPTC19696(b[:], burst)
}

// DataBlock is one rate 1/2 block of a packet data call.
type DataBlock struct {
	Serial byte
	Data   []byte
}

// DecodeRate12Block extracts a rate 1/2 block. Confirmed blocks carry a
// 7-bit serial number and a masked CRC-9 over the payload and serial.
func DecodeRate12Block(burst []byte, confirmed bool) (*DataBlock, error) {
	b := edac.DecodeBPTC19696(burst)
	if !confirmed {
		return &DataBlock{Data: b}, nil
	}

	serial := b[0] >> 1
	crc := uint16(b[0]&0x01)<<8 | uint16(b[1])
	if blockCRC9(b[2:], serial, Rate12CRC9Mask) != crc {
		return nil, ErrBlockChecksum
	}
	return &DataBlock{Serial: serial, Data: b[2:]}, nil
}

// EncodeRate12Block writes a rate 1/2 block. Confirmed payloads are 10 bytes,
// unconfirmed 12.
func EncodeRate12Block(blk *DataBlock, confirmed bool, burst []byte) {
	var b [12]byte
	if confirmed {
		copy(b[2:], blk.Data)
		crc := blockCRC9(b[2:], blk.Serial, Rate12CRC9Mask)
		b[0] = (blk.Serial<<1)&0xFE | byte(crc>>8)&0x01
		b[1] = byte(crc)
	} else {
		copy(b[:], blk.Data)
	}
	edac.EncodeBPTC19696(b[:], burst)
}

func blockCRC9(data []byte, serial byte, mask uint16) uint16 {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, serial&0x7F)
	return (edac.CRC9(buf) ^ mask) & 0x1FF
}

// CheckPDU validates the CRC-32 trailing a reassembled packet.
func CheckPDU(pdu []byte) error {
	if len(pdu) <= 4 {
		return fmt.Errorf("dmr: pdu of %d bytes has no crc", len(pdu))
	}
	if !edac.CheckCRC32(pdu) {
		return ErrPDUChecksum
	}
	return nil
}
