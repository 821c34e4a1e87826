package network

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// Packet type identifiers (4-7 byte ASCII strings)
const (
	PacketTypeDMRD    = "DMRD"
	PacketTypeRPTL    = "RPTL"
	PacketTypeRPTK    = "RPTK"
	PacketTypeRPTC    = "RPTC"
	PacketTypeRPTCL   = "RPTCL"
	PacketTypeRPTACK  = "RPTACK"
	PacketTypeRPTPING = "RPTPING"
	PacketTypeMSTPONG = "MSTPONG"
	PacketTypeMSTNAK  = "MSTNAK"
	PacketTypeMSTCL   = "MSTCL"
)

// Packet size constants (in bytes)
const (
	DMRDPacketSize         = 53  // DMRD without link quality
	DMRDPacketSizeExtended = 55  // DMRD + BER + RSSI
	RPTLPacketSize         = 8   // RPTL + repeater id
	RPTKPacketSize         = 40  // RPTK + repeater id + sha256
	RPTCPacketSize         = 302 // configuration
	RPTCLPacketSize        = 9   // RPTCL + repeater id
	RPTACKPacketSize       = 10  // RPTACK + repeater id or salt
	RPTPINGPacketSize      = 11  // RPTPING + repeater id
	SaltLength             = 4
	PayloadLength          = 33
)

// Slot byte (byte 15) bit masks
const (
	slotTimeslotMask  = 0x80 // TS2 when set
	slotCallTypeMask  = 0x40 // unit to unit when set
	slotFrameTypeMask = 0x30
	slotDataTypeMask  = 0x0F // data type, or voice sequence
)

// DMRD packet field offsets
const (
	offsetSeq      = 4
	offsetSrcID    = 5
	offsetDstID    = 8
	offsetRptID    = 11
	offsetSlot     = 15
	offsetStreamID = 16
	offsetPayload  = 20
	offsetBER      = 53
	offsetRSSI     = 54
)

// FrameType is carried in bits 4-5 of the slot byte.
type FrameType byte

const (
	// FrameVoice is voice burst B to F; the data type nibble is the burst
	// index 1 to 5.
	FrameVoice FrameType = 0x00
	// FrameVoiceSync is voice burst A.
	FrameVoiceSync FrameType = 0x01
	// FrameDataSync is any data sync burst; the data type nibble is the slot
	// type data type.
	FrameDataSync FrameType = 0x02
)

func (f FrameType) String() string {
	switch f {
	case FrameVoice:
		return "voice"
	case FrameVoiceSync:
		return "voice sync"
	case FrameDataSync:
		return "data sync"
	default:
		return fmt.Sprintf("frame type %d", byte(f))
	}
}

// Data is one burst exchanged with the master.
type Data struct {
	Seq        byte
	SrcID      uint32
	DstID      uint32
	RepeaterID uint32
	Slot       uint8 // 1 or 2
	Group      bool
	FrameType  FrameType
	DataType   byte
	StreamID   uint32
	Payload    [PayloadLength]byte
	BER        byte
	RSSI       byte // -dBm, zero when unknown
}

// ParseDMRD parses a DMRD datagram. Both the plain and the link quality
// variants are accepted.
func ParseDMRD(b []byte) (*Data, error) {
	if len(b) != DMRDPacketSize && len(b) != DMRDPacketSizeExtended {
		return nil, fmt.Errorf("invalid DMRD packet size: %d (expected %d or %d)",
			len(b), DMRDPacketSize, DMRDPacketSizeExtended)
	}
	if string(b[0:4]) != PacketTypeDMRD {
		return nil, fmt.Errorf("invalid DMRD signature: %q", string(b[0:4]))
	}

	d := &Data{
		Seq:        b[offsetSeq],
		SrcID:      uint24(b[offsetSrcID:]),
		DstID:      uint24(b[offsetDstID:]),
		RepeaterID: binary.BigEndian.Uint32(b[offsetRptID:]),
		Slot:       1,
		Group:      b[offsetSlot]&slotCallTypeMask == 0,
		FrameType:  FrameType((b[offsetSlot] & slotFrameTypeMask) >> 4),
		DataType:   b[offsetSlot] & slotDataTypeMask,
		StreamID:   binary.BigEndian.Uint32(b[offsetStreamID:]),
	}
	if b[offsetSlot]&slotTimeslotMask != 0 {
		d.Slot = 2
	}
	copy(d.Payload[:], b[offsetPayload:offsetPayload+PayloadLength])

	if len(b) == DMRDPacketSizeExtended {
		d.BER = b[offsetBER]
		d.RSSI = b[offsetRSSI]
	}
	return d, nil
}

// Encode returns the extended DMRD datagram.
func (d *Data) Encode() []byte {
	b := make([]byte, DMRDPacketSizeExtended)
	copy(b[0:4], PacketTypeDMRD)
	b[offsetSeq] = d.Seq
	putUint24(b[offsetSrcID:], d.SrcID)
	putUint24(b[offsetDstID:], d.DstID)
	binary.BigEndian.PutUint32(b[offsetRptID:], d.RepeaterID)

	var slot byte
	if d.Slot == 2 {
		slot |= slotTimeslotMask
	}
	if !d.Group {
		slot |= slotCallTypeMask
	}
	slot |= (byte(d.FrameType) << 4) & slotFrameTypeMask
	slot |= d.DataType & slotDataTypeMask
	b[offsetSlot] = slot

	binary.BigEndian.PutUint32(b[offsetStreamID:], d.StreamID)
	copy(b[offsetPayload:], d.Payload[:])
	b[offsetBER] = d.BER
	b[offsetRSSI] = d.RSSI
	return b
}

// IsVoice reports whether the burst belongs to a voice superframe.
func (d *Data) IsVoice() bool {
	return d.FrameType == FrameVoice || d.FrameType == FrameVoiceSync
}

func uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// Login sequence packets sent by a repeater.

func encodeRPTL(repeaterID uint32) []byte {
	b := make([]byte, RPTLPacketSize)
	copy(b[0:4], PacketTypeRPTL)
	binary.BigEndian.PutUint32(b[4:8], repeaterID)
	return b
}

// encodeRPTK answers the login challenge with sha256(salt + password).
func encodeRPTK(repeaterID uint32, salt []byte, password string) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))

	b := make([]byte, RPTKPacketSize)
	copy(b[0:4], PacketTypeRPTK)
	binary.BigEndian.PutUint32(b[4:8], repeaterID)
	copy(b[8:], h.Sum(nil))
	return b
}

// RepeaterInfo is the configuration block sent after login.
type RepeaterInfo struct {
	Callsign    string
	RXFreq      uint32
	TXFreq      uint32
	TXPower     uint8
	ColorCode   uint8
	Latitude    float64
	Longitude   float64
	Height      int
	Location    string
	Description string
	Slots       string
	URL         string
	SoftwareID  string
	PackageID   string
}

func encodeRPTC(repeaterID uint32, info RepeaterInfo) []byte {
	b := make([]byte, RPTCPacketSize)
	copy(b[0:4], PacketTypeRPTC)
	binary.BigEndian.PutUint32(b[4:8], repeaterID)

	// fixed width, space padded
	field := func(dst []byte, src string) {
		for i := range dst {
			if i < len(src) {
				dst[i] = src[i]
			} else {
				dst[i] = ' '
			}
		}
	}

	slots := info.Slots
	if slots == "" {
		slots = "4"
	}
	field(b[8:16], info.Callsign)
	field(b[16:25], fmt.Sprintf("%09d", info.RXFreq))
	field(b[25:34], fmt.Sprintf("%09d", info.TXFreq))
	field(b[34:36], fmt.Sprintf("%02d", info.TXPower))
	field(b[36:38], fmt.Sprintf("%02d", info.ColorCode))
	field(b[38:46], fmt.Sprintf("%08.4f", info.Latitude))
	field(b[46:55], fmt.Sprintf("%09.4f", info.Longitude))
	field(b[55:58], fmt.Sprintf("%03d", info.Height))
	field(b[58:78], info.Location)
	field(b[78:97], info.Description)
	field(b[97:98], slots)
	field(b[98:222], info.URL)
	field(b[222:262], info.SoftwareID)
	field(b[262:302], info.PackageID)
	return b
}

// parseRPTC recovers the text fields of a configuration block.
func parseRPTC(b []byte) (uint32, RepeaterInfo, error) {
	if len(b) != RPTCPacketSize || string(b[0:4]) != PacketTypeRPTC {
		return 0, RepeaterInfo{}, fmt.Errorf("invalid RPTC packet")
	}
	text := func(lo, hi int) string { return strings.TrimSpace(string(b[lo:hi])) }
	info := RepeaterInfo{
		Callsign:    text(8, 16),
		Location:    text(58, 78),
		Description: text(78, 97),
		Slots:       text(97, 98),
		URL:         text(98, 222),
		SoftwareID:  text(222, 262),
		PackageID:   text(262, 302),
	}
	fmt.Sscanf(text(16, 25), "%d", &info.RXFreq)
	fmt.Sscanf(text(25, 34), "%d", &info.TXFreq)
	fmt.Sscanf(text(36, 38), "%d", &info.ColorCode)
	return binary.BigEndian.Uint32(b[4:8]), info, nil
}

func encodeRPTPING(repeaterID uint32) []byte {
	b := make([]byte, RPTPINGPacketSize)
	copy(b[0:7], PacketTypeRPTPING)
	binary.BigEndian.PutUint32(b[7:11], repeaterID)
	return b
}

func encodeRPTCL(repeaterID uint32) []byte {
	b := make([]byte, RPTCLPacketSize)
	copy(b[0:5], PacketTypeRPTCL)
	binary.BigEndian.PutUint32(b[5:9], repeaterID)
	return b
}

func hasPrefix(b []byte, sig string) bool {
	return len(b) >= len(sig) && string(b[:len(sig)]) == sig
}
