package dmr

// Air interface constants.
// Values follow ETSI TS 102 361-1 and the MMDVM modem protocol.

const (
	FrameLengthBits  = 264
	FrameLengthBytes = 33

	// ModemFrameLength is a burst prefixed by the tag and control bytes.
	ModemFrameLength = FrameLengthBytes + 2
	// RSSIFrameLength is a modem frame followed by a big-endian raw RSSI value.
	RSSIFrameLength = ModemFrameLength + 2

	LCHeaderLength = 12

	// SlotTimeMs is the duration of one TDMA burst.
	SlotTimeMs = 60
	// MaxPDUBlocks bounds a data call.
	MaxPDUBlocks = 32
)

// Modem frame tags (first byte of a modem frame).
const (
	TagHeader byte = 0x00
	TagData   byte = 0x01
	TagLost   byte = 0x02
	TagEOT    byte = 0x03
)

// Control byte flags (second byte of a modem frame).
const (
	ControlIdleRX    byte = 0x80
	ControlSyncData  byte = 0x40
	ControlSyncVoice byte = 0x20
	ControlSeqMask   byte = 0x0F
)

// DataType is the 4-bit slot type data type. The two values above 0x0F never
// appear on air and label voice bursts internally.
type DataType byte

const (
	DTVoicePIHeader    DataType = 0x00
	DTVoiceLCHeader    DataType = 0x01
	DTTerminatorWithLC DataType = 0x02
	DTCSBK             DataType = 0x03
	DTDataHeader       DataType = 0x06
	DTRate12Data       DataType = 0x07
	DTRate34Data       DataType = 0x08
	DTIdle             DataType = 0x09
	DTRate1Data        DataType = 0x0A

	DTVoiceSync DataType = 0xF0
	DTVoice     DataType = 0xF1
)

func (dt DataType) String() string {
	switch dt {
	case DTVoicePIHeader:
		return "pi header"
	case DTVoiceLCHeader:
		return "voice lc header"
	case DTTerminatorWithLC:
		return "terminator with lc"
	case DTCSBK:
		return "csbk"
	case DTDataHeader:
		return "data header"
	case DTRate12Data:
		return "rate 1/2 data"
	case DTRate34Data:
		return "rate 3/4 data"
	case DTIdle:
		return "idle"
	case DTRate1Data:
		return "rate 1 data"
	case DTVoiceSync:
		return "voice sync"
	case DTVoice:
		return "voice"
	default:
		return "unknown"
	}
}

// FLCO is the full link control opcode.
type FLCO byte

const (
	FLCOGroup             FLCO = 0x00
	FLCOPrivate           FLCO = 0x03
	FLCOTalkerAliasHeader FLCO = 0x04
	FLCOTalkerAliasBlock1 FLCO = 0x05
	FLCOTalkerAliasBlock2 FLCO = 0x06
	FLCOTalkerAliasBlock3 FLCO = 0x07
	FLCOGPSInfo           FLCO = 0x08
)

// CSBKO is the control signalling block opcode.
type CSBKO byte

const (
	CSBKONone     CSBKO = 0x00
	CSBKOUUVReq   CSBKO = 0x04
	CSBKOUUAnsRsp CSBKO = 0x05
	CSBKOCTCSBK   CSBKO = 0x07
	CSBKOCallAlrt CSBKO = 0x1F
	CSBKOAckRsp   CSBKO = 0x20
	CSBKOExtFnct  CSBKO = 0x24
	CSBKONackRsp  CSBKO = 0x26
	CSBKOBSDwnAct CSBKO = 0x38
	CSBKOPreCSBK  CSBKO = 0x3D
)

// Data packet formats carried in a data header.
const (
	DPFUDT             byte = 0x00
	DPFResponse        byte = 0x01
	DPFUnconfirmedData byte = 0x02
	DPFConfirmedData   byte = 0x03
	DPFDefinedShort    byte = 0x0D
	DPFDefinedRaw      byte = 0x0E
	DPFProprietary     byte = 0x0F
)

// Feature set IDs.
const (
	FIDETSI byte = 0x00
	FIDDMRA byte = 0x10
)

// CRC masks XORed over the checksum of each signalling type.
var (
	VoiceLCHeaderCRCMask    = [3]byte{0x96, 0x96, 0x96}
	TerminatorWithLCCRCMask = [3]byte{0x99, 0x99, 0x99}
	PIHeaderCRCMask         = [2]byte{0x69, 0x69}
	DataHeaderCRCMask       = [2]byte{0xCC, 0xCC}
	CSBKCRCMask             = [2]byte{0xA5, 0xA5}
)

// CRC-9 masks for confirmed data blocks.
const (
	Rate12CRC9Mask uint16 = 0x0F0
	Rate34CRC9Mask uint16 = 0x1FF
	Rate1CRC9Mask  uint16 = 0x10F
)

// IdleBurst is the PR FILL idle message with BS data sync.
var IdleBurst = [FrameLengthBytes]byte{
	0x53, 0xC2, 0x5E, 0xAB, 0xA8, 0x67, 0x1D, 0xC7, 0x38, 0x3B, 0xD9,
	0x36, 0x00, 0x0D, 0xFF, 0x57, 0xD7, 0x5D, 0xF5, 0xD0, 0x03, 0xF6,
	0xE4, 0x65, 0x17, 0x1B, 0x48, 0xCA, 0x6D, 0x4F, 0xC6, 0x10, 0xB4,
}

// SilenceBurst carries three frames of AMBE silence.
var SilenceBurst = [FrameLengthBytes]byte{
	0xB9, 0xE8, 0x81, 0x52, 0x61, 0x73, 0x00, 0x2A, 0x6B, 0xB9, 0xE8,
	0x81, 0x52, 0x60, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x73, 0x00,
	0x2A, 0x6B, 0xB9, 0xE8, 0x81, 0x52, 0x61, 0x73, 0x00, 0x2A, 0x6B,
}
