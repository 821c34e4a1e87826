package dmr

// Sync patterns occupy burst bytes 13-19. SyncMask clears the outer nibbles
// which belong to the slot type or voice payload.

const (
	syncOffset = 13
	syncLength = 7
)

// SyncKind identifies which sync pattern a burst carries.
type SyncKind int

const (
	SyncNone SyncKind = iota
	SyncBSAudio
	SyncBSData
	SyncMSAudio
	SyncMSData
	SyncDirectSlot1Audio
	SyncDirectSlot1Data
	SyncDirectSlot2Audio
	SyncDirectSlot2Data
)

// SyncMask marks the bits of bytes 13-19 that belong to the sync field.
var SyncMask = [syncLength]byte{0x0F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xF0}

var syncPatterns = []struct {
	kind    SyncKind
	pattern [syncLength]byte
}{
	{SyncBSAudio, [syncLength]byte{0x07, 0x55, 0xFD, 0x7D, 0xF7, 0x5F, 0x70}},
	{SyncBSData, [syncLength]byte{0x0D, 0xFF, 0x57, 0xD7, 0x5D, 0xF5, 0xD0}},
	{SyncMSAudio, [syncLength]byte{0x07, 0xF7, 0xD5, 0xDD, 0x57, 0xDF, 0xD0}},
	{SyncMSData, [syncLength]byte{0x0D, 0x5D, 0x7F, 0x77, 0xFD, 0x75, 0x70}},
	{SyncDirectSlot1Audio, [syncLength]byte{0x05, 0xD5, 0x77, 0xF7, 0x75, 0x7F, 0xF0}},
	{SyncDirectSlot1Data, [syncLength]byte{0x0F, 0x7F, 0xDD, 0x5D, 0xDF, 0xD5, 0x50}},
	{SyncDirectSlot2Audio, [syncLength]byte{0x07, 0xDF, 0xFD, 0x5F, 0x55, 0xD5, 0xF0}},
	{SyncDirectSlot2Data, [syncLength]byte{0x0D, 0x75, 0x57, 0xF5, 0xFF, 0x7F, 0x50}},
}

func (k SyncKind) String() string {
	switch k {
	case SyncBSAudio:
		return "bs audio"
	case SyncBSData:
		return "bs data"
	case SyncMSAudio:
		return "ms audio"
	case SyncMSData:
		return "ms data"
	case SyncDirectSlot1Audio:
		return "ts1 audio"
	case SyncDirectSlot1Data:
		return "ts1 data"
	case SyncDirectSlot2Audio:
		return "ts2 audio"
	case SyncDirectSlot2Data:
		return "ts2 data"
	default:
		return "none"
	}
}

// IsAudio reports whether the pattern marks voice burst A.
func (k SyncKind) IsAudio() bool {
	switch k {
	case SyncBSAudio, SyncMSAudio, SyncDirectSlot1Audio, SyncDirectSlot2Audio:
		return true
	}
	return false
}

// IsData reports whether the pattern marks a data or signalling burst.
func (k SyncKind) IsData() bool {
	switch k {
	case SyncBSData, SyncMSData, SyncDirectSlot1Data, SyncDirectSlot2Data:
		return true
	}
	return false
}

// Pattern returns the 7-byte pattern for k.
func (k SyncKind) Pattern() ([syncLength]byte, bool) {
	for _, p := range syncPatterns {
		if p.kind == k {
			return p.pattern, true
		}
	}
	return [syncLength]byte{}, false
}

// Classify matches the masked sync field of a 33-byte burst against every
// known pattern. Matching is exact; one wrong bit yields SyncNone.
func Classify(burst []byte) SyncKind {
	if len(burst) < FrameLengthBytes {
		return SyncNone
	}

	for _, p := range syncPatterns {
		match := true
		for i := 0; i < syncLength; i++ {
			if burst[syncOffset+i]&SyncMask[i] != p.pattern[i] {
				match = false
				break
			}
		}
		if match {
			return p.kind
		}
	}

	return SyncNone
}

// AddSync writes the pattern for k into burst, preserving the bits outside
// SyncMask.
func AddSync(burst []byte, k SyncKind) {
	p, ok := k.Pattern()
	if !ok {
		return
	}
	for i := 0; i < syncLength; i++ {
		burst[syncOffset+i] = (burst[syncOffset+i] &^ SyncMask[i]) | p[i]
	}
}
