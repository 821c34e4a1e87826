package dmr

// Burst builders used to regenerate frames for the air and the network.

// NewLCBurst returns a voice LC header or terminator burst.
func NewLCBurst(lc *LC, dt DataType, colorCode uint8, sync SyncKind) ([]byte, error) {
	burst := make([]byte, FrameLengthBytes)
	if err := EncodeFullLC(lc, dt, burst); err != nil {
		return nil, err
	}
	finishDataBurst(burst, dt, colorCode, sync)
	return burst, nil
}

// NewCSBKBurst returns a CSBK burst.
func NewCSBKBurst(c *CSBK, colorCode uint8, sync SyncKind) []byte {
	burst := make([]byte, FrameLengthBytes)
	c.Encode(burst)
	finishDataBurst(burst, DTCSBK, colorCode, sync)
	return burst
}

// NewDataHeaderBurst returns a data header burst.
func NewDataHeaderBurst(h *DataHeader, colorCode uint8, sync SyncKind) []byte {
	burst := make([]byte, FrameLengthBytes)
	h.Encode(burst)
	finishDataBurst(burst, DTDataHeader, colorCode, sync)
	return burst
}

// NewRate12Burst returns a rate 1/2 data block burst.
func NewRate12Burst(blk *DataBlock, confirmed bool, colorCode uint8, sync SyncKind) []byte {
	burst := make([]byte, FrameLengthBytes)
	EncodeRate12Block(blk, confirmed, burst)
	finishDataBurst(burst, DTRate12Data, colorCode, sync)
	return burst
}

// NewVoiceSyncBurst returns voice burst A carrying silence.
func NewVoiceSyncBurst(sync SyncKind) []byte {
	burst := make([]byte, FrameLengthBytes)
	copy(burst, SilenceBurst[:])
	AddSync(burst, sync)
	return burst
}

// NewVoiceBurst returns voice burst B to F (n is 1 to 5) carrying silence.
// Bursts B to E carry fragment n of emb's LC; F carries a null fragment.
func NewVoiceBurst(n int, colorCode uint8, emb *EmbeddedData) []byte {
	burst := make([]byte, FrameLengthBytes)
	copy(burst, SilenceBurst[:])

	lcss := LCSSSingle
	if n >= 1 && n <= 4 && emb != nil {
		lcss = emb.Fragment(burst, n)
	} else {
		burst[14] &= 0xF0
		burst[15], burst[16], burst[17] = 0, 0, 0
		burst[18] &= 0x0F
	}
	EMB{ColorCode: colorCode, LCSS: lcss}.Encode(burst)
	return burst
}

// Regenerate rewrites the slot type and sync of a data burst in place.
func Regenerate(burst []byte, dt DataType, colorCode uint8, sync SyncKind) {
	finishDataBurst(burst, dt, colorCode, sync)
}

func finishDataBurst(burst []byte, dt DataType, colorCode uint8, sync SyncKind) {
	SlotType{ColorCode: colorCode, DataType: dt}.Encode(burst)
	AddSync(burst, sync)
}

// ModemFrame prefixes a burst with the modem tag and control bytes.
func ModemFrame(tag, control byte, burst []byte) []byte {
	frame := make([]byte, ModemFrameLength)
	frame[0] = tag
	frame[1] = control
	copy(frame[2:], burst)
	return frame
}
