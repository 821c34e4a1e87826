package dmr

import "github.com/dbehnke/dvmhost-go/pkg/edac"

// LCSS marks where an embedded signalling fragment sits in its sequence.
type LCSS uint8

const (
	LCSSSingle       LCSS = 0
	LCSSFirst        LCSS = 1
	LCSSLast         LCSS = 2
	LCSSContinuation LCSS = 3
)

// EMB is the QR(16,7,6) protected header of voice bursts B to F.
type EMB struct {
	ColorCode uint8
	PI        bool
	LCSS      LCSS
}

// DecodeEMB extracts and corrects the EMB of a voice burst.
func DecodeEMB(burst []byte) (EMB, bool) {
	var emb [2]byte
	emb[0] = (burst[13]<<4)&0xF0 | (burst[14]>>4)&0x0F
	emb[1] = (burst[18]<<4)&0xF0 | (burst[19]>>4)&0x0F

	code, ok := edac.DecodeQR1676(emb[:])
	return EMB{
		ColorCode: (code >> 4) & 0x0F,
		PI:        code&0x08 != 0,
		LCSS:      LCSS((code >> 1) & 0x03),
	}, ok
}

// Encode writes the EMB into the outer nibbles of the embedded field.
func (e EMB) Encode(burst []byte) {
	var emb [2]byte
	emb[0] = (e.ColorCode << 4) & 0xF0
	if e.PI {
		emb[0] |= 0x08
	}
	emb[0] |= (byte(e.LCSS) << 1) & 0x06
	edac.EncodeQR1676(emb[:])

	burst[13] = (burst[13] & 0xF0) | (emb[0]>>4)&0x0F
	burst[14] = (burst[14] & 0x0F) | (emb[0]<<4)&0xF0
	burst[18] = (burst[18] & 0xF0) | (emb[1]>>4)&0x0F
	burst[19] = (burst[19] & 0x0F) | (emb[1]<<4)&0xF0
}
