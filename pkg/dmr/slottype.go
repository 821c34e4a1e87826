package dmr

import "github.com/dbehnke/dvmhost-go/pkg/edac"

// SlotType is the Golay(20,8) protected field either side of the data sync.
type SlotType struct {
	ColorCode uint8
	DataType  DataType
}

// DecodeSlotType extracts and corrects the slot type of a data burst.
func DecodeSlotType(burst []byte) (SlotType, bool) {
	var st [3]byte
	st[0] = (burst[12]<<2)&0xFC | (burst[13]>>6)&0x03
	st[1] = (burst[13]<<2)&0xC0 | (burst[19]<<2)&0x3C | (burst[20]>>6)&0x03
	st[2] = (burst[20] << 2) & 0xF0

	code, ok := edac.DecodeGolay2087(st[:])
	return SlotType{
		ColorCode: code >> 4,
		DataType:  DataType(code & 0x0F),
	}, ok
}

// Encode writes the slot type into burst around the sync field.
func (s SlotType) Encode(burst []byte) {
	var st [3]byte
	st[0] = (s.ColorCode<<4)&0xF0 | byte(s.DataType)&0x0F
	edac.EncodeGolay2087(st[:])

	burst[12] = (burst[12] & 0xC0) | (st[0]>>2)&0x3F
	burst[13] = (burst[13] & 0x0F) | (st[0]<<6)&0xC0 | (st[1]>>2)&0x30
	burst[19] = (burst[19] & 0xF0) | (st[1]>>2)&0x0F
	burst[20] = (burst[20] & 0x03) | (st[1]<<6)&0xC0 | (st[2]>>2)&0x3C
}
