package edac

// CRC routines used by the DMR air interface.
// The check routines never modify their input; the add routines overwrite
// the trailing CRC bytes in place. Undersized input is a programming error
// and panics.

const fiveBitLength = 72

func requireLen(name string, in []byte, min int) {
	if in == nil {
		panic("edac: " + name + ": nil input")
	}
	if len(in) <= min {
		panic("edac: " + name + ": input too short")
	}
}

// EncodeFiveBit computes the 5-bit checksum of the first 72 bits of in.
// The bits are taken as nine big-endian bytes whose sum is reduced mod 31.
func EncodeFiveBit(in []bool) uint32 {
	if len(in) < fiveBitLength {
		panic("edac: five bit crc: need 72 bits")
	}

	var total uint32
	for i := 0; i < fiveBitLength; i += 8 {
		total += uint32(BitsToByteBE(in[i : i+8]))
	}

	return total % 31
}

// CheckFiveBit reports whether the 5-bit checksum of in equals tcrc.
func CheckFiveBit(in []bool, tcrc uint32) bool {
	return EncodeFiveBit(in) == tcrc
}

// ccitt161 runs the reflected CCITT register (X.25 form) over in.
func ccitt161(in []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range in {
		crc = (crc >> 8) ^ ccitt16Table1[byte(crc)^b]
	}
	return ^crc
}

// ccitt162 runs the MSB-first CCITT register over in.
func ccitt162(in []byte) uint16 {
	var crc uint16
	for _, b := range in {
		crc = (crc << 8) ^ ccitt16Table2[byte(crc>>8)^b]
	}
	return ^crc
}

// CheckCCITT161 validates the trailing 16-bit CRC of in. The CRC is stored
// low byte first.
func CheckCCITT161(in []byte) bool {
	requireLen("ccitt161", in, 2)

	n := len(in)
	crc := ccitt161(in[:n-2])
	return in[n-2] == byte(crc) && in[n-1] == byte(crc>>8)
}

// AddCCITT161 writes the 16-bit CRC of in[:len-2] into the last two bytes,
// low byte first.
func AddCCITT161(in []byte) {
	requireLen("ccitt161", in, 2)

	n := len(in)
	crc := ccitt161(in[:n-2])
	in[n-2] = byte(crc)
	in[n-1] = byte(crc >> 8)
}

// CheckCCITT162 validates the trailing 16-bit CRC of in. The CRC is stored
// high byte first.
func CheckCCITT162(in []byte) bool {
	requireLen("ccitt162", in, 2)

	n := len(in)
	crc := ccitt162(in[:n-2])
	return in[n-2] == byte(crc>>8) && in[n-1] == byte(crc)
}

// AddCCITT162 writes the 16-bit CRC of in[:len-2] into the last two bytes,
// high byte first.
func AddCCITT162(in []byte) {
	requireLen("ccitt162", in, 2)

	n := len(in)
	crc := ccitt162(in[:n-2])
	in[n-2] = byte(crc >> 8)
	in[n-1] = byte(crc)
}

func crc32(in []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, b := range in {
		crc = (crc << 8) ^ crc32Table[byte(crc>>24)^b]
	}
	return ^crc
}

// CheckCRC32 validates the trailing 32-bit CRC of in. The CRC is stored
// least significant byte first.
func CheckCRC32(in []byte) bool {
	requireLen("crc32", in, 4)

	n := len(in)
	crc := crc32(in[:n-4])
	return in[n-4] == byte(crc) &&
		in[n-3] == byte(crc>>8) &&
		in[n-2] == byte(crc>>16) &&
		in[n-1] == byte(crc>>24)
}

// AddCRC32 writes the 32-bit CRC of in[:len-4] into the last four bytes.
func AddCRC32(in []byte) {
	requireLen("crc32", in, 4)

	n := len(in)
	crc := crc32(in[:n-4])
	in[n-4] = byte(crc)
	in[n-3] = byte(crc >> 8)
	in[n-2] = byte(crc >> 16)
	in[n-1] = byte(crc >> 24)
}

// CRC8 returns the 8-bit CRC of in.
func CRC8(in []byte) uint8 {
	if in == nil {
		panic("edac: crc8: nil input")
	}

	var crc uint8
	for _, b := range in {
		crc = crc8Table[crc^b]
	}
	return crc
}

// CRC9 returns the 9-bit CRC of in. Only the low byte of the running value
// feeds the table index.
func CRC9(in []byte) uint16 {
	if in == nil {
		panic("edac: crc9: nil input")
	}

	var crc uint16
	for _, b := range in {
		crc = crc9Table[byte(crc)^b]
	}
	return crc
}
