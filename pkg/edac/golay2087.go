package edac

// Golay(20,8) protects the DMR slot type field: a 4-bit color code and a
// 4-bit data type followed by 12 parity bits. The code has minimum distance
// 8, so up to three bit errors are corrected.

const golay2087Poly = 0xC75

var golay2087Codewords = func() [256]uint32 {
	var t [256]uint32
	for d := 0; d < 256; d++ {
		t[d] = uint32(d)<<12 | golay2087Parity(byte(d))
	}
	return t
}()

// golay2087Parity returns the 11-bit cyclic remainder followed by an overall
// parity bit.
func golay2087Parity(d byte) uint32 {
	r := uint32(d) << 11
	for i := 18; i >= 11; i-- {
		if r&(1<<uint(i)) != 0 {
			r ^= golay2087Poly << uint(i-11)
		}
	}
	p := uint32(popcount32(uint32(d))+popcount32(r)) & 1
	return r<<1 | p
}

// EncodeGolay2087 encodes data[0] and writes the 12 parity bits into
// data[1] and the high nibble of data[2].
func EncodeGolay2087(data []byte) {
	_ = data[2]
	p := golay2087Parity(data[0])
	data[1] = byte(p >> 4)
	data[2] = byte(p<<4) & 0xF0
}

// DecodeGolay2087 returns the corrected data byte of a 20-bit codeword held
// left aligned in data[0:3]. ok is false when more than three bits are wrong.
func DecodeGolay2087(data []byte) (byte, bool) {
	_ = data[2]
	received := (uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])) >> 4

	best, bestDist := 0, 21
	for d, cw := range golay2087Codewords {
		if dist := popcount32(cw ^ received); dist < bestDist {
			best, bestDist = d, dist
			if dist == 0 {
				break
			}
		}
	}

	return byte(best), bestDist <= 3
}
