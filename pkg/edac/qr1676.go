package edac

// Quadratic residue (16,7,6) code guarding the DMR EMB field. Seven data bits
// (color code, PI, LCSS) are followed by nine parity bits; two bit errors are
// correctable.

const qr1676Poly = 0x139

var qr1676Codewords = func() [128]uint32 {
	var t [128]uint32
	for d := 0; d < 128; d++ {
		t[d] = qr1676Encode(byte(d))
	}
	return t
}()

func qr1676Encode(d byte) uint32 {
	r := uint32(d) << 8
	for i := 14; i >= 8; i-- {
		if r&(1<<uint(i)) != 0 {
			r ^= qr1676Poly << uint(i-8)
		}
	}
	p := uint32(popcount32(uint32(d))+popcount32(r)) & 1
	return uint32(d)<<9 | r<<1 | p
}

// EncodeQR1676 encodes the top seven bits of data[0] (the low bit is
// ignored) into the 16-bit codeword data[0:2].
func EncodeQR1676(data []byte) {
	_ = data[1]
	cw := qr1676Codewords[(data[0]>>1)&0x7F]
	data[0] = byte(cw >> 8)
	data[1] = byte(cw)
}

// DecodeQR1676 returns the seven data bits of the codeword in data[0:2],
// shifted left by one as they appear on air. ok is false when more than two
// bits are wrong.
func DecodeQR1676(data []byte) (byte, bool) {
	_ = data[1]
	received := uint32(data[0])<<8 | uint32(data[1])

	best, bestDist := 0, 17
	for d, cw := range qr1676Codewords {
		if dist := popcount32(cw ^ received); dist < bestDist {
			best, bestDist = d, dist
			if dist == 0 {
				break
			}
		}
	}

	return byte(best) << 1, bestDist <= 2
}
