package edac

// Hamming codes used inside BPTC(196,96) and the embedded LC matrix.
// Decoders correct a single bit error in place and report whether they
// changed anything.

// Encode15113_2 fills d[11:15] with Hamming(15,11,3) parity (variant 2).
func Encode15113_2(d []bool) {
	_ = d[14]
	d[11] = xor(d[0], d[1], d[2], d[3], d[5], d[7], d[8])
	d[12] = xor(d[1], d[2], d[3], d[4], d[6], d[8], d[9])
	d[13] = xor(d[2], d[3], d[4], d[5], d[7], d[9], d[10])
	d[14] = xor(d[0], d[1], d[2], d[4], d[6], d[7], d[10])
}

var syndrome15113_2 = map[uint8]int{
	0x01: 11, 0x02: 12, 0x04: 13, 0x08: 14,
	0x09: 0, 0x0B: 1, 0x0F: 2, 0x07: 3, 0x0E: 4, 0x05: 5,
	0x0A: 6, 0x0D: 7, 0x03: 8, 0x06: 9, 0x0C: 10,
}

// Decode15113_2 corrects a single bit error in a Hamming(15,11,3) row.
func Decode15113_2(d []bool) bool {
	_ = d[14]
	var n uint8
	if xor(d[0], d[1], d[2], d[3], d[5], d[7], d[8]) != d[11] {
		n |= 0x01
	}
	if xor(d[1], d[2], d[3], d[4], d[6], d[8], d[9]) != d[12] {
		n |= 0x02
	}
	if xor(d[2], d[3], d[4], d[5], d[7], d[9], d[10]) != d[13] {
		n |= 0x04
	}
	if xor(d[0], d[1], d[2], d[4], d[6], d[7], d[10]) != d[14] {
		n |= 0x08
	}

	pos, ok := syndrome15113_2[n]
	if !ok {
		return false
	}
	d[pos] = !d[pos]
	return true
}

// Encode1393 fills d[9:13] with Hamming(13,9,3) parity.
func Encode1393(d []bool) {
	_ = d[12]
	d[9] = xor(d[0], d[1], d[3], d[5], d[6])
	d[10] = xor(d[0], d[1], d[2], d[4], d[6], d[7])
	d[11] = xor(d[0], d[1], d[2], d[3], d[5], d[7], d[8])
	d[12] = xor(d[0], d[2], d[4], d[5], d[8])
}

var syndrome1393 = map[uint8]int{
	0x01: 9, 0x02: 10, 0x04: 11, 0x08: 12,
	0x0F: 0, 0x07: 1, 0x0E: 2, 0x05: 3, 0x0A: 4,
	0x0D: 5, 0x03: 6, 0x06: 7, 0x0C: 8,
}

// Decode1393 corrects a single bit error in a Hamming(13,9,3) column.
func Decode1393(d []bool) bool {
	_ = d[12]
	var n uint8
	if xor(d[0], d[1], d[3], d[5], d[6]) != d[9] {
		n |= 0x01
	}
	if xor(d[0], d[1], d[2], d[4], d[6], d[7]) != d[10] {
		n |= 0x02
	}
	if xor(d[0], d[1], d[2], d[3], d[5], d[7], d[8]) != d[11] {
		n |= 0x04
	}
	if xor(d[0], d[2], d[4], d[5], d[8]) != d[12] {
		n |= 0x08
	}

	pos, ok := syndrome1393[n]
	if !ok {
		return false
	}
	d[pos] = !d[pos]
	return true
}

func parity16114(d []bool) (p11, p12, p13, p14, p15 bool) {
	p11 = xor(d[0], d[1], d[2], d[3], d[5], d[7], d[8])
	p12 = xor(d[1], d[2], d[3], d[4], d[6], d[8], d[9])
	p13 = xor(d[2], d[3], d[4], d[5], d[7], d[9], d[10])
	p14 = xor(d[0], d[1], d[2], d[4], d[6], d[7], d[10])
	p15 = xor(d[0], d[2], d[5], d[6], d[8], d[9], d[10])
	return
}

// Encode16114 fills d[11:16] with Hamming(16,11,4) parity.
func Encode16114(d []bool) {
	_ = d[15]
	d[11], d[12], d[13], d[14], d[15] = parity16114(d)
}

var syndrome16114 = map[uint8]int{
	0x01: 11, 0x02: 12, 0x04: 13, 0x08: 14, 0x10: 15,
	0x19: 0, 0x0B: 1, 0x1F: 2, 0x07: 3, 0x0E: 4, 0x15: 5,
	0x1A: 6, 0x0D: 7, 0x13: 8, 0x16: 9, 0x1C: 10,
}

// Decode16114 corrects a single bit error in a Hamming(16,11,4) row. It
// returns false when the row holds an uncorrectable error.
func Decode16114(d []bool) bool {
	_ = d[15]
	p11, p12, p13, p14, p15 := parity16114(d)

	var n uint8
	if p11 != d[11] {
		n |= 0x01
	}
	if p12 != d[12] {
		n |= 0x02
	}
	if p13 != d[13] {
		n |= 0x04
	}
	if p14 != d[14] {
		n |= 0x08
	}
	if p15 != d[15] {
		n |= 0x10
	}

	if n == 0 {
		return true
	}
	pos, ok := syndrome16114[n]
	if !ok {
		return false
	}
	d[pos] = !d[pos]
	return true
}
