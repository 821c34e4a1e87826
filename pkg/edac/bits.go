package edac

// ByteToBitsBE unpacks b into bits, most significant bit first.
func ByteToBitsBE(b byte, bits []bool) {
	_ = bits[7]
	for i := 0; i < 8; i++ {
		bits[i] = b&(0x80>>uint(i)) != 0
	}
}

// BitsToByteBE packs bits[0:8] into a byte, most significant bit first.
func BitsToByteBE(bits []bool) byte {
	_ = bits[7]
	var b byte
	for i := 0; i < 8; i++ {
		if bits[i] {
			b |= 0x80 >> uint(i)
		}
	}
	return b
}

// ReadBit returns bit i of a big-endian bit stream.
func ReadBit(data []byte, i int) bool {
	return data[i>>3]&(0x80>>uint(i&7)) != 0
}

// WriteBit sets bit i of a big-endian bit stream.
func WriteBit(data []byte, i int, v bool) {
	if v {
		data[i>>3] |= 0x80 >> uint(i&7)
	} else {
		data[i>>3] &^= 0x80 >> uint(i&7)
	}
}

func xor(values ...bool) bool {
	var r bool
	for _, v := range values {
		r = r != v
	}
	return r
}

func popcount32(v uint32) int {
	n := 0
	for v != 0 {
		v &= v - 1
		n++
	}
	return n
}
