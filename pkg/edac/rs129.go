package edac

// Reed-Solomon (12,9) over GF(2^8) protects full link control in voice LC
// headers and terminators. The three parity bytes are XOR masked on air by
// the caller depending on the burst type.

const (
	gfPoly = 0x11D

	// RS129Length is the size of a full LC including parity.
	RS129Length = 12
)

// generator polynomial with roots alpha^1..alpha^3, lowest term first
var rs129Generator = [4]byte{64, 56, 14, 1}

var gfExp, gfLog = func() (exp [512]byte, log [256]byte) {
	x := 1
	for i := 0; i < 255; i++ {
		exp[i] = byte(x)
		log[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= gfPoly
		}
	}
	for i := 255; i < 512; i++ {
		exp[i] = exp[i-255]
	}
	return
}()

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])+int(gfLog[b])]
}

func rs129Parity(msg []byte) [3]byte {
	var p [3]byte
	for i := 0; i < 9; i++ {
		d := msg[i] ^ p[2]
		for j := 2; j > 0; j-- {
			p[j] = p[j-1] ^ gfMul(rs129Generator[j], d)
		}
		p[0] = gfMul(rs129Generator[0], d)
	}
	return p
}

// EncodeRS129 writes the three parity bytes of in[0:9] into in[9:12].
func EncodeRS129(in []byte) {
	if len(in) < RS129Length {
		panic("edac: rs129: input too short")
	}
	p := rs129Parity(in)
	in[9] = p[2]
	in[10] = p[1]
	in[11] = p[0]
}

// CheckRS129 reports whether in[9:12] is the parity of in[0:9].
func CheckRS129(in []byte) bool {
	if len(in) < RS129Length {
		panic("edac: rs129: input too short")
	}
	p := rs129Parity(in)
	return in[9] == p[2] && in[10] == p[1] && in[11] == p[0]
}
