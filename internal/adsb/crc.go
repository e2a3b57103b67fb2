package adsb

// GeneratorPoly is the Mode S CRC-24 generator polynomial
const GeneratorPoly = 0xfff409

// crcTable holds the CRC remainder for each leading byte
var crcTable [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		c := uint32(i) << 16
		for j := 0; j < 8; j++ {
			if c&0x800000 != 0 {
				c = (c << 1) ^ GeneratorPoly
			} else {
				c = c << 1
			}
		}
		crcTable[i] = c & 0x00ffffff
	}
}

// CRC computes the 24-bit Mode S CRC over data
func CRC(data []byte) uint32 {
	var rem uint32
	for _, b := range data {
		rem = (rem << 8) ^ crcTable[uint32(b)^((rem&0xff0000)>>16)]
		rem &= 0xffffff
	}
	return rem
}

// Syndrome returns the parity field XOR the CRC of the frame body.
// It is zero for an intact DF17/18 frame, the interrogator code for DF11
// and the transponder address for address/parity formats.
func Syndrome(f *Frame) uint32 {
	n := len(f.Data)
	if n < ShortFrameBytes {
		return 0
	}
	return (f.Parity() ^ CRC(f.Data[:n-3])) & 0xffffff
}

// RecoverAddress returns the address overlaid on the parity of an AP format
// (DF0/4/5/16/20/21)
func RecoverAddress(f *Frame) uint32 {
	return Syndrome(f)
}

// InterrogatorCode returns the II/SI code of a DF11 all-call reply and whether
// the upper syndrome bits are clear
func InterrogatorCode(f *Frame) (uint8, bool) {
	s := Syndrome(f)
	return uint8(s & 0x7F), s&^0x7F == 0
}

// SetParity overwrites the parity field of f with CRC XOR overlay.
// Used to build frames, for example in tests and replays.
func SetParity(f *Frame, overlay uint32) {
	n := len(f.Data)
	if n < ShortFrameBytes {
		return
	}
	p := CRC(f.Data[:n-3]) ^ (overlay & 0xffffff)
	f.Data[n-3] = byte(p >> 16)
	f.Data[n-2] = byte(p >> 8)
	f.Data[n-1] = byte(p)
}
