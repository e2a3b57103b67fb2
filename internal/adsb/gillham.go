package adsb

// GrayToBinary converts a reflected binary Gray code to its binary value
func GrayToBinary(g uint32) uint32 {
	b := g
	for s := g >> 1; s != 0; s >>= 1 {
		b ^= s
	}
	return b
}

// BinaryToGray converts a binary value to reflected binary Gray code
func BinaryToGray(b uint32) uint32 {
	return b ^ (b >> 1)
}

// GillhamToFeet decodes an 11-bit Gillham altitude code laid out (MSB first)
// as C1 A1 C2 A2 C4 A4 B1 B2 D2 B4 D4. The result is in feet, in 100 ft steps
// from -1200 ft. Codes with an illegal C group are rejected.
func GillhamToFeet(code uint16) (int, bool) {
	bit := func(n uint) uint32 { return uint32(code>>n) & 1 }

	c1, a1, c2, a2, c4, a4 := bit(10), bit(9), bit(8), bit(7), bit(6), bit(5)
	b1, b2, d2, b4, d4 := bit(4), bit(3), bit(2), bit(1), bit(0)

	n500 := int(GrayToBinary(d2<<7 | d4<<6 | a1<<5 | a2<<4 | a4<<3 | b1<<2 | b2<<1 | b4))

	n100 := int(GrayToBinary(c1<<2|c2<<1|c4)) - 1
	switch n100 {
	case 0, 1, 2, 3:
	case 6:
		n100 = 4
	default:
		return 0, false
	}

	// The 100 ft count runs backwards in odd 500 ft bands
	if n500%2 != 0 {
		n100 = 4 - n100
	}

	return -1200 + 500*n500 + 100*n100, true
}
