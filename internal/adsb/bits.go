package adsb

// Bits extracts bits first..last (1-based, inclusive, MSB first) of data.
// It returns 0 when the range falls outside data or spans more than 64 bits.
func Bits(data []byte, first, last int) uint64 {
	if first < 1 || last < first || last-first >= 64 || (last-1)/8 >= len(data) {
		return 0
	}
	var v uint64
	for i := first - 1; i < last; i++ {
		v <<= 1
		if data[i/8]&(0x80>>(uint(i)%8)) != 0 {
			v |= 1
		}
	}
	return v
}

// Bit reports whether bit n (1-based, MSB first) of data is set
func Bit(data []byte, n int) bool {
	return Bits(data, n, n) == 1
}

// TwosComplement interprets bits first..last as a two's complement integer
func TwosComplement(data []byte, first, last int) int {
	n := last - first + 1
	v := int64(Bits(data, first, last))
	if v&(1<<(n-1)) != 0 {
		v -= 1 << n
	}
	return int(v)
}
