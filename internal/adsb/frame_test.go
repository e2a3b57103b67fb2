package adsb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Unix(1700000000, 0)

// setBits writes v into bits first..last (1-based, MSB first) of data
func setBits(data []byte, first, last int, v uint64) {
	for i := last; i >= first; i-- {
		idx := i - 1
		mask := byte(0x80 >> (uint(idx) % 8))
		if v&1 != 0 {
			data[idx/8] |= mask
		} else {
			data[idx/8] &^= mask
		}
		v >>= 1
	}
}

// TestParseHex tests frame construction and field accessors
func TestParseHex(t *testing.T) {
	f, err := ParseHex("8D4840D6202CC371C32CE0576098", testTime)
	require.NoError(t, err)

	assert.Equal(t, uint8(17), f.DF())
	assert.Equal(t, uint8(5), f.CA())
	assert.Equal(t, uint32(0x4840D6), f.AA())
	assert.Equal(t, uint8(4), f.TC())
	assert.Len(t, f.ME(), 7)
	assert.Equal(t, uint32(0x576098), f.Parity())
	assert.Equal(t, "8D4840D6202CC371C32CE0576098", f.Hex())
	assert.Equal(t, testTime, f.Timestamp)

	short, err := ParseHex("2A00516D492B80", testTime)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), short.DF())
	assert.Nil(t, short.ME())
	assert.Equal(t, uint8(0), short.TC())

	_, err = ParseHex("8D4840", testTime)
	assert.Error(t, err)
	_, err = ParseHex("zz", testTime)
	assert.Error(t, err)
}

// TestCRC tests checksum and syndrome computation
func TestCRC(t *testing.T) {
	f, err := ParseHex("8D4840D6202CC371C32CE0576098", testTime)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x576098), CRC(f.Data[:11]))
	assert.Equal(t, uint32(0), Syndrome(f))

	// Flipping a payload bit breaks the checksum
	f.Data[5] ^= 0x01
	assert.NotEqual(t, uint32(0), Syndrome(f))
}

// TestAddressParity tests address recovery on AP formats
func TestAddressParity(t *testing.T) {
	f := &Frame{Data: []byte{0x20, 0x00, 0x18, 0x38, 0, 0, 0}}
	SetParity(f, 0xABCDEF)
	assert.Equal(t, uint32(0xABCDEF), RecoverAddress(f))

	long := &Frame{Data: make([]byte, LongFrameBytes)}
	long.Data[0] = 20 << 3
	SetParity(long, 0x4840D6)
	assert.Equal(t, uint32(0x4840D6), RecoverAddress(long))
}

// TestInterrogatorCode tests DF11 II/SI extraction
func TestInterrogatorCode(t *testing.T) {
	f := &Frame{Data: []byte{0x5D, 0x48, 0x40, 0xD6, 0, 0, 0}}

	SetParity(f, 0x000000)
	ic, ok := InterrogatorCode(f)
	assert.True(t, ok)
	assert.Equal(t, uint8(0), ic)

	SetParity(f, 0x00000D)
	ic, ok = InterrogatorCode(f)
	assert.True(t, ok)
	assert.Equal(t, uint8(13), ic)

	SetParity(f, 0x001000)
	_, ok = InterrogatorCode(f)
	assert.False(t, ok)
}

// TestBits tests bit extraction helpers
func TestBits(t *testing.T) {
	data := []byte{0b10110000, 0xFF, 0x01}

	tests := []struct {
		name        string
		first, last int
		expected    uint64
	}{
		{"First bit", 1, 1, 1},
		{"First nibble", 1, 4, 0b1011},
		{"Across bytes", 5, 12, 0b00001111},
		{"Last bit", 24, 24, 1},
		{"Out of range", 20, 30, 0},
		{"Reversed", 5, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Bits(data, tt.first, tt.last))
		})
	}

	assert.True(t, Bit(data, 3))
	assert.False(t, Bit(data, 2))
	assert.Equal(t, -1, TwosComplement([]byte{0xFF}, 1, 8))
	assert.Equal(t, 127, TwosComplement([]byte{0x7F}, 1, 8))
}

// TestExpectedLength tests length by downlink format
func TestExpectedLength(t *testing.T) {
	for _, df := range []uint8{0, 4, 5, 11} {
		assert.Equal(t, ShortFrameBytes, ExpectedLength(df), "DF%d", df)
	}
	for _, df := range []uint8{16, 17, 18, 20, 21, 24} {
		assert.Equal(t, LongFrameBytes, ExpectedLength(df), "DF%d", df)
	}
}
