package adsb

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Frame is one demodulated, CRC-checked Mode S reply
type Frame struct {
	Data      []byte // 7 or 14 bytes
	Timestamp time.Time
	Signal    float64 // correlation score or RSSI, source dependent
	Address   uint32  // externally resolved address, 0 when unknown
}

// ParseHex builds a frame from a hex string such as "8D4840D6202CC371C32CE0576098"
func ParseHex(s string, ts time.Time) (*Frame, error) {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid frame hex: %w", err)
	}
	if len(data) != ShortFrameBytes && len(data) != LongFrameBytes {
		return nil, fmt.Errorf("invalid frame length %d", len(data))
	}
	return &Frame{Data: data, Timestamp: ts}, nil
}

// DF extracts the downlink format
func (f *Frame) DF() uint8 {
	if len(f.Data) == 0 {
		return 0
	}
	return f.Data[0] >> 3
}

// CA extracts the capability field (CF for DF18, FS for DF4/5/20/21)
func (f *Frame) CA() uint8 {
	if len(f.Data) == 0 {
		return 0
	}
	return f.Data[0] & 0x07
}

// AA extracts the 24-bit address field of DF11/17/18
func (f *Frame) AA() uint32 {
	if len(f.Data) < 4 {
		return 0
	}
	return uint32(f.Data[1])<<16 | uint32(f.Data[2])<<8 | uint32(f.Data[3])
}

// TC extracts the extended squitter type code
func (f *Frame) TC() uint8 {
	if len(f.Data) < LongFrameBytes {
		return 0
	}
	return f.Data[4] >> 3
}

// ME returns the 56-bit ME/MB/MV payload of a long frame
func (f *Frame) ME() []byte {
	if len(f.Data) < LongFrameBytes {
		return nil
	}
	return f.Data[4:11]
}

// Parity returns the trailing 24-bit parity field
func (f *Frame) Parity() uint32 {
	n := len(f.Data)
	if n < 3 {
		return 0
	}
	return uint32(f.Data[n-3])<<16 | uint32(f.Data[n-2])<<8 | uint32(f.Data[n-1])
}

// AC13 returns the 13-bit altitude code of DF0/4/16/20
func (f *Frame) AC13() uint16 {
	if len(f.Data) < 4 {
		return 0
	}
	return uint16(f.Data[2]&0x1F)<<8 | uint16(f.Data[3])
}

// ID13 returns the 13-bit identity code of DF5/21
func (f *Frame) ID13() uint16 {
	return f.AC13()
}

// Hex returns the frame payload as upper-case hex
func (f *Frame) Hex() string {
	return strings.ToUpper(hex.EncodeToString(f.Data))
}
