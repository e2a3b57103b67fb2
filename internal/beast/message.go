package beast

import "modes1090/internal/adsb"

// Beast mode message types
const (
	SyncByte   = 0x1A // Beast mode sync byte
	ModeAC     = 0x31 // Mode A/C
	ModeS      = 0x32 // Mode S Short (56 bits)
	ModeSLong  = 0x33 // Mode S Long (112 bits)
	ModeStatus = 0x34 // Status
)

// headerLen is the unescaped length of the counter and signal fields
const headerLen = 7

// Message is one unescaped Beast mode message
type Message struct {
	Type    byte
	Counter uint64 // 48-bit 12 MHz receiver counter
	Signal  byte
	Data    []byte
}

// dataLength returns the payload length of a message type, or 0 if unknown
func dataLength(messageType byte) int {
	switch messageType {
	case ModeAC, ModeStatus:
		return 2
	case ModeS:
		return adsb.ShortFrameBytes
	case ModeSLong:
		return adsb.LongFrameBytes
	default:
		return 0
	}
}

// IsModeS reports whether the message carries a Mode S frame
func (msg *Message) IsModeS() bool {
	return msg.Type == ModeS || msg.Type == ModeSLong
}

// SignalLevel converts the signal byte to relative power in [0, 1]
func (msg *Message) SignalLevel() float64 {
	s := float64(msg.Signal) / 255
	return s * s
}
