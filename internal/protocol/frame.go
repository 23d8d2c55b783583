package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Frame constants
const (
	FrameSize     = 9
	StartByte     = 0xFF
	SensorAddress = 0x01

	// payload occupies bytes 3..7
	payloadOffset = 3
	checksumIndex = 8
)

// Frame is one 9-byte protocol frame. It is a value type; copies never alias.
type Frame [FrameSize]byte

// Checksum computes the checksum of a frame laid out in b. Only bytes 1..7 are
// summed, so b must hold at least 8 bytes; shorter input yields 0.
func Checksum(b []byte) byte {
	if len(b) < checksumIndex {
		return 0
	}
	var sum byte
	for _, c := range b[1:checksumIndex] {
		sum += c
	}
	// byte arithmetic wraps mod 256, so this is (0x100 - sum) mod 256
	return -sum
}

// Command returns the command code at byte 2.
func (f Frame) Command() Command {
	return Command(f[2])
}

// Payload returns a copy of bytes 3..7.
func (f Frame) Payload() []byte {
	p := make([]byte, checksumIndex-payloadOffset)
	copy(p, f[payloadOffset:checksumIndex])
	return p
}

// Valid reports whether the frame carries the start marker, the sensor address
// and a matching checksum.
func (f Frame) Valid() bool {
	return f[0] == StartByte && f[1] == SensorAddress && f[checksumIndex] == Checksum(f[:])
}

// Bytes returns the frame as a freshly allocated slice, ready to write.
func (f Frame) Bytes() []byte {
	b := make([]byte, FrameSize)
	copy(b, f[:])
	return b
}

// Hex returns the frame as space separated upper-case hex pairs,
// e.g. "FF 01 86 00 00 00 00 00 79".
func (f Frame) Hex() string {
	return HexDump(f[:])
}

// String returns a debug representation of the frame
func (f Frame) String() string {
	return fmt.Sprintf("Frame{cmd=%s, payload=% X, checksum=0x%02X}",
		f.Command(), f[payloadOffset:checksumIndex], f[checksumIndex])
}

// HexDump formats arbitrary bytes the same way Frame.Hex does.
func HexDump(b []byte) string {
	return strings.ToUpper(strings.TrimSpace(fmt.Sprintf("% x", b)))
}

// ParseHex decodes a hex string into bytes. Whitespace, colons and an optional
// 0x prefix on each pair are ignored, so "FF 01 86", "ff:01:86" and
// "0xFF 0x01 0x86" are all accepted.
func ParseHex(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.ReplaceAll(s, "0X", "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', ',', '-':
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return b, nil
}
