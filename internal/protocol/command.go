package protocol

import (
	"fmt"
	"strings"
)

// Command is a sensor command code (byte 2 of every frame).
type Command byte

// Command codes
const (
	ReadConcentration         Command = 0x86 // Read gas concentration
	CalibrateZeroPoint        Command = 0x87 // Zero point calibration (400ppm reference)
	CalibrateSpanPoint        Command = 0x88 // Span point calibration
	SetAutoBaselineCorrection Command = 0x79 // ABC on/off (MH-Z19B)
	SetDetectionRange         Command = 0x99 // Detection range (MH-Z19B)
)

// Payload values and parameter domains
const (
	ABCOn  = 0xA0
	ABCOff = 0x00

	MinSpanPPM = 0
	MaxSpanPPM = 10000
)

// DetectionRanges lists the detection ranges the sensors accept, in ppm.
var DetectionRanges = []int{2000, 5000, 10000}

// Commands lists every known command in a stable order.
var Commands = []Command{
	ReadConcentration,
	CalibrateZeroPoint,
	CalibrateSpanPoint,
	SetDetectionRange,
	SetAutoBaselineCorrection,
}

var commandNames = map[Command]string{
	ReadConcentration:         "read-concentration",
	CalibrateZeroPoint:        "calibrate-zero",
	CalibrateSpanPoint:        "calibrate-span",
	SetDetectionRange:         "set-range",
	SetAutoBaselineCorrection: "set-abc",
}

// Params carries command-specific request arguments. Fields a command does not
// use are ignored.
type Params struct {
	SpanPPM        int  // CalibrateSpanPoint
	DetectionRange int  // SetDetectionRange
	ABCEnabled     bool // SetAutoBaselineCorrection
}

// Known reports whether c is one of the five protocol commands.
func (c Command) Known() bool {
	_, ok := commandNames[c]
	return ok
}

// Code returns the raw command byte.
func (c Command) Code() byte {
	return byte(c)
}

// String returns the command's short name, or its hex code if unknown.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02X)", byte(c))
}

// LookupCommand resolves a short name (as returned by String) or a hex code
// such as "0x86" to a Command.
func LookupCommand(name string) (Command, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c, n := range commandNames {
		if n == name || fmt.Sprintf("0x%02x", byte(c)) == name {
			return c, true
		}
	}
	return 0, false
}

// encode writes the command's payload into p (bytes 3..7 of a frame).
func (c Command) encode(p []byte, params Params) error {
	switch c {
	case ReadConcentration, CalibrateZeroPoint:
		return nil
	case CalibrateSpanPoint:
		if params.SpanPPM < MinSpanPPM || params.SpanPPM > MaxSpanPPM {
			return &ParameterError{Command: c, Name: "span ppm", Value: params.SpanPPM,
				Reason: fmt.Sprintf("must be within [%d, %d]", MinSpanPPM, MaxSpanPPM)}
		}
		putUint16(p, params.SpanPPM)
		return nil
	case SetDetectionRange:
		if !validDetectionRange(params.DetectionRange) {
			return &ParameterError{Command: c, Name: "detection range", Value: params.DetectionRange,
				Reason: fmt.Sprintf("must be one of %v", DetectionRanges)}
		}
		putUint16(p, params.DetectionRange)
		return nil
	case SetAutoBaselineCorrection:
		if params.ABCEnabled {
			p[0] = ABCOn
		} else {
			p[0] = ABCOff
		}
		return nil
	default:
		return &ParameterError{Command: c, Name: "command", Value: int(c), Reason: "unknown command code"}
	}
}

// decode interprets a validated response frame for this command.
func (c Command) decode(f Frame) (Response, error) {
	switch c {
	case ReadConcentration:
		if f.Command() != c {
			return nil, &FrameError{Kind: ErrMalformedFrame, Field: "command echo", Want: int(c), Got: int(f.Command())}
		}
		return Reading{PPM: int(f[payloadOffset])<<8 | int(f[payloadOffset+1])}, nil
	case CalibrateZeroPoint, CalibrateSpanPoint, SetDetectionRange, SetAutoBaselineCorrection:
		// the sensor has no error payload; a clean frame is the acknowledgment
		return Ack{Command: c}, nil
	default:
		return nil, &ParameterError{Command: c, Name: "expected command", Value: int(c), Reason: "unknown command code"}
	}
}

func validDetectionRange(v int) bool {
	for _, r := range DetectionRanges {
		if v == r {
			return true
		}
	}
	return false
}

// putUint16 writes v big-endian into p[0:2]; callers bound v to 16 bits.
func putUint16(p []byte, v int) {
	p[0] = byte(v >> 8)
	p[1] = byte(v)
}
