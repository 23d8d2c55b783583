package protocol

import (
	"errors"
	"fmt"
)

// Response is the decoded result of a response frame: either a Reading or an
// Ack.
type Response interface {
	// ResponseTo returns the command this response answers.
	ResponseTo() Command
	String() string
	isResponse()
}

// Reading is the answer to ReadConcentration. PPM is always in [0, 65535];
// it is reported as read, without clamping to the sensor's detection range.
type Reading struct {
	PPM int
}

func (Reading) ResponseTo() Command { return ReadConcentration }

func (r Reading) String() string {
	return fmt.Sprintf("Reading{ppm=%d}", r.PPM)
}

func (Reading) isResponse() {}

// Ack confirms that a configuration command was answered with a valid frame.
type Ack struct {
	Command Command
}

func (a Ack) ResponseTo() Command { return a.Command }

func (a Ack) String() string {
	return fmt.Sprintf("Ack{cmd=%s}", a.Command)
}

func (Ack) isResponse() {}

// ParseFrame validates the structure and checksum of a response buffer and
// returns it as a Frame.
//
// Validation checks, in order:
//   - length is exactly 9 and byte 0 is 0xFF (ErrMalformedFrame)
//   - byte 1 is the sensor address 0x01 (ErrMalformedFrame; the error also
//     matches ErrChecksumMismatch when the checksum is wrong too)
//   - byte 8 matches the checksum of bytes 1..7 (ErrChecksumMismatch)
func ParseFrame(buf []byte) (Frame, error) {
	if len(buf) != FrameSize {
		return Frame{}, &FrameError{Kind: ErrMalformedFrame, Field: "length", Want: FrameSize, Got: len(buf)}
	}
	if buf[0] != StartByte {
		return Frame{}, &FrameError{Kind: ErrMalformedFrame, Field: "start byte", Want: StartByte, Got: int(buf[0])}
	}
	sum := Checksum(buf)
	if buf[1] != SensorAddress {
		addrErr := &FrameError{Kind: ErrMalformedFrame, Field: "address", Want: SensorAddress, Got: int(buf[1])}
		if buf[checksumIndex] != sum {
			// a corrupted address byte also breaks the checksum; report both
			return Frame{}, errors.Join(addrErr, checksumError(sum, buf[checksumIndex]))
		}
		return Frame{}, addrErr
	}
	if buf[checksumIndex] != sum {
		return Frame{}, checksumError(sum, buf[checksumIndex])
	}

	var f Frame
	copy(f[:], buf)
	return f, nil
}

// ParseResponse validates buf and decodes it as the answer to expected.
//
// For ReadConcentration it returns a Reading built from bytes 3 (high) and
// 4 (low); the command echo at byte 2 must be 0x86. For the configuration
// commands it returns an Ack: the sensor encodes no error payload, so any
// valid frame received after such a command is an acknowledgment.
//
// The parser works on one complete frame; splitting a byte stream into frames
// is the transport's job.
func ParseResponse(buf []byte, expected Command) (Response, error) {
	f, err := ParseFrame(buf)
	if err != nil {
		return nil, err
	}
	return expected.decode(f)
}

// ParseReading is ParseResponse for ReadConcentration.
func ParseReading(buf []byte) (Reading, error) {
	resp, err := ParseResponse(buf, ReadConcentration)
	if err != nil {
		return Reading{}, err
	}
	return resp.(Reading), nil
}

func checksumError(want, got byte) error {
	return &FrameError{Kind: ErrChecksumMismatch, Field: "checksum", Want: int(want), Got: int(got)}
}
