// Package protocol implements the serial command/response protocol of the
// Winsen MH-Z19, MH-Z19B and MH-Z14 infrared CO2 sensors.
//
// The package is a pure codec. It builds the 9-byte request frames sent to the
// sensor and validates and decodes the 9-byte frames the sensor sends back. It
// never opens a port, reads, writes, sleeps or logs; moving bytes over the wire
// is the job of the transport package.
//
// # Frame Layout
//
// Every frame, in both directions, is exactly 9 bytes:
//
//	[0]     0xFF           Start marker (StartByte)
//	[1]     0x01           Sensor address (SensorAddress)
//	[2]     command        Command code
//	[3-7]   payload        Command-specific, zero-padded
//	[8]     checksum       (0x100 - (sum of bytes 1..7 mod 256)) mod 256
//
// # Commands
//
//	ReadConcentration          0x86  no payload
//	CalibrateZeroPoint         0x87  no payload
//	CalibrateSpanPoint         0x88  [3-4] span ppm, big-endian
//	SetDetectionRange          0x99  [3-4] range ppm, big-endian
//	SetAutoBaselineCorrection  0x79  [3] 0xA0 on, 0x00 off
//
// # Usage Example - Construction
//
//	req, err := protocol.CalibrateSpanPointRequest(2000)
//	if err != nil {
//	    return err // ErrInvalidParameter, nothing was sent
//	}
//	_, err = port.Write(req.Bytes())
//
// # Usage Example - Parsing
//
//	resp, err := protocol.ParseResponse(buf, protocol.ReadConcentration)
//	switch {
//	case errors.Is(err, protocol.ErrChecksumMismatch):
//	    // line noise, the caller decides whether to ask again
//	case err != nil:
//	    return err
//	}
//	fmt.Println(resp.(protocol.Reading).PPM)
//
// # Error Handling
//
// Three failure kinds exist, each exposed as a sentinel for errors.Is:
//   - ErrInvalidParameter: a request argument outside the command's domain
//   - ErrMalformedFrame: wrong length, start marker, address or command echo
//   - ErrChecksumMismatch: structurally valid frame with a bad checksum
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package protocol
