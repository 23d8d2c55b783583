//go:build ignore

// Analyze-capture replays a serial capture through the frame parser.
//
// The input is any text containing hex byte pairs, for example the rx lines of
// MHZ19_LOG_LEVEL=debug output or a logic analyzer export. Non-hex tokens are
// skipped, so the bytes of all lines form one stream.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/muurk/mhz19/internal/protocol"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run tools/analyze-capture.go <capture-file>")
		fmt.Println("Example: MHZ19_LOG_LEVEL=debug mhz19 read 2> capture.log && go run tools/analyze-capture.go capture.log")
		os.Exit(1)
	}

	filename := os.Args[1]
	stream, err := readStream(filename)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== MH-Z19 Capture Analyzer ===\n")
	fmt.Printf("File:  %s\n", filename)
	fmt.Printf("Bytes: %d\n\n", len(stream))

	var ok, checksum, malformed, skipped int
	for i := 0; i < len(stream); {
		if stream[i] != protocol.StartByte || i+protocol.FrameSize > len(stream) {
			skipped++
			i++
			continue
		}

		window := stream[i : i+protocol.FrameSize]
		frame, err := protocol.ParseFrame(window)
		switch {
		case err == nil:
			ok++
			describe(i, frame)
			i += protocol.FrameSize
			continue
		case errors.Is(err, protocol.ErrChecksumMismatch) && !errors.Is(err, protocol.ErrMalformedFrame):
			checksum++
			fmt.Printf("[%06d] %s  checksum mismatch: %v\n", i, protocol.HexDump(window), err)
			i += protocol.FrameSize
			continue
		default:
			malformed++
			diagnose(i, window, err)
			i++
		}
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  valid frames:       %d\n", ok)
	fmt.Printf("  checksum mismatch:  %d\n", checksum)
	fmt.Printf("  malformed at 0xFF:  %d\n", malformed)
	fmt.Printf("  bytes skipped:      %d\n", skipped)
}

// readStream collects every two-digit hex token in the file.
func readStream(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var stream []byte
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		for _, tok := range strings.FieldsFunc(scanner.Text(), func(r rune) bool {
			return r == ' ' || r == '\t' || r == ',' || r == '"' || r == '[' || r == ']'
		}) {
			if len(tok) != 2 {
				continue
			}
			if b, err := protocol.ParseHex(tok); err == nil {
				stream = append(stream, b...)
			}
		}
	}
	return stream, scanner.Err()
}

func describe(offset int, frame protocol.Frame) {
	cmd := frame.Command()
	if cmd == protocol.ReadConcentration {
		if r, err := protocol.ParseReading(frame[:]); err == nil {
			fmt.Printf("[%06d] %s  %s  %d ppm\n", offset, frame.Hex(), cmd, r.PPM)
			return
		}
	}
	fmt.Printf("[%06d] %s  %s\n", offset, frame.Hex(), cmd)
}

// diagnose explains a rejected window. Sensors that omit the address byte
// send FF <cmd> ..., which is reported separately.
func diagnose(offset int, window []byte, err error) {
	fmt.Printf("[%06d] %s  %v\n", offset, protocol.HexDump(window), err)
	if protocol.Command(window[1]).Known() {
		var sum byte
		for _, b := range window[1:8] {
			sum += b
		}
		if -sum == window[8] {
			fmt.Printf("         reply without address byte: command %s\n", protocol.Command(window[1]))
		}
	}
}
