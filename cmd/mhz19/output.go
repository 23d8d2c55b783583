package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/muurk/mhz19/internal/protocol"
	"github.com/muurk/mhz19/internal/transport"
	"github.com/muurk/mhz19/internal/ui"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func jsonOutput() bool {
	return outputFormat == formatJSON
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail reports a failed sensor operation and returns err for the exit status.
func fail(cmd *cobra.Command, title string, err error) error {
	if !jsonOutput() {
		ui.NewPrinter(cmd.OutOrStdout()).PrintError(title, err, troubleshooting(err))
	}
	return err
}

// troubleshooting suggests fixes for the common failure kinds.
func troubleshooting(err error) []string {
	switch {
	case errors.Is(err, transport.ErrTimeout):
		return []string{
			"Check that the sensor TX is wired to the adapter RX and vice versa",
			"The sensor needs 5V on Vin and about 3 minutes to warm up",
			"Some firmware never answers configuration commands; set sensor.await_ack: false",
		}
	case errors.Is(err, protocol.ErrChecksumMismatch):
		return []string{
			"Line noise corrupted the reply; shorten or shield the cable",
			"Make sure nothing else has the port open",
		}
	case errors.Is(err, protocol.ErrMalformedFrame):
		return []string{
			"Confirm the device on this port is an MH-Z19 family sensor",
			"The link must run at 9600 baud, 8N1",
		}
	case errors.Is(err, protocol.ErrInvalidParameter):
		return []string{"Span must be 0-10000 ppm; range must be 2000, 5000 or 10000"}
	default:
		return []string{"Check the port name and permissions (dialout group on Linux)"}
	}
}
