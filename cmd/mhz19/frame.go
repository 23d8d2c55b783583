package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/mhz19/internal/protocol"
)

func init() {
	rootCmd.AddCommand(frameCmd)
	frameCmd.AddCommand(frameEncodeCmd)
	frameCmd.AddCommand(frameDecodeCmd)
}

var frameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Encode and decode protocol frames without a sensor",
	Long: `Work with 9-byte protocol frames offline.

Commands are named read-concentration, calibrate-zero, calibrate-span,
set-range and set-abc, or given as a hex code such as 0x86.`,
}

var frameEncodeCmd = &cobra.Command{
	Use:   "encode <command> [argument]",
	Short: "Print the request frame for a command",
	Args:  cobra.RangeArgs(1, 2),
	Example: `  mhz19 frame encode read-concentration
  mhz19 frame encode calibrate-span 2000
  mhz19 frame encode set-range 5000
  mhz19 frame encode set-abc off`,
	RunE: func(cmd *cobra.Command, args []string) error {
		command, err := lookupCommand(args[0])
		if err != nil {
			return err
		}
		params, err := parseParams(command, args[1:])
		if err != nil {
			return err
		}
		frame, err := protocol.BuildRequest(command, params)
		if err != nil {
			return err
		}

		if jsonOutput() {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"command": command.String(),
				"frame":   frame.Hex(),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), frame.Hex())
		return nil
	},
}

var frameDecodeCmd = &cobra.Command{
	Use:   "decode <command> <hex>",
	Short: "Validate and decode a captured response frame",
	Args:  cobra.MinimumNArgs(2),
	Example: `  mhz19 frame decode read-concentration FF 01 86 02 58 00 00 00 1F
  mhz19 frame decode 0x87 ff01870000000000 78`,
	RunE: func(cmd *cobra.Command, args []string) error {
		command, err := lookupCommand(args[0])
		if err != nil {
			return err
		}
		buf, err := protocol.ParseHex(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		resp, err := protocol.ParseResponse(buf, command)
		if err != nil {
			return err
		}

		out := map[string]any{"command": resp.ResponseTo().String()}
		switch r := resp.(type) {
		case protocol.Reading:
			out["ppm"] = r.PPM
		case protocol.Ack:
			out["acknowledged"] = true
		}
		if jsonOutput() {
			return writeJSON(cmd.OutOrStdout(), out)
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.String())
		return nil
	},
}

func lookupCommand(name string) (protocol.Command, error) {
	command, ok := protocol.LookupCommand(name)
	if !ok {
		names := make([]string, 0, len(protocol.Commands))
		for _, c := range protocol.Commands {
			names = append(names, c.String())
		}
		return 0, fmt.Errorf("unknown command %q (want one of %s)", name, strings.Join(names, ", "))
	}
	return command, nil
}

// parseParams converts the optional argument for commands that take one.
func parseParams(command protocol.Command, args []string) (protocol.Params, error) {
	var params protocol.Params

	needsArg := command == protocol.CalibrateSpanPoint ||
		command == protocol.SetDetectionRange ||
		command == protocol.SetAutoBaselineCorrection
	switch {
	case needsArg && len(args) == 0:
		return params, fmt.Errorf("%s needs an argument", command)
	case !needsArg && len(args) > 0:
		return params, fmt.Errorf("%s takes no argument", command)
	case !needsArg:
		return params, nil
	}

	if command == protocol.SetAutoBaselineCorrection {
		switch strings.ToLower(args[0]) {
		case "on", "true", "1":
			params.ABCEnabled = true
		case "off", "false", "0":
		default:
			return params, fmt.Errorf("invalid ABC setting %q (want on or off)", args[0])
		}
		return params, nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return params, fmt.Errorf("invalid number %q: %w", args[0], err)
	}
	if command == protocol.CalibrateSpanPoint {
		params.SpanPPM = n
	} else {
		params.DetectionRange = n
	}
	return params, nil
}
