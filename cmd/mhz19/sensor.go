package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/mhz19/internal/config"
	"github.com/muurk/mhz19/internal/protocol"
	"github.com/muurk/mhz19/internal/sensor"
	"github.com/muurk/mhz19/internal/ui"
)

var (
	assumeYes bool
	spanPPM   int
)

func init() {
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(rangeCmd)
	rootCmd.AddCommand(abcCmd)

	calibrateCmd.AddCommand(calibrateZeroCmd)
	calibrateCmd.AddCommand(calibrateSpanCmd)
	calibrateCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	calibrateSpanCmd.Flags().IntVar(&spanPPM, "ppm", 2000, "Concentration of the reference gas in ppm")
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// withClient loads the configuration, opens the sensor and runs fn.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, client *sensor.Client) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, err := sensor.Open(cfg.Sensor)
	if err != nil {
		return fail(cmd, "Cannot open "+cfg.Sensor.Port, err)
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := signalContext()
	defer cancel()
	return fn(ctx, cfg, client)
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the CO2 concentration",
	Args:  cobra.NoArgs,
	Example: `  mhz19 read --port /dev/ttyUSB0
  mhz19 read --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, cfg *config.Config, client *sensor.Client) error {
			reading, err := client.ReadConcentration(ctx)
			if err != nil {
				return fail(cmd, "Read failed", err)
			}
			if jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"port":        client.Port(),
					"ppm":         reading.PPM,
					"air_quality": ui.AirQuality(reading.PPM).Name,
				})
			}
			ui.NewPrinter(cmd.OutOrStdout()).PrintReading(client.Port(), reading.PPM)
			return nil
		})
	},
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Calibrate the zero or span point",
	Long: `Calibrate the sensor's zero point (400ppm) or span point.

Calibration overwrites the sensor's stored reference. Without --yes the
command asks for confirmation and refuses to run when stdin is not a
terminal.`,
}

var calibrateZeroCmd = &cobra.Command{
	Use:   "zero",
	Short: "Calibrate the zero point (current air is 400ppm)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmed(cmd, func() bool { return ui.ConfirmZeroCalibration(cmd.InOrStdin(), cmd.OutOrStdout()) }) {
			return fmt.Errorf("calibration not confirmed")
		}
		return withClient(cmd, func(ctx context.Context, cfg *config.Config, client *sensor.Client) error {
			if err := client.CalibrateZeroPoint(ctx); err != nil {
				return fail(cmd, "Zero point calibration failed", err)
			}
			return done(cmd, cfg, "Zero point calibrated",
				ui.Detail{Key: "Port", Value: client.Port()},
				ui.Detail{Key: "Reference", Value: "400 ppm"})
		})
	},
}

var calibrateSpanCmd = &cobra.Command{
	Use:   "span",
	Short: "Calibrate the span point against a reference gas",
	Args:  cobra.NoArgs,
	Example: `  mhz19 calibrate span --ppm 2000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Reject bad values before asking for confirmation
		if _, err := protocol.CalibrateSpanPointRequest(spanPPM); err != nil {
			return err
		}
		if !confirmed(cmd, func() bool { return ui.ConfirmSpanCalibration(cmd.InOrStdin(), cmd.OutOrStdout(), spanPPM) }) {
			return fmt.Errorf("calibration not confirmed")
		}
		return withClient(cmd, func(ctx context.Context, cfg *config.Config, client *sensor.Client) error {
			if err := client.CalibrateSpanPoint(ctx, spanPPM); err != nil {
				return fail(cmd, "Span point calibration failed", err)
			}
			return done(cmd, cfg, "Span point calibrated",
				ui.Detail{Key: "Port", Value: client.Port()},
				ui.Detail{Key: "Reference", Value: fmt.Sprintf("%d ppm", spanPPM)})
		})
	},
}

var rangeCmd = &cobra.Command{
	Use:       "range <2000|5000|10000>",
	Short:     "Set the detection range",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"2000", "5000", "10000"},
	RunE: func(cmd *cobra.Command, args []string) error {
		rangePPM, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid range %q: %w", args[0], err)
		}
		if _, err := protocol.SetDetectionRangeRequest(rangePPM); err != nil {
			return err
		}
		return withClient(cmd, func(ctx context.Context, cfg *config.Config, client *sensor.Client) error {
			if err := client.SetDetectionRange(ctx, rangePPM); err != nil {
				return fail(cmd, "Setting detection range failed", err)
			}
			return done(cmd, cfg, "Detection range set",
				ui.Detail{Key: "Port", Value: client.Port()},
				ui.Detail{Key: "Range", Value: fmt.Sprintf("0-%d ppm", rangePPM)})
		})
	},
}

var abcCmd = &cobra.Command{
	Use:       "abc <on|off>",
	Short:     "Enable or disable automatic baseline correction",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled bool
		switch args[0] {
		case "on":
			enabled = true
		case "off":
		default:
			return fmt.Errorf("invalid argument %q (want on or off)", args[0])
		}
		return withClient(cmd, func(ctx context.Context, cfg *config.Config, client *sensor.Client) error {
			if err := client.SetAutoBaselineCorrection(ctx, enabled); err != nil {
				return fail(cmd, "Setting ABC failed", err)
			}
			return done(cmd, cfg, "Automatic baseline correction "+args[0],
				ui.Detail{Key: "Port", Value: client.Port()})
		})
	},
}

// confirmed asks via prompt unless --yes was given or output is JSON.
func confirmed(cmd *cobra.Command, prompt func() bool) bool {
	if assumeYes {
		return true
	}
	if jsonOutput() || !ui.IsTerminal(os.Stdin) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Refusing to calibrate without confirmation; pass --yes")
		return false
	}
	return prompt()
}

// done reports a completed configuration command. Without acknowledgement the
// result is a warning since the sensor's reply was not checked.
func done(cmd *cobra.Command, cfg *config.Config, title string, details ...ui.Detail) error {
	if jsonOutput() {
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"result":       "ok",
			"acknowledged": cfg.Sensor.AwaitAck,
		})
	}
	p := ui.NewPrinter(cmd.OutOrStdout())
	if !cfg.Sensor.AwaitAck {
		p.PrintWarning(title+" (not acknowledged)", details...)
		return nil
	}
	p.PrintSuccess(title, details...)
	return nil
}
