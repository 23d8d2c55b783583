// Mhz19 talks to MH-Z19, MH-Z19B and MH-Z14 CO2 sensors over a serial port.
//
// It reads the concentration, runs zero and span calibration, sets the
// detection range and automatic baseline correction, and can run as a
// Prometheus exporter that streams readings over WebSocket, advertises itself
// with mDNS and publishes to MQTT.
//
// Usage:
//
//	mhz19 [command] [flags]
//
// See 'mhz19 --help' for available commands.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/mhz19/internal/config"
	"github.com/muurk/mhz19/internal/logging"
	"github.com/muurk/mhz19/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	serialPort   string
	configPath   string
	logLevel     string
	readTimeout  time.Duration
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "mhz19",
	Short: "MH-Z19 CO2 sensor utility",
	Long: `A utility for MH-Z19, MH-Z19B and MH-Z14 CO2 sensors connected over UART.

Settings are read from the configuration file (see 'mhz19 config init');
flags override them. Logging is silent unless --log-level or MHZ19_LOG_LEVEL
is set.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Initialize(logLevel); err != nil {
			return err
		}
		switch outputFormat {
		case formatText, formatJSON:
			return nil
		default:
			return fmt.Errorf("unknown --format %q (want %s or %s)", outputFormat, formatText, formatJSON)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	Example: `  # Read the current concentration
  mhz19 read --port /dev/ttyUSB0

  # Run the Prometheus exporter
  mhz19 serve

  # Show the request frame for a span calibration without touching the port
  mhz19 frame encode calibrate-span 2000`,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&serialPort, "port", "p", "", "Serial port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $"+logging.LogLevelEnvVar+" or silent)")
	rootCmd.PersistentFlags().DurationVar(&readTimeout, "timeout", 0, "Response timeout (overrides config)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatText, "Output format (text, json)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mhz19 %s\n", version.Full())
	},
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Sensor.Port = serialPort
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Sensor.ReadTimeout = readTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
