package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/mhz19/internal/config"
	"github.com/muurk/mhz19/internal/exporter"
	"github.com/muurk/mhz19/internal/logging"
	"github.com/muurk/mhz19/internal/sensor"
	"github.com/muurk/mhz19/internal/ui"
)

var monitorInterval time.Duration

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 5*time.Second, "Time between reads")
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Show the concentration live",
	Long: `Read the sensor repeatedly and show the concentration, min/max and air
quality. On a terminal this is an interactive view; otherwise, or with
--format json, one line per reading is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if monitorInterval < time.Second {
			return fmt.Errorf("--interval must be at least 1s")
		}
		return withClient(cmd, func(ctx context.Context, cfg *config.Config, client *sensor.Client) error {
			if err := client.Apply(ctx, cfg.Sensor); err != nil {
				logging.Warn("Failed to apply sensor settings", zap.Error(err))
			}

			if !jsonOutput() && ui.IsTerminal(os.Stdout) {
				return ui.RunMonitor(ctx, client, ui.MonitorConfig{
					Port:        client.Port(),
					Interval:    monitorInterval,
					RangePPM:    cfg.Sensor.DetectionRange,
					ReadTimeout: cfg.Sensor.ReadTimeout,
				})
			}
			return monitorLines(ctx, cmd, client)
		})
	},
}

// monitorLines prints one line per poll until ctx is done.
func monitorLines(ctx context.Context, cmd *cobra.Command, client *sensor.Client) error {
	poller := exporter.NewPoller(client, monitorInterval, nil)
	samples, cancel := poller.Subscribe(1)
	defer cancel()

	go func() { _ = poller.Run(ctx) }()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-samples:
			switch {
			case jsonOutput():
				if err := writeJSON(out, s); err != nil {
					return err
				}
			case s.OK():
				fmt.Fprintf(out, "%s  %5d ppm  %s\n", s.Time.Format(time.TimeOnly), s.PPM, ui.AirQuality(s.PPM).Name)
			default:
				fmt.Fprintf(out, "%s  read failed: %v\n", s.Time.Format(time.TimeOnly), s.Err)
			}
		}
	}
}
