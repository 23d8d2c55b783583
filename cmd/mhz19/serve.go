package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/mhz19/internal/config"
	"github.com/muurk/mhz19/internal/discovery"
	"github.com/muurk/mhz19/internal/exporter"
	"github.com/muurk/mhz19/internal/logging"
	"github.com/muurk/mhz19/internal/publish"
	"github.com/muurk/mhz19/internal/sensor"
	"github.com/muurk/mhz19/internal/version"
)

var (
	listenAddr   string
	pollInterval time.Duration
	noMDNS       bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().DurationVar(&pollInterval, "interval", 0, "Poll interval (overrides config)")
	serveCmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "Do not advertise via mDNS")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Prometheus exporter",
	Long: `Poll the sensor and serve the readings:

  /metrics      Prometheus metrics
  /healthz      200 when the last read succeeded
  /api/latest   latest reading as JSON
  /ws           WebSocket stream of readings

The exporter advertises itself as _mhz19._tcp via mDNS and, when mqtt.broker
is configured, publishes each reading to MQTT. Stop it with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, runServe)
	},
}

func runServe(ctx context.Context, cfg *config.Config, client *sensor.Client) error {
	if err := applyServeFlags(cfg); err != nil {
		return err
	}

	// Logging defaults to info for a long-running process
	if logLevel == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		if err := logging.Initialize("info"); err != nil {
			return err
		}
	}

	if err := client.Apply(ctx, cfg.Sensor); err != nil {
		logging.Warn("Failed to apply sensor settings", zap.Error(err))
	}

	reg := exporter.NewRegistry()
	poller := exporter.NewPoller(client, cfg.Exporter.Interval, exporter.NewMetrics(reg))
	server := exporter.NewServer(cfg.Exporter.Listen, poller, reg)

	ln, err := net.Listen("tcp", cfg.Exporter.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Exporter.Listen, err)
	}

	if cfg.Exporter.MDNS {
		instance := cfg.Exporter.Instance
		if instance == "" {
			instance, _ = os.Hostname()
		}
		port := ln.Addr().(*net.TCPAddr).Port
		adv, err := discovery.Advertise(instance, port, discovery.TXT(client.Port(), version.Version))
		if err != nil {
			logging.Warn("mDNS advertisement disabled", zap.Error(err))
		} else {
			defer adv.Shutdown()
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MQTTEnabled() {
		pub, err := publish.NewMQTT(cfg.MQTT)
		if err != nil {
			_ = ln.Close()
			return err
		}
		defer func() { _ = pub.Close() }()

		samples, unsubscribe := poller.Subscribe(4)
		defer unsubscribe()
		g.Go(func() error {
			pub.Run(ctx, samples)
			return nil
		})
	}

	g.Go(func() error { return poller.Run(ctx) })
	g.Go(func() error { return server.Serve(ctx, ln) })

	return g.Wait()
}

func applyServeFlags(cfg *config.Config) error {
	if listenAddr != "" {
		cfg.Exporter.Listen = listenAddr
	}
	if noMDNS {
		cfg.Exporter.MDNS = false
	}
	if pollInterval != 0 {
		cfg.Exporter.Interval = pollInterval
	}
	return cfg.Validate()
}
