package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/mhz19/internal/discovery"
)

var scanTimeout time.Duration

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", discovery.DefaultScanTimeout, "How long to listen for advertisements")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Find exporters on the local network",
	Long: `Browse mDNS for _mhz19._tcp services advertised by 'mhz19 serve' and list
their addresses and metrics URLs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		out := cmd.OutOrStdout()
		if !jsonOutput() {
			fmt.Fprintf(out, "Scanning for exporters (timeout: %s)...\n\n", scanTimeout)
		}

		scanner := discovery.NewScanner()
		scanner.Timeout = scanTimeout
		exporters, err := scanner.ScanForExporters(ctx)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if jsonOutput() {
			type entry struct {
				Instance string            `json:"instance"`
				Host     string            `json:"host"`
				IP       string            `json:"ip"`
				Port     int               `json:"port"`
				Metrics  string            `json:"metrics_url"`
				Metadata map[string]string `json:"metadata,omitempty"`
			}
			list := make([]entry, 0, len(exporters))
			for _, e := range exporters {
				list = append(list, entry{e.Instance, e.Host, e.IP, e.Port, e.MetricsURL(), e.Metadata})
			}
			return writeJSON(out, list)
		}

		if len(exporters) == 0 {
			fmt.Fprintln(out, "No exporters found.")
			fmt.Fprintln(out, "\nTroubleshooting:")
			fmt.Fprintln(out, "  - Ensure 'mhz19 serve' is running without --no-mdns")
			fmt.Fprintln(out, "  - Check that multicast (UDP 5353) is allowed by the firewall")
			fmt.Fprintln(out, "  - Try increasing --scan-timeout")
			return nil
		}

		fmt.Fprintf(out, "Found %d exporter(s):\n\n", len(exporters))
		for i, e := range exporters {
			fmt.Fprintf(out, "%d. %s\n", i+1, e.Instance)
			fmt.Fprintf(out, "   Host:    %s\n", e.Host)
			fmt.Fprintf(out, "   Metrics: %s\n", e.MetricsURL())
			if port := e.GetMetadata(discovery.TXTSerialPort); port != "" {
				fmt.Fprintf(out, "   Sensor:  %s\n", port)
			}
			if v := e.GetMetadata(discovery.TXTVersion); v != "" {
				fmt.Fprintf(out, "   Version: %s\n", v)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}
