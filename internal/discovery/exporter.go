package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Exporter is an exporter found on the network.
type Exporter struct {
	// Instance is the advertised instance name (e.g., "office")
	Instance string

	// Host is the mDNS hostname (e.g., "raspberrypi.local.")
	Host string

	// IP is the preferred address, IPv4 when available
	IP string

	Port int

	// Metadata holds the TXT records: "port", "path", "version"
	Metadata map[string]string

	DiscoveredAt time.Time
}

// String returns a human-readable description.
func (e *Exporter) String() string {
	return fmt.Sprintf("MH-Z19 exporter %q (%s) at %s:%d", e.Instance, e.Host, e.IP, e.Port)
}

// BaseURL returns the HTTP base URL of the exporter.
func (e *Exporter) BaseURL() string {
	return "http://" + net.JoinHostPort(e.IP, strconv.Itoa(e.Port))
}

// MetricsURL returns the Prometheus scrape URL.
func (e *Exporter) MetricsURL() string {
	path := e.GetMetadata(TXTPath)
	if path == "" {
		path = "/metrics"
	}
	return e.BaseURL() + path
}

// GetMetadata retrieves a metadata value by key, or "" if not present.
func (e *Exporter) GetMetadata(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}

