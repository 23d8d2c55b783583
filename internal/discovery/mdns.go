package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/mhz19/internal/logging"
)

const (
	// ServiceType is the mDNS service type exporters advertise
	ServiceType = "_mhz19._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultScanTimeout is the default time spent browsing
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is assumed when an entry carries no port
	DefaultPort = 9119
)

// TXT record keys
const (
	TXTSerialPort = "port"
	TXTPath       = "path"
	TXTVersion    = "version"
)

// TXT builds the TXT records for an exporter.
func TXT(serialPort, version string) []string {
	return []string{
		TXTSerialPort + "=" + serialPort,
		TXTPath + "=/metrics",
		TXTVersion + "=" + version,
	}
}

// Advertisement is a registered mDNS service.
type Advertisement struct {
	server *zeroconf.Server
}

// Advertise registers an exporter instance on all multicast interfaces.
func Advertise(instance string, port int, txt []string) (*Advertisement, error) {
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Advertising exporter via mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return &Advertisement{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertisement) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
}

// Scanner browses for exporters.
type Scanner struct {
	// Timeout is the maximum time spent browsing
	Timeout time.Duration
}

// NewScanner creates a scanner with default settings.
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForExporters browses until the timeout or ctx expires and returns every
// exporter seen, one entry per instance.
func (s *Scanner) ScanForExporters(ctx context.Context) ([]*Exporter, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)

	var mu sync.Mutex
	found := make(map[string]*Exporter)
	var order []string

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			exp := s.parseServiceEntry(entry)
			if exp == nil {
				continue
			}
			mu.Lock()
			if _, seen := found[exp.Instance]; !seen {
				order = append(order, exp.Instance)
			}
			found[exp.Instance] = exp
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	exporters := make([]*Exporter, 0, len(order))
	for _, name := range order {
		exporters = append(exporters, found[name])
	}
	return exporters, nil
}

// WaitForExporter browses until an exporter with the given instance name
// appears.
func (s *Scanner) WaitForExporter(ctx context.Context, instance string) (*Exporter, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	foundChan := make(chan *Exporter, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			exp := s.parseServiceEntry(entry)
			if exp != nil && exp.Instance == instance {
				foundChan <- exp
				cancel()
				return
			}
		}
	}()

	if err := resolver.Lookup(ctx, instance, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to look up mDNS service: %w", err)
	}

	select {
	case exp := <-foundChan:
		return exp, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("exporter %q not found within timeout", instance)
	}
}

// parseServiceEntry converts a zeroconf service entry to an Exporter.
// Returns nil for entries without an instance name or address.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Exporter {
	if entry == nil || entry.Instance == "" {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are "key=value", or a bare key
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Exporter{
		Instance:     entry.Instance,
		Host:         entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}
