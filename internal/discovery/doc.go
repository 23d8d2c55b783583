// Package discovery advertises and finds exporters with mDNS.
//
// A running exporter registers itself as a "_mhz19._tcp" service so that
// other hosts on the segment can find it without knowing its address. TXT
// records carry the serial port name, the metrics path and the program
// version.
//
// # Usage Example
//
//	// Advertise an exporter listening on :9119
//	adv, err := discovery.Advertise("office", 9119, discovery.TXT("/dev/ttyUSB0", "1.2.0"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adv.Shutdown()
//
//	// Find exporters from another host
//	exporters, err := discovery.NewScanner().ScanForExporters(ctx)
//	for _, e := range exporters {
//	    fmt.Printf("%s at %s\n", e.Instance, e.MetricsURL())
//	}
//
// # Network Requirements
//
// Multicast must be allowed on the interface (UDP port 5353) and peers must be
// on the same network segment.
package discovery
