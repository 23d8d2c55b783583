package discovery

import "testing"

func TestExporter_String(t *testing.T) {
	e := &Exporter{Instance: "office", Host: "pi.local.", IP: "192.168.4.16", Port: 9119}

	expected := `MH-Z19 exporter "office" (pi.local.) at 192.168.4.16:9119`
	if e.String() != expected {
		t.Errorf("String() = %v, want %v", e.String(), expected)
	}
}

func TestExporter_URLs(t *testing.T) {
	tests := []struct {
		name        string
		exporter    *Exporter
		wantBase    string
		wantMetrics string
	}{
		{
			name:        "IPv4 default path",
			exporter:    &Exporter{IP: "192.168.4.16", Port: 9119},
			wantBase:    "http://192.168.4.16:9119",
			wantMetrics: "http://192.168.4.16:9119/metrics",
		},
		{
			name:        "IPv6",
			exporter:    &Exporter{IP: "fe80::1", Port: 9119},
			wantBase:    "http://[fe80::1]:9119",
			wantMetrics: "http://[fe80::1]:9119/metrics",
		},
		{
			name: "advertised path",
			exporter: &Exporter{IP: "10.0.0.5", Port: 8080,
				Metadata: map[string]string{TXTPath: "/co2/metrics"}},
			wantBase:    "http://10.0.0.5:8080",
			wantMetrics: "http://10.0.0.5:8080/co2/metrics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.exporter.BaseURL(); got != tt.wantBase {
				t.Errorf("BaseURL() = %v, want %v", got, tt.wantBase)
			}
			if got := tt.exporter.MetricsURL(); got != tt.wantMetrics {
				t.Errorf("MetricsURL() = %v, want %v", got, tt.wantMetrics)
			}
		})
	}
}

func TestExporter_GetMetadata(t *testing.T) {
	e := &Exporter{Metadata: map[string]string{TXTVersion: "1.2.0"}}
	if got := e.GetMetadata(TXTVersion); got != "1.2.0" {
		t.Errorf("GetMetadata(version) = %q", got)
	}
	if got := e.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q", got)
	}
	if got := (&Exporter{}).GetMetadata(TXTVersion); got != "" {
		t.Errorf("GetMetadata on nil map = %q", got)
	}
}
