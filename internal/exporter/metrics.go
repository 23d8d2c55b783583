package exporter

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muurk/mhz19/internal/protocol"
	"github.com/muurk/mhz19/internal/transport"
)

// Read results used as the "result" label of mhz19_reads_total.
const (
	ResultOK        = "ok"
	ResultTimeout   = "timeout"
	ResultChecksum  = "checksum"
	ResultMalformed = "malformed"
	ResultError     = "error"
)

var results = []string{ResultOK, ResultTimeout, ResultChecksum, ResultMalformed, ResultError}

// NewRegistry creates a registry with the Go runtime and process collectors
// registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the Prometheus exposition handler for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics holds the sensor metrics.
type Metrics struct {
	CO2         prometheus.Gauge
	Reads       *prometheus.CounterVec // labels: result
	LastSuccess prometheus.Gauge
}

// NewMetrics creates the sensor metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CO2: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mhz19_co2_ppm",
			Help: "Last CO2 concentration read from the sensor, in ppm.",
		}),
		Reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mhz19_reads_total",
			Help: "Sensor read attempts by result.",
		}, []string{"result"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mhz19_last_success_timestamp_seconds",
			Help: "Unix time of the last successful sensor read.",
		}),
	}
	for _, r := range results {
		m.Reads.WithLabelValues(r)
	}
	reg.MustRegister(m.CO2, m.Reads, m.LastSuccess)
	return m
}

// Observe records one read attempt.
func (m *Metrics) Observe(s Sample) {
	m.Reads.WithLabelValues(Result(s.Err)).Inc()
	if s.Err != nil {
		return
	}
	m.CO2.Set(float64(s.PPM))
	m.LastSuccess.Set(float64(s.Time.UnixNano()) / 1e9)
}

// Result classifies a read error into one of the result labels.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, transport.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ResultTimeout
	case errors.Is(err, protocol.ErrChecksumMismatch):
		return ResultChecksum
	case errors.Is(err, protocol.ErrMalformedFrame):
		return ResultMalformed
	default:
		return ResultError
	}
}
