// Package exporter publishes sensor readings over HTTP.
//
// A Poller reads the sensor on a fixed interval, keeps the latest Sample and
// fans each one out to subscribers. The Server exposes the readings as
// Prometheus metrics, a JSON snapshot and a WebSocket stream:
//
//	GET /metrics      Prometheus text exposition
//	GET /healthz      200 once a read has succeeded, 503 before or after a failure
//	GET /api/latest   latest Sample as JSON
//	GET /ws           WebSocket, one JSON Sample per text message
//
// Example:
//
//	reg := exporter.NewRegistry()
//	poller := exporter.NewPoller(client, 30*time.Second, exporter.NewMetrics(reg))
//	go poller.Run(ctx)
//
//	srv := exporter.NewServer(":9119", poller, reg)
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
package exporter
