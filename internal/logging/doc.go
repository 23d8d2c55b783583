// Package logging provides structured logging for the mhz19 tools.
//
// It wraps a package-global zap logger that is silent unless a level is
// requested, either explicitly or through the MHZ19_LOG_LEVEL environment
// variable. CLI commands therefore print only their own output by default.
//
// # Log Levels
//
//   - Debug: raw frame hex dumps, serial read details
//   - Info: readings, configuration commands, server lifecycle
//   - Warn: failed polls, dropped subscribers
//   - Error: startup failures
//
// # Usage
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	logging.LogFrame("tx", "/dev/ttyUSB0", req.Bytes())
//	logging.Info("Sensor configured", zap.Int("range_ppm", 5000))
//
// The protocol package never logs; only the transport, sensor client and
// exporter call into this package.
package logging
