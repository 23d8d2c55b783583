// Package ui provides terminal UI components for the mhz19 CLI.
//
// Most commands follow a "run once and exit" pattern: a header naming the
// operation and port, then a success or failure box. Calibration commands
// first show a confirmation prompt because they overwrite the sensor's
// reference point. The monitor command runs an interactive Bubble Tea program
// that refreshes the reading on an interval.
//
// # Components
//
//   - Header: command banner showing operation name and parameters
//   - Result: success/failure/warning boxes with ordered details
//   - Confirm: typed confirmation for calibration
//   - Monitor: live concentration view with gauge, min/max and air quality band
//
// # Logging Integration
//
// Logging is controlled by the MHZ19_LOG_LEVEL environment variable. When it is
// unset zap is silent, so the styled output is displayed cleanly.
//
// # Terminal Detection
//
// IsTerminal reports whether a stream is interactive. The CLI uses it to pick
// between the Bubble Tea monitor and plain line output.
package ui
