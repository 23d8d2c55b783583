// Package config loads and saves the mhz19 YAML configuration file.
//
// The file describes which serial port the sensor is attached to, how the
// sensor should be configured, and how the exporter publishes readings.
// Command-line flags override whatever the file says.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/mhz19/config.yaml or $HOME/.config/mhz19/config.yaml
//   - macOS: $HOME/.config/mhz19/config.yaml
//   - Windows: %LOCALAPPDATA%\mhz19\config.yaml
//
// # Example
//
//	version: 1
//	sensor:
//	  port: /dev/ttyUSB0
//	  read_timeout: 2s
//	  detection_range: 5000
//	  abc: false
//	exporter:
//	  listen: ":9119"
//	  interval: 30s
//	mqtt:
//	  broker: tcp://localhost:1883
//	  topic: home/office/co2
//
// A missing file is not an error: Load returns Default().
package config
