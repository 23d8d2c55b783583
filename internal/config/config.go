package config

import (
	"fmt"
	"time"

	"github.com/muurk/mhz19/internal/protocol"
)

// CurrentVersion is the only configuration file version understood.
const CurrentVersion = 1

// Defaults
const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 2 * time.Second
	DefaultListen      = ":9119"
	DefaultInterval    = 30 * time.Second
	DefaultTopic       = "mhz19/co2"
)

// Config represents the entire configuration file.
type Config struct {
	Version  int       `yaml:"version"`
	Sensor   *Sensor   `yaml:"sensor"`
	Exporter *Exporter `yaml:"exporter,omitempty"`
	MQTT     *MQTT     `yaml:"mqtt,omitempty"`
}

// Sensor describes the serial link and the desired sensor settings.
type Sensor struct {
	Port        string        `yaml:"port"`
	BaudRate    int           `yaml:"baud_rate,omitempty"`
	ReadTimeout time.Duration `yaml:"read_timeout,omitempty"`

	// AwaitAck makes configuration commands wait for the sensor's reply.
	// Some firmware revisions never answer them; set false for those.
	AwaitAck bool `yaml:"await_ack"`

	// Applied on startup by serve/monitor when set
	DetectionRange int   `yaml:"detection_range,omitempty"`
	ABC            *bool `yaml:"abc,omitempty"`
}

// Exporter configures the metrics/WebSocket server.
type Exporter struct {
	Listen   string        `yaml:"listen"`
	Interval time.Duration `yaml:"interval"`
	MDNS     bool          `yaml:"mdns"`
	Instance string        `yaml:"instance,omitempty"` // mDNS instance name, hostname when empty
}

// MQTT configures reading publication. An empty Broker disables it.
type MQTT struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	QoS      byte   `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Sensor: &Sensor{
			Port:        defaultPort(),
			BaudRate:    DefaultBaudRate,
			ReadTimeout: DefaultReadTimeout,
			AwaitAck:    true,
		},
		Exporter: &Exporter{
			Listen:   DefaultListen,
			Interval: DefaultInterval,
			MDNS:     true,
		},
		MQTT: &MQTT{
			Topic: DefaultTopic,
		},
	}
}

// applyDefaults fills zero values left by a partial file.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Sensor == nil {
		c.Sensor = d.Sensor
	}
	if c.Sensor.Port == "" {
		c.Sensor.Port = d.Sensor.Port
	}
	if c.Sensor.BaudRate == 0 {
		c.Sensor.BaudRate = DefaultBaudRate
	}
	if c.Sensor.ReadTimeout == 0 {
		c.Sensor.ReadTimeout = DefaultReadTimeout
	}
	if c.Exporter == nil {
		c.Exporter = d.Exporter
	}
	if c.Exporter.Listen == "" {
		c.Exporter.Listen = DefaultListen
	}
	if c.Exporter.Interval == 0 {
		c.Exporter.Interval = DefaultInterval
	}
	if c.MQTT == nil {
		c.MQTT = d.MQTT
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = DefaultTopic
	}
}

// Validate checks the configuration for values the sensor or the exporter
// cannot use.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.Sensor == nil {
		return fmt.Errorf("sensor section is required")
	}
	if c.Sensor.BaudRate != DefaultBaudRate {
		return fmt.Errorf("sensor.baud_rate: %d not supported, the sensor only speaks %d", c.Sensor.BaudRate, DefaultBaudRate)
	}
	if c.Sensor.ReadTimeout < 0 {
		return fmt.Errorf("sensor.read_timeout must be positive, got %s", c.Sensor.ReadTimeout)
	}
	if r := c.Sensor.DetectionRange; r != 0 {
		if _, err := protocol.SetDetectionRangeRequest(r); err != nil {
			return fmt.Errorf("sensor.detection_range: %w", err)
		}
	}
	if c.Exporter != nil && c.Exporter.Interval < time.Second {
		return fmt.Errorf("exporter.interval must be at least 1s, got %s", c.Exporter.Interval)
	}
	if c.MQTT != nil && c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	return nil
}

// MQTTEnabled reports whether readings should be published to a broker.
func (c *Config) MQTTEnabled() bool {
	return c.MQTT != nil && c.MQTT.Broker != ""
}
