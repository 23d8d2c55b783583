// Package publish forwards sensor samples to an MQTT broker.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/mhz19/internal/config"
	"github.com/muurk/mhz19/internal/exporter"
	"github.com/muurk/mhz19/internal/logging"
)

// DefaultTimeout bounds connect and publish round trips.
const DefaultTimeout = 10 * time.Second

// mqttClient is the part of paho.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Message is the JSON payload published for each successful reading.
type Message struct {
	PPM  int       `json:"ppm"`
	Time time.Time `json:"time"`
}

// Payload encodes a sample as a publishable message.
func Payload(s exporter.Sample) ([]byte, error) {
	return json.Marshal(Message{PPM: s.PPM, Time: s.Time.UTC()})
}

// MQTTPublisher publishes readings to one topic.
type MQTTPublisher struct {
	client  mqttClient
	topic   string
	qos     byte
	retain  bool
	timeout time.Duration
}

// ClientOptions builds paho options from the configuration. Broker URLs with
// an "mqtt" scheme or none are treated as plain TCP.
func ClientOptions(cfg *config.MQTT) (*paho.ClientOptions, error) {
	broker := cfg.Broker
	if u, err := url.Parse(broker); err != nil || u.Host == "" {
		broker = "tcp://" + broker
	}
	u, err := url.Parse(broker)
	if err != nil {
		return nil, fmt.Errorf("invalid mqtt broker %q: %w", cfg.Broker, err)
	}
	scheme := u.Scheme
	if scheme == "mqtt" {
		scheme = "tcp"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(DefaultTimeout)

	clientID := cfg.ClientID
	if clientID == "" {
		host, _ := os.Hostname()
		clientID = "mhz19-" + host
	}
	opts.SetClientID(clientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetOnConnectHandler(func(paho.Client) {
		logging.Info("Connected to MQTT broker", zap.String("broker", u.Host))
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logging.Warn("MQTT connection lost", zap.Error(err))
	})
	return opts, nil
}

// NewMQTT connects to the configured broker.
func NewMQTT(cfg *config.MQTT) (*MQTTPublisher, error) {
	opts, err := ClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(DefaultTimeout) {
		return nil, fmt.Errorf("timed out connecting to mqtt broker %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", cfg.Broker, err)
	}
	return newPublisher(client, cfg), nil
}

func newPublisher(client mqttClient, cfg *config.MQTT) *MQTTPublisher {
	return &MQTTPublisher{
		client:  client,
		topic:   cfg.Topic,
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: DefaultTimeout,
	}
}

// Publish sends a successful sample. Failed reads are not published.
func (p *MQTTPublisher) Publish(s exporter.Sample) error {
	if !s.OK() {
		return nil
	}
	payload, err := Payload(s)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("timed out publishing to %s", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, err)
	}
	logging.Debug("Published reading", zap.String("topic", p.topic), zap.Int("ppm", s.PPM))
	return nil
}

// Run publishes every sample received until ctx is done or samples is closed.
// Publish failures are logged and do not stop the loop.
func (p *MQTTPublisher) Run(ctx context.Context, samples <-chan exporter.Sample) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-samples:
			if !ok {
				return
			}
			if err := p.Publish(s); err != nil {
				logging.Warn("MQTT publish failed", zap.Error(err))
			}
		}
	}
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
