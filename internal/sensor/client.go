// Package sensor is the host-side client for one MH-Z19 family sensor.
//
// It joins the protocol codec to a transport: build the request, exchange it
// over the serial link, decode the reply. Invalid arguments are rejected by the
// codec before anything is written, and nothing is retried.
package sensor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/mhz19/internal/config"
	"github.com/muurk/mhz19/internal/logging"
	"github.com/muurk/mhz19/internal/protocol"
	"github.com/muurk/mhz19/internal/transport"
)

// Transceiver moves frames to and from the sensor. *transport.Conn implements it.
type Transceiver interface {
	Exchange(ctx context.Context, req protocol.Frame) ([]byte, error)
	Send(ctx context.Context, req protocol.Frame) error
	Close() error
	Name() string
}

// Options configures a Client.
type Options struct {
	// AwaitAck makes configuration commands read and validate the sensor's
	// reply. When false they are written and assumed to succeed.
	AwaitAck bool
}

// Client talks to a single sensor.
type Client struct {
	tr   Transceiver
	opts Options
}

// New creates a client over an open transceiver.
func New(tr Transceiver, opts Options) *Client {
	return &Client{tr: tr, opts: opts}
}

// Open opens the configured serial port and returns a client for it.
func Open(cfg *config.Sensor) (*Client, error) {
	conn, err := transport.Open(cfg.Port, transport.Options{
		BaudRate:    cfg.BaudRate,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	return New(conn, Options{AwaitAck: cfg.AwaitAck}), nil
}

// Port returns the name of the port the client talks to.
func (c *Client) Port() string {
	return c.tr.Name()
}

// Close releases the transport.
func (c *Client) Close() error {
	return c.tr.Close()
}

// Do sends cmd with params and returns the decoded response. For
// configuration commands with AwaitAck disabled it returns an Ack as soon as
// the request has been written.
func (c *Client) Do(ctx context.Context, cmd protocol.Command, params protocol.Params) (protocol.Response, error) {
	req, err := protocol.BuildRequest(cmd, params)
	if err != nil {
		return nil, err
	}

	if cmd != protocol.ReadConcentration && !c.opts.AwaitAck {
		if err := c.tr.Send(ctx, req); err != nil {
			return nil, err
		}
		return protocol.Ack{Command: cmd}, nil
	}

	buf, err := c.tr.Exchange(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := protocol.ParseResponse(buf, cmd)
	if err != nil {
		return nil, fmt.Errorf("%s response % X: %w", cmd, buf, err)
	}
	return resp, nil
}

// ReadConcentration reads the current CO2 concentration.
func (c *Client) ReadConcentration(ctx context.Context) (protocol.Reading, error) {
	resp, err := c.Do(ctx, protocol.ReadConcentration, protocol.Params{})
	if err != nil {
		return protocol.Reading{}, err
	}
	reading := resp.(protocol.Reading)
	logging.LogReading(c.Port(), reading.PPM)
	return reading, nil
}

// CalibrateZeroPoint tells the sensor its current environment is 400ppm.
func (c *Client) CalibrateZeroPoint(ctx context.Context) error {
	return c.configure(ctx, protocol.CalibrateZeroPoint, protocol.Params{})
}

// CalibrateSpanPoint tells the sensor its current environment is ppm.
func (c *Client) CalibrateSpanPoint(ctx context.Context, ppm int) error {
	return c.configure(ctx, protocol.CalibrateSpanPoint, protocol.Params{SpanPPM: ppm},
		zap.Int("span_ppm", ppm))
}

// SetDetectionRange selects the sensor's full-scale range.
func (c *Client) SetDetectionRange(ctx context.Context, rangePPM int) error {
	return c.configure(ctx, protocol.SetDetectionRange, protocol.Params{DetectionRange: rangePPM},
		zap.Int("range_ppm", rangePPM))
}

// SetAutoBaselineCorrection enables or disables ABC.
func (c *Client) SetAutoBaselineCorrection(ctx context.Context, enabled bool) error {
	return c.configure(ctx, protocol.SetAutoBaselineCorrection, protocol.Params{ABCEnabled: enabled},
		zap.Bool("enabled", enabled))
}

// Apply pushes the settings named in cfg (detection range, ABC) to the sensor.
// Unset fields are left alone.
func (c *Client) Apply(ctx context.Context, cfg *config.Sensor) error {
	if cfg.DetectionRange != 0 {
		if err := c.SetDetectionRange(ctx, cfg.DetectionRange); err != nil {
			return fmt.Errorf("failed to set detection range: %w", err)
		}
	}
	if cfg.ABC != nil {
		if err := c.SetAutoBaselineCorrection(ctx, *cfg.ABC); err != nil {
			return fmt.Errorf("failed to set automatic baseline correction: %w", err)
		}
	}
	return nil
}

func (c *Client) configure(ctx context.Context, cmd protocol.Command, params protocol.Params, fields ...zap.Field) error {
	if _, err := c.Do(ctx, cmd, params); err != nil {
		return err
	}
	logging.LogCommand(c.Port(), cmd.String(), append(fields, zap.Bool("acknowledged", c.opts.AwaitAck))...)
	return nil
}
