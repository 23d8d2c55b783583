package sensor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/muurk/mhz19/internal/config"
	"github.com/muurk/mhz19/internal/protocol"
	"github.com/muurk/mhz19/internal/transport"
)

// fakeSensor answers requests the way a healthy sensor would, unless a canned
// reply or error is set.
type fakeSensor struct {
	ppm      int
	reply    []byte
	err      error
	exchange []protocol.Frame
	sent     []protocol.Frame
	closed   bool
}

func (f *fakeSensor) Exchange(ctx context.Context, req protocol.Frame) ([]byte, error) {
	f.exchange = append(f.exchange, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	resp := protocol.Frame{protocol.StartByte, protocol.SensorAddress, req[2]}
	if req.Command() == protocol.ReadConcentration {
		resp[3], resp[4] = byte(f.ppm>>8), byte(f.ppm)
	}
	resp[8] = protocol.Checksum(resp[:])
	return resp.Bytes(), nil
}

func (f *fakeSensor) Send(ctx context.Context, req protocol.Frame) error {
	f.sent = append(f.sent, req)
	return f.err
}

func (f *fakeSensor) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSensor) Name() string { return "fake" }

func TestClient_ReadConcentration(t *testing.T) {
	fake := &fakeSensor{ppm: 812}
	client := New(fake, Options{AwaitAck: true})

	reading, err := client.ReadConcentration(context.Background())
	if err != nil {
		t.Fatalf("ReadConcentration() error = %v", err)
	}
	if reading.PPM != 812 {
		t.Errorf("PPM = %d, want 812", reading.PPM)
	}
	if diff := cmp.Diff([]protocol.Frame{protocol.ReadConcentrationRequest()}, fake.exchange); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_ReadConcentration_Errors(t *testing.T) {
	corrupt := []byte{0xFF, 0x01, 0x86, 0x02, 0x58, 0x00, 0x00, 0x00, 0x00}
	timeout := &transport.Error{Op: "read", Port: "fake", Err: transport.ErrTimeout}

	tests := []struct {
		name    string
		fake    *fakeSensor
		wantErr error
	}{
		{"checksum", &fakeSensor{reply: corrupt}, protocol.ErrChecksumMismatch},
		{"short", &fakeSensor{reply: corrupt[:5]}, protocol.ErrMalformedFrame},
		{"timeout", &fakeSensor{err: timeout}, transport.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := New(tt.fake, Options{AwaitAck: true})
			_, err := client.ReadConcentration(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReadConcentration() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_ConfigurationCommands(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
		want protocol.Frame
	}{
		{
			name: "zero",
			call: func(c *Client) error { return c.CalibrateZeroPoint(context.Background()) },
			want: protocol.CalibrateZeroPointRequest(),
		},
		{
			name: "span",
			call: func(c *Client) error { return c.CalibrateSpanPoint(context.Background(), 2000) },
			want: protocol.Frame{0xFF, 0x01, 0x88, 0x07, 0xD0, 0x00, 0x00, 0x00, 0xA0},
		},
		{
			name: "range",
			call: func(c *Client) error { return c.SetDetectionRange(context.Background(), 5000) },
			want: protocol.Frame{0xFF, 0x01, 0x99, 0x13, 0x88, 0x00, 0x00, 0x00, 0xCB},
		},
		{
			name: "abc",
			call: func(c *Client) error { return c.SetAutoBaselineCorrection(context.Background(), false) },
			want: protocol.SetAutoBaselineCorrectionRequest(false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" awaits ack", func(t *testing.T) {
			fake := &fakeSensor{}
			if err := tt.call(New(fake, Options{AwaitAck: true})); err != nil {
				t.Fatalf("error = %v", err)
			}
			if len(fake.exchange) != 1 || fake.exchange[0] != tt.want || len(fake.sent) != 0 {
				t.Errorf("exchange = %v, sent = %v", fake.exchange, fake.sent)
			}
		})
		t.Run(tt.name+" fire and forget", func(t *testing.T) {
			fake := &fakeSensor{}
			if err := tt.call(New(fake, Options{AwaitAck: false})); err != nil {
				t.Fatalf("error = %v", err)
			}
			if len(fake.sent) != 1 || fake.sent[0] != tt.want || len(fake.exchange) != 0 {
				t.Errorf("exchange = %v, sent = %v", fake.exchange, fake.sent)
			}
		})
	}
}

func TestClient_InvalidParameterNeverSent(t *testing.T) {
	fake := &fakeSensor{}
	client := New(fake, Options{AwaitAck: true})

	if err := client.CalibrateSpanPoint(context.Background(), 70000); !errors.Is(err, protocol.ErrInvalidParameter) {
		t.Errorf("CalibrateSpanPoint(70000) error = %v", err)
	}
	if err := client.SetDetectionRange(context.Background(), 1234); !errors.Is(err, protocol.ErrInvalidParameter) {
		t.Errorf("SetDetectionRange(1234) error = %v", err)
	}
	if len(fake.exchange)+len(fake.sent) != 0 {
		t.Errorf("invalid requests reached the transport: %v %v", fake.exchange, fake.sent)
	}
}

func TestClient_Apply(t *testing.T) {
	abc := true
	fake := &fakeSensor{}
	client := New(fake, Options{AwaitAck: true})

	err := client.Apply(context.Background(), &config.Sensor{DetectionRange: 2000, ABC: &abc})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	rng, _ := protocol.SetDetectionRangeRequest(2000)
	want := []protocol.Frame{rng, protocol.SetAutoBaselineCorrectionRequest(true)}
	if diff := cmp.Diff(want, fake.exchange); diff != "" {
		t.Errorf("Apply() requests mismatch (-want +got):\n%s", diff)
	}

	fake = &fakeSensor{}
	if err := New(fake, Options{}).Apply(context.Background(), &config.Sensor{}); err != nil {
		t.Fatalf("Apply(empty) error = %v", err)
	}
	if len(fake.exchange)+len(fake.sent) != 0 {
		t.Error("Apply(empty) should send nothing")
	}
}

func TestClient_Close(t *testing.T) {
	fake := &fakeSensor{}
	client := New(fake, Options{})
	if err := client.Close(); err != nil || !fake.closed {
		t.Errorf("Close() = %v, closed = %v", err, fake.closed)
	}
	if client.Port() != "fake" {
		t.Errorf("Port() = %q", client.Port())
	}
}
