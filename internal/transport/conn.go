package transport

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/muurk/mhz19/internal/logging"
	"github.com/muurk/mhz19/internal/protocol"
)

// Port is the subset of serial.Port a Conn needs. Tests substitute fakes.
type Port interface {
	io.ReadWriter
	io.Closer
	SetReadTimeout(t time.Duration) error
}

// inputResetter is implemented by serial.Port; fakes may omit it.
type inputResetter interface {
	ResetInputBuffer() error
}

const (
	// DefaultReadTimeout bounds a single exchange. The datasheet promises a
	// reply well within one second.
	DefaultReadTimeout = 2 * time.Second

	// pollSlice is the longest a single Read may block, so that context
	// cancellation is noticed promptly.
	pollSlice = 100 * time.Millisecond
)

// Options configures a Conn.
type Options struct {
	BaudRate    int           // 9600 when zero
	ReadTimeout time.Duration // DefaultReadTimeout when zero
}

func (o Options) withDefaults() Options {
	if o.BaudRate == 0 {
		o.BaudRate = 9600
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	return o
}

// Mode returns the serial mode the sensor requires: 8N1 at the given baud rate.
func Mode(baudRate int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// opener is swapped out in tests.
var opener = func(path string, mode *serial.Mode) (Port, error) {
	return serial.Open(path, mode)
}

// Conn is a request/response connection to one sensor. It is safe for
// concurrent use; exchanges are serialized.
type Conn struct {
	port Port
	name string
	opts Options

	mu     sync.Mutex
	closed bool
}

// Open opens the serial port at path configured for the sensor.
func Open(path string, opts Options) (*Conn, error) {
	opts = opts.withDefaults()

	port, err := opener(path, Mode(opts.BaudRate))
	if err != nil {
		return nil, &Error{Op: "open", Port: path, Err: err}
	}

	logging.Debug("Serial port opened",
		zap.String("port", path),
		zap.Int("baud_rate", opts.BaudRate),
		zap.Duration("read_timeout", opts.ReadTimeout),
	)

	return NewConn(port, path, opts), nil
}

// NewConn wraps an already opened port.
func NewConn(port Port, name string, opts Options) *Conn {
	return &Conn{
		port: port,
		name: name,
		opts: opts.withDefaults(),
	}
}

// Name returns the port name the connection was opened with.
func (c *Conn) Name() string {
	return c.name
}

// Exchange writes req and returns the next complete frame received.
//
// The read deadline is the earlier of ctx's deadline and the configured read
// timeout. Timeouts return an *Error matching ErrTimeout.
func (c *Conn) Exchange(ctx context.Context, req protocol.Frame) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.write(ctx, req); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.opts.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	buf, err := c.readFrame(ctx, deadline)
	if err != nil {
		return nil, err
	}

	logging.LogFrame("rx", c.name, buf)
	return buf, nil
}

// Send writes req without waiting for a reply.
func (c *Conn) Send(ctx context.Context, req protocol.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write(ctx, req)
}

// Close closes the underlying port.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.port.Close()
}

// write must be called with mu held.
func (c *Conn) write(ctx context.Context, req protocol.Frame) error {
	if c.closed {
		return &Error{Op: "write", Port: c.name, Err: ErrClosed}
	}
	if err := ctx.Err(); err != nil {
		return &Error{Op: "write", Port: c.name, Err: err}
	}

	// drop anything left over from an earlier, abandoned exchange
	if r, ok := c.port.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			logging.Warn("Failed to reset serial input buffer",
				zap.String("port", c.name),
				zap.Error(err),
			)
		}
	}

	logging.LogFrame("tx", c.name, req[:])

	if _, err := c.port.Write(req.Bytes()); err != nil {
		return &Error{Op: "write", Port: c.name, Err: err}
	}
	return nil
}

// readFrame reads until a start marker followed by 8 more bytes has arrived.
func (c *Conn) readFrame(ctx context.Context, deadline time.Time) ([]byte, error) {
	frame := make([]byte, 0, protocol.FrameSize)
	chunk := make([]byte, protocol.FrameSize)
	discarded := 0

	for len(frame) < protocol.FrameSize {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Op: "read", Port: c.name, Err: err}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &Error{Op: "read", Port: c.name,
				Err: fmt.Errorf("%w (got %d of %d bytes)", ErrTimeout, len(frame), protocol.FrameSize)}
		}
		if remaining > pollSlice {
			remaining = pollSlice
		}
		if err := c.port.SetReadTimeout(remaining); err != nil {
			return nil, &Error{Op: "read", Port: c.name, Err: err}
		}

		// never read past the end of the frame being assembled
		n, err := c.port.Read(chunk[:protocol.FrameSize-len(frame)])
		if err != nil && err != io.EOF {
			return nil, &Error{Op: "read", Port: c.name, Err: err}
		}

		for _, b := range chunk[:n] {
			if len(frame) == 0 && b != protocol.StartByte {
				discarded++
				continue
			}
			frame = append(frame, b)
		}
	}

	if discarded > 0 {
		logging.Debug("Discarded bytes before start marker",
			zap.String("port", c.name),
			zap.Int("count", discarded),
		)
	}

	return frame, nil
}
