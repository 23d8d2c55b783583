package exporter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/mhz19/internal/logging"
	"github.com/muurk/mhz19/internal/protocol"
)

// Reader reads one concentration value. *sensor.Client implements it.
type Reader interface {
	ReadConcentration(ctx context.Context) (protocol.Reading, error)
}

// Sample is the outcome of one read attempt. PPM is only meaningful when Err
// is nil.
type Sample struct {
	PPM  int
	Time time.Time
	Err  error
}

// OK reports whether the read succeeded.
func (s Sample) OK() bool {
	return s.Err == nil
}

type sampleJSON struct {
	PPM    int       `json:"ppm"`
	Time   time.Time `json:"time"`
	Error  string    `json:"error,omitempty"`
	Result string    `json:"result"`
}

// MarshalJSON encodes the sample with the error as a string.
func (s Sample) MarshalJSON() ([]byte, error) {
	out := sampleJSON{PPM: s.PPM, Time: s.Time, Result: Result(s.Err)}
	if s.Err != nil {
		out.PPM = 0
		out.Error = s.Err.Error()
	}
	return json.Marshal(out)
}

// Poller reads the sensor periodically.
type Poller struct {
	reader   Reader
	interval time.Duration
	metrics  *Metrics
	now      func() time.Time

	mu     sync.RWMutex
	latest Sample
	has    bool
	subs   map[int]chan Sample
	nextID int
}

// NewPoller creates a poller. metrics may be nil.
func NewPoller(r Reader, interval time.Duration, metrics *Metrics) *Poller {
	return &Poller{
		reader:   r,
		interval: interval,
		metrics:  metrics,
		now:      time.Now,
		subs:     make(map[int]chan Sample),
	}
}

// Run polls immediately and then on every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	logging.Info("Polling sensor", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll performs a single read, records it and delivers it to subscribers.
func (p *Poller) Poll(ctx context.Context) Sample {
	reading, err := p.reader.ReadConcentration(ctx)
	s := Sample{PPM: reading.PPM, Time: p.now(), Err: err}
	if err != nil {
		logging.Warn("Sensor read failed",
			zap.String("result", Result(err)),
			zap.Error(err),
		)
	}

	if p.metrics != nil {
		p.metrics.Observe(s)
	}

	p.mu.Lock()
	p.latest = s
	p.has = true
	for id, ch := range p.subs {
		select {
		case ch <- s:
		default:
			logging.Debug("Dropping sample for slow subscriber", zap.Int("subscriber", id))
		}
	}
	p.mu.Unlock()

	return s
}

// Latest returns the most recent sample. ok is false until the first poll.
func (p *Poller) Latest() (s Sample, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.has
}

// Healthy reports whether the most recent read succeeded.
func (p *Poller) Healthy() bool {
	s, ok := p.Latest()
	return ok && s.OK()
}

// Subscribe returns a channel receiving every future sample and a function
// that cancels the subscription. Samples are dropped when the buffer is full.
func (p *Poller) Subscribe(buffer int) (<-chan Sample, func()) {
	ch := make(chan Sample, buffer)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
			close(ch)
		})
	}
}
