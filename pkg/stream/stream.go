// Package stream wires a sample source, a retention buffer and a producer
// into one running signal for a display mode.
package stream

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itohio/goecg/pkg/buffer"
	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/schedule"
	"github.com/itohio/goecg/pkg/synth"
)

// Mode selects which retention and producer cadence a stream uses.
type Mode int

const (
	// Realtime feeds the scrolling strip: short retention, frequent small batches.
	Realtime Mode = iota
	// Timeline feeds the multi-row timeline: long retention, large batches.
	Timeline
)

func (m Mode) String() string {
	switch m {
	case Realtime:
		return "realtime"
	case Timeline:
		return "timeline"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// params returns the retention horizon and producer interval of the mode.
func (m Mode) params(cfg *config.Config) (retention, interval time.Duration) {
	if m == Timeline {
		return cfg.Timeline.Retention, cfg.Timeline.ProducerInterval
	}
	return cfg.Realtime.Retention, cfg.Realtime.ProducerInterval
}

// Option configures a Stream.
type Option func(*Stream)

// WithClock sets the clock used for buffer eviction and seeding.
func WithClock(clock func() time.Time) Option {
	return func(s *Stream) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithRand sets the randomness of every generator the stream builds.
func WithRand(rnd synth.Rand) Option {
	return func(s *Stream) {
		s.rnd = rnd
	}
}

// Stream owns the generator, buffer and producer of one display mode.
//
// Reconfiguration builds a fresh generator and buffer and swaps the buffer
// atomically, so readers holding the previous buffer keep a consistent view
// and never observe a half-built one.
type Stream struct {
	mode  Mode
	clock func() time.Time
	rnd   synth.Rand

	mu       sync.Mutex
	cfg      *config.Config
	producer *schedule.Producer
	ctx      context.Context // Context of the last Start, reused on restart

	buf        atomic.Pointer[buffer.Buffer]
	generation atomic.Uint64

	callbacks []func()
	cbMu      sync.RWMutex
}

// New validates cfg and builds a seeded, stopped stream.
func New(cfg *config.Config, mode Mode, opts ...Option) (*Stream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create %s stream: %w", mode, err)
	}

	s := &Stream{
		mode:  mode,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	s.build(cfg.Clone())
	s.mu.Unlock()
	return s, nil
}

// Mode returns the display mode.
func (s *Stream) Mode() Mode {
	return s.mode
}

// Buffer returns the current buffer. It changes only on Reconfigure.
func (s *Stream) Buffer() *buffer.Buffer {
	return s.buf.Load()
}

// Generation returns a counter incremented by every configuration change.
func (s *Stream) Generation() uint64 {
	return s.generation.Load()
}

// Config returns a copy of the active configuration.
func (s *Stream) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Start begins producing. The context stops production when cancelled.
func (s *Stream) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.producer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start %s stream: %w", s.mode, err)
	}
	s.ctx = ctx
	return nil
}

// Stop halts production. It is idempotent and returns after the last batch
// has been appended.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.producer.Stop()
}

// Running reports whether the producer is active.
func (s *Stream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.producer.Running()
}

// Reconfigure applies a new configuration. An invalid configuration is
// rejected and the stream keeps running unchanged. Otherwise production
// stops, a fresh generator and buffer are built and seeded, the buffer is
// swapped in and production restarts if it was running under a live context.
func (s *Stream) Reconfigure(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("failed to reconfigure %s stream: %w", s.mode, err)
	}

	s.mu.Lock()
	// A stream whose context was cancelled stays stopped.
	restart := s.producer.Running() && s.ctx != nil && s.ctx.Err() == nil
	s.producer.Stop()
	s.build(cfg.Clone())

	var err error
	if restart {
		err = s.producer.Start(s.ctx)
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to restart %s stream: %w", s.mode, err)
	}
	log.Printf("stream: %s reconfigured (generation %d)", s.mode, s.Generation())
	s.notifyCallbacks()
	return nil
}

// OnUpdate registers a callback invoked after every append to the current
// buffer and after every reconfiguration. Callbacks run on the producer
// goroutine and must not block.
func (s *Stream) OnUpdate(callback func()) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, callback)
}

// build replaces generator, buffer and producer. Must hold s.mu.
func (s *Stream) build(cfg *config.Config) {
	retention, interval := s.mode.params(cfg)

	buf := buffer.New(retention, s.clock)
	buf.OnUpdate(func(uint64) {
		if s.buf.Load() == buf {
			s.notifyCallbacks()
		}
	})

	gen := synth.NewGenerator(cfg, s.rnd)
	p := schedule.NewProducer(gen, buf, cfg.Display.SamplingRateHz, interval, retention)
	p.SetClock(s.clock)
	p.Tick(s.clock())

	s.cfg = cfg
	s.producer = p
	s.buf.Store(buf)
	s.generation.Add(1)
}

func (s *Stream) notifyCallbacks() {
	s.cbMu.RLock()
	callbacks := slices.Clone(s.callbacks)
	s.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb()
		}
	}
}
