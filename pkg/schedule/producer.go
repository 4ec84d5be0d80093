package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/itohio/goecg/pkg/sample"
	"github.com/itohio/goecg/pkg/synth"
)

// Sink receives produced batches.
type Sink interface {
	Append(batch []sample.Sample)
}

// Producer periodically synthesizes samples and appends them to a sink.
//
// Batches are aligned to the sample grid rather than to wall-clock ticks:
// each batch ends exactly a whole number of sample periods after the previous
// one, so consecutive batches tile with constant spacing regardless of timer
// jitter. A late tick catches up with one larger batch of at most seed worth
// of samples; anything older is dropped, not queued.
type Producer struct {
	source synth.Source
	sink   Sink
	rateHz int
	seed   time.Duration
	ticker *Ticker
	clock  func() time.Time

	mu      sync.Mutex
	lastEnd time.Time
}

// NewProducer creates a producer ticking at interval. The first tick seeds
// the sink with seed worth of history ending at that tick.
func NewProducer(source synth.Source, sink Sink, rateHz int, interval, seed time.Duration) *Producer {
	p := &Producer{
		source: source,
		sink:   sink,
		rateHz: rateHz,
		seed:   seed,
		clock:  time.Now,
	}
	p.ticker = NewTicker(interval, func(now time.Time) { p.Tick(now) })
	return p
}

// SetClock replaces the clock used to seed on Start. Must be called before Start.
func (p *Producer) SetClock(clock func() time.Time) {
	if clock != nil {
		p.clock = clock
	}
}

// Start begins periodic production. The sink is seeded immediately.
func (p *Producer) Start(ctx context.Context) error {
	if p.ticker.Running() {
		return ErrRunning
	}
	p.Tick(p.clock())
	return p.ticker.Start(ctx)
}

// Stop halts production. It is idempotent.
func (p *Producer) Stop() {
	p.ticker.Stop()
}

// Running reports whether the producer is ticking.
func (p *Producer) Running() bool {
	return p.ticker.Running()
}

// Tick produces every sample on the grid up to now. It returns the number
// of samples appended.
func (p *Producer) Tick(now time.Time) int {
	period := sample.Period(p.rateHz)
	if period <= 0 {
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	limit := max(int(p.seed/period), 1)
	if p.lastEnd.IsZero() {
		return p.emit(limit, now)
	}

	elapsed := now.Sub(p.lastEnd)
	n := int(float64(elapsed) * float64(p.rateHz) / float64(time.Second))
	if n <= 0 {
		return 0
	}
	end := p.lastEnd.Add(time.Duration(float64(n) * float64(time.Second) / float64(p.rateHz)))
	// Samples older than the seed horizon would be evicted on append; skip them.
	return p.emit(min(n, limit), end)
}

// emit synthesizes n samples ending at end and appends them.
func (p *Producer) emit(n int, end time.Time) int {
	batch := p.source.Synthesize(float64(n)/float64(p.rateHz), end)
	if len(batch) == 0 {
		return 0
	}
	p.sink.Append(batch)
	p.lastEnd = end
	return len(batch)
}
