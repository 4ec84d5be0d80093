package schedule

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itohio/goecg/pkg/buffer"
	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/sample"
	"github.com/itohio/goecg/pkg/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink stores appended batches.
type recordingSink struct {
	mu      sync.Mutex
	batches [][]sample.Sample
}

func (r *recordingSink) Append(batch []sample.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
}

func (r *recordingSink) all() []sample.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sample.Sample
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func newGenerator(rate int) *synth.Generator {
	cfg := config.Default()
	cfg.Display.SamplingRateHz = rate
	return synth.NewGenerator(cfg, rand.New(rand.NewPCG(1, 2)))
}

func TestTicker_StartStop(t *testing.T) {
	var count atomic.Int32
	tk := NewTicker(5*time.Millisecond, func(time.Time) { count.Add(1) })

	require.NoError(t, tk.Start(context.Background()))
	assert.True(t, tk.Running())
	assert.ErrorIs(t, tk.Start(context.Background()), ErrRunning)

	assert.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, time.Millisecond)

	tk.Stop()
	assert.False(t, tk.Running())
	stopped := count.Load()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, count.Load(), "no callbacks after Stop returns")
}

func TestTicker_StopIdempotent(t *testing.T) {
	tk := NewTicker(time.Millisecond, func(time.Time) {})

	tk.Stop() // never started
	require.NoError(t, tk.Start(context.Background()))
	tk.Stop()
	tk.Stop()
	assert.False(t, tk.Running())

	// Restart after stop.
	require.NoError(t, tk.Start(context.Background()))
	tk.Stop()
}

func TestTicker_ContextCancel(t *testing.T) {
	var count atomic.Int32
	tk := NewTicker(2*time.Millisecond, func(time.Time) { count.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, tk.Start(ctx))
	assert.Eventually(t, func() bool { return count.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()

	// Stop still waits cleanly after the context is gone.
	tk.Stop()
	stopped := count.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, count.Load())
}

func TestTicker_ContextCancelAllowsRestart(t *testing.T) {
	var count atomic.Int32
	tk := NewTicker(2*time.Millisecond, func(time.Time) { count.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, tk.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !tk.Running() }, time.Second, time.Millisecond)
	stopped := count.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, count.Load(), "no callbacks after cancellation")

	require.NoError(t, tk.Start(context.Background()))
	assert.True(t, tk.Running())
	assert.Eventually(t, func() bool { return count.Load() > stopped }, time.Second, time.Millisecond)
	tk.Stop()
	assert.False(t, tk.Running())
}

func TestTicker_InvalidInterval(t *testing.T) {
	tk := NewTicker(0, func(time.Time) {})
	assert.Error(t, tk.Start(context.Background()))
	assert.False(t, tk.Running())
}

func TestProducer_SeedsHorizon(t *testing.T) {
	sink := &recordingSink{}
	p := NewProducer(newGenerator(250), sink, 250, 20*time.Second, 30*time.Minute)

	now := time.Unix(1700000000, 0)
	n := p.Tick(now)

	assert.Equal(t, 250*1800, n)
	all := sink.all()
	require.Len(t, all, 250*1800)
	assert.True(t, all[len(all)-1].Timestamp.Equal(now))
}

func TestProducer_TilesAcrossJitteryTicks(t *testing.T) {
	sink := &recordingSink{}
	rate := 128
	p := NewProducer(newGenerator(rate), sink, rate, 33*time.Millisecond, time.Second)

	now := time.Unix(1700000000, 0)
	p.Tick(now)

	rng := rand.New(rand.NewPCG(3, 4))
	for range 200 {
		now = now.Add(time.Duration(20+rng.IntN(30)) * time.Millisecond)
		p.Tick(now)
	}

	all := sink.all()
	require.True(t, sample.IsOrdered(all))
	want := float64(time.Second) / float64(rate)
	for i := 1; i < len(all); i++ {
		got := float64(all[i].Timestamp.Sub(all[i-1].Timestamp))
		require.InDelta(t, want, got, 2, "spacing at %d", i)
	}
	// Never produces ahead of the clock.
	assert.False(t, all[len(all)-1].Timestamp.After(now))
	assert.Less(t, now.Sub(all[len(all)-1].Timestamp), 8*time.Millisecond)
}

func TestProducer_EarlyTickProducesNothing(t *testing.T) {
	sink := &recordingSink{}
	p := NewProducer(newGenerator(250), sink, 250, 20*time.Second, time.Second)

	now := time.Unix(1700000000, 0)
	p.Tick(now)
	assert.Equal(t, 0, p.Tick(now.Add(3*time.Millisecond)))
	assert.Equal(t, 1, p.Tick(now.Add(4*time.Millisecond)))
	assert.Len(t, sink.batches, 2)
}

func TestProducer_LongGapCatchesUpWithinHorizon(t *testing.T) {
	sink := &recordingSink{}
	p := NewProducer(newGenerator(250), sink, 250, 33*time.Millisecond, 10*time.Second)

	now := time.Unix(1700000000, 0)
	require.Equal(t, 2500, p.Tick(now))

	later := now.Add(time.Hour)
	n := p.Tick(later)
	assert.Equal(t, 2500, n, "catch-up is bounded by the horizon")

	batch := sink.batches[1]
	require.Len(t, batch, 2500)
	assert.True(t, batch[len(batch)-1].Timestamp.Equal(later))
	assert.False(t, batch[0].Timestamp.Before(later.Add(-10*time.Second)))

	// Production continues on the same grid after the gap.
	assert.Equal(t, 5, p.Tick(later.Add(20*time.Millisecond)))
	all := sink.all()
	require.True(t, sample.IsOrdered(all))
	assert.Equal(t, 4*time.Millisecond, all[len(all)-1].Timestamp.Sub(all[len(all)-2].Timestamp))
}

func TestProducer_IntoBuffer(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	buf := buffer.New(10*time.Second, clock)
	p := NewProducer(newGenerator(250), buf, 250, 20*time.Second, 10*time.Second)

	p.Tick(now)
	assert.Equal(t, 2500, buf.Len())

	now = now.Add(20 * time.Second)
	p.Tick(now)
	oldest, newest, ok := buf.Bounds()
	require.True(t, ok)
	assert.LessOrEqual(t, newest.Sub(oldest), 10*time.Second)
	assert.True(t, newest.Equal(now))
}

func TestProducer_StartStop(t *testing.T) {
	sink := &recordingSink{}
	p := NewProducer(newGenerator(250), sink, 250, 5*time.Millisecond, 100*time.Millisecond)

	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.Running())
	assert.ErrorIs(t, p.Start(context.Background()), ErrRunning)

	assert.Eventually(t, func() bool { return len(sink.all()) > 25 }, time.Second, time.Millisecond)

	p.Stop()
	p.Stop()
	assert.False(t, p.Running())

	count := len(sink.all())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, count, len(sink.all()))
}

func TestFrameLimiter(t *testing.T) {
	f := NewFrameLimiter(30)
	now := time.Unix(1700000000, 0)

	assert.True(t, f.Allow(now))
	assert.False(t, f.Allow(now.Add(10*time.Millisecond)))
	assert.False(t, f.Allow(now.Add(33*time.Millisecond)))
	assert.True(t, f.Allow(now.Add(34*time.Millisecond)))

	f.Reset()
	assert.True(t, f.Allow(now.Add(35*time.Millisecond)))
}

func TestFrameLimiter_Unlimited(t *testing.T) {
	f := NewFrameLimiter(0)
	now := time.Unix(1700000000, 0)
	assert.True(t, f.Allow(now))
	assert.True(t, f.Allow(now))
}

func TestDrawLoop_RespectsTargetRate(t *testing.T) {
	var mu sync.Mutex
	var frames []time.Time
	loop := NewDrawLoop(50, func(now time.Time) {
		mu.Lock()
		frames = append(frames, now)
		mu.Unlock()
	})

	require.NoError(t, loop.Ticker().Start(context.Background()))
	time.Sleep(200 * time.Millisecond)
	loop.Ticker().Stop()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, frames)
	for i := 1; i < len(frames); i++ {
		assert.GreaterOrEqual(t, frames[i].Sub(frames[i-1]), 20*time.Millisecond)
	}
}
