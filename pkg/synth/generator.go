package synth

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/sample"
)

// Rand is the randomness the generator draws noise and beat variation from.
type Rand interface {
	Float64() float64
}

// Source produces right-anchored batches of samples.
type Source interface {
	Synthesize(durationSeconds float64, end time.Time) []sample.Sample
}

// Ensure Generator implements Source.
var _ Source = (*Generator)(nil)

// globalRand uses the process-wide unseeded source.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// deflection is one Gaussian bump of the beat, positioned in beat phase [0, 1).
type deflection struct {
	center    float64
	width     float64
	amplitude float64 // mV
}

// P, Q, R, S, T.
var deflections = [5]deflection{
	{center: 0.20, width: 0.025, amplitude: 0.15},
	{center: 0.36, width: 0.008, amplitude: -0.15},
	{center: 0.39, width: 0.010, amplitude: 1.20},
	{center: 0.42, width: 0.010, amplitude: -0.30},
	{center: 0.65, width: 0.045, amplitude: 0.35},
}

// Generator synthesizes an ECG-like signal.
// It keeps beat phase and baseline drift across calls so that consecutive
// batches join without discontinuities.
type Generator struct {
	cfg  config.SynthConfig
	rate int
	rnd  Rand

	mu sync.Mutex

	started bool
	epoch   time.Time
	last    time.Time
	phase   float64
	scales  [len(deflections)]float64

	driftFrom float64
	driftTo   float64
	driftAt   time.Time // When driftTo is reached and the next target is drawn
}

// NewGenerator creates a generator for the given configuration.
// A nil rnd uses the unseeded global source; tests pass a seeded one.
func NewGenerator(cfg *config.Config, rnd Rand) *Generator {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Generator{
		cfg:  cfg.Synth,
		rate: cfg.Display.SamplingRateHz,
		rnd:  rnd,
	}
}

// Synthesize returns floor(durationSeconds*rate) samples spaced 1/rate apart.
// The last sample is timestamped exactly at end and earlier samples step
// backwards, so batches whose ends differ by their duration tile without gap
// or overlap. Non-positive durations yield an empty batch.
func (g *Generator) Synthesize(durationSeconds float64, end time.Time) []sample.Sample {
	if durationSeconds <= 0 || g.rate <= 0 {
		return []sample.Sample{}
	}

	n := int(math.Floor(durationSeconds*float64(g.rate) + 1e-9))
	out := make([]sample.Sample, n)

	g.mu.Lock()
	defer g.mu.Unlock()

	step := float64(time.Second) / float64(g.rate)
	for i := range n {
		ts := end.Add(-time.Duration(math.Round(float64(n-1-i) * step)))
		out[i] = sample.Sample{Timestamp: ts, Value: g.next(ts)}
	}

	return out
}

// next advances the generator state to ts and returns the signal value there.
func (g *Generator) next(ts time.Time) float64 {
	if !g.started {
		g.started = true
		g.epoch = ts
		g.last = ts
		g.driftAt = ts.Add(g.cfg.DriftInterval)
		g.newBeat()
	}

	dt := ts.Sub(g.last).Seconds()
	if dt < 0 {
		dt = 0
	} else {
		g.last = ts
	}

	// Instantaneous heart rate, modulated by respiration.
	elapsed := ts.Sub(g.epoch).Seconds()
	hr := g.cfg.HeartRateBPM + g.cfg.HeartRateVariation*math.Sin(2*math.Pi*g.cfg.RespirationRateHz*elapsed)
	if hr < 1 {
		hr = 1
	}

	g.phase += dt * hr / 60
	for g.phase >= 1 {
		g.phase--
		g.newBeat()
	}

	var v float64
	for i, d := range deflections {
		v += g.scales[i] * d.amplitude * gauss(g.phase, d.center, d.width)
	}

	v += g.drift(ts)
	v += g.cfg.JitterAmplitude * (2*g.rnd.Float64() - 1)

	return v
}

// newBeat draws the per-beat amplitude scales.
func (g *Generator) newBeat() {
	for i := range g.scales {
		g.scales[i] = 1 + g.cfg.AmplitudeVariation*(2*g.rnd.Float64()-1)
	}
}

// drift returns the baseline wander at ts. The target value is redrawn once
// per drift interval and the baseline blends linearly towards it.
func (g *Generator) drift(ts time.Time) float64 {
	interval := g.cfg.DriftInterval
	if interval <= 0 || g.cfg.DriftAmplitude == 0 {
		return 0
	}

	// Long gaps restart the wander instead of replaying every missed tick.
	if ts.Sub(g.driftAt) > 10*interval {
		g.driftAt = ts
	}

	for !ts.Before(g.driftAt) {
		g.driftFrom = g.driftTo
		step := g.cfg.DriftAmplitude * (2*g.rnd.Float64() - 1) / 2
		g.driftTo = clamp(g.driftTo+step, -g.cfg.DriftAmplitude, g.cfg.DriftAmplitude)
		g.driftAt = g.driftAt.Add(interval)
	}

	remaining := g.driftAt.Sub(ts).Seconds() / interval.Seconds()
	return g.driftTo + (g.driftFrom-g.driftTo)*remaining
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
