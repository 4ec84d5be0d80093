package schedule

import (
	"sync"
	"time"
)

// FrameLimiter drops frames requested faster than the target rate.
type FrameLimiter struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewFrameLimiter creates a limiter for fps frames per second.
// Non-positive fps disables limiting.
func NewFrameLimiter(fps int) *FrameLimiter {
	var interval time.Duration
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	}
	return &FrameLimiter{interval: interval}
}

// Interval returns the minimum spacing between allowed frames.
func (f *FrameLimiter) Interval() time.Duration {
	return f.interval
}

// Allow reports whether a frame may be drawn at now and, if so, records it.
func (f *FrameLimiter) Allow(now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.last.IsZero() && now.Sub(f.last) < f.interval {
		return false
	}
	f.last = now
	return true
}

// Reset forgets the last frame so the next request is always allowed.
func (f *FrameLimiter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = time.Time{}
}

// DrawLoop requests frames at twice the target rate and forwards the ones the
// limiter allows. The draw callback decides itself whether anything changed.
type DrawLoop struct {
	limiter *FrameLimiter
	ticker  *Ticker
}

// NewDrawLoop creates a stopped draw loop calling draw at most fps times per second.
func NewDrawLoop(fps int, draw func(now time.Time)) *DrawLoop {
	limiter := NewFrameLimiter(fps)
	request := limiter.Interval() / 2
	if request <= 0 {
		request = time.Second / 120
	}
	return &DrawLoop{
		limiter: limiter,
		ticker: NewTicker(request, func(now time.Time) {
			if limiter.Allow(now) {
				draw(now)
			}
		}),
	}
}

// Ticker exposes the underlying ticker for Start/Stop.
func (d *DrawLoop) Ticker() *Ticker {
	return d.ticker
}
