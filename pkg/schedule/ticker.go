package schedule

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRunning is returned when starting a ticker that is already running.
var ErrRunning = errors.New("already running")

// Ticker invokes a callback at a fixed interval on its own goroutine.
// Start and Stop may be called repeatedly; Stop waits until the goroutine has
// exited, so no callback fires after it returns.
type Ticker struct {
	interval time.Duration
	fn       func(now time.Time)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker creates a stopped ticker.
func NewTicker(interval time.Duration, fn func(now time.Time)) *Ticker {
	return &Ticker{
		interval: interval,
		fn:       fn,
	}
}

// Interval returns the tick interval.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Start begins ticking until ctx is cancelled or Stop is called.
func (t *Ticker) Start(ctx context.Context) error {
	if t.interval <= 0 {
		return errors.New("ticker interval must be positive")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.run(ctx, done)

	return nil
}

// Stop cancels the ticker and waits for the running callback, if any, to return.
// Stopping a stopped ticker is a no-op.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the ticker goroutine is active.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer func() {
		// Cancellation by the caller's context leaves the ticker stopped and
		// restartable. Stop may already have cleared the fields.
		t.mu.Lock()
		if t.done == done {
			t.cancel()
			t.cancel, t.done = nil, nil
		}
		t.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			// A tick can race with cancellation; cancellation wins.
			if ctx.Err() != nil {
				return
			}
			t.fn(now)
		}
	}
}
