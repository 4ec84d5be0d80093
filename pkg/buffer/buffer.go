package buffer

import (
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/itohio/goecg/pkg/sample"
)

// Buffer is a time-ordered sample store with a sliding retention horizon.
//
// Internally samples live in a slice with a moving head index, so evicting
// from the front is O(1) amortized; the backing array is compacted once the
// dead prefix outgrows the live part. Externally the buffer exposes ordered
// copies (oldest first), never its internal storage.
type Buffer struct {
	horizon time.Duration
	clock   func() time.Time

	mu      sync.RWMutex
	data    []sample.Sample
	head    int    // Index of the oldest live sample in data
	version uint64 // Incremented on every mutation

	callbacks []func(version uint64)
	cbMu      sync.RWMutex
}

// New creates an empty buffer that keeps samples younger than horizon.
// A nil clock uses time.Now.
func New(horizon time.Duration, clock func() time.Time) *Buffer {
	if clock == nil {
		clock = time.Now
	}
	return &Buffer{
		horizon:   horizon,
		clock:     clock,
		data:      make([]sample.Sample, 0),
		callbacks: make([]func(version uint64), 0),
	}
}

// Horizon returns the retention horizon.
func (b *Buffer) Horizon() time.Duration {
	return b.horizon
}

// Append adds a batch and evicts every sample with timestamp <= cutoff.
//
// The clock is read once per call. The cutoff is max(now, newest) - horizon,
// so a batch stamped ahead of the clock cannot stretch the retained span past
// the horizon. A batch starting before the current tail is merged in place
// instead of concatenated; an unordered batch is sorted first. Among equal
// timestamps, samples already in the buffer come first.
func (b *Buffer) Append(batch []sample.Sample) {
	if len(batch) == 0 {
		return
	}

	now := b.clock()

	if !sample.IsOrdered(batch) {
		batch = slices.Clone(batch)
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].Timestamp.Before(batch[j].Timestamp)
		})
	}

	b.mu.Lock()

	live := b.data[b.head:]
	if len(live) == 0 || !batch[0].Timestamp.Before(live[len(live)-1].Timestamp) {
		b.data = append(b.data, batch...)
	} else {
		b.merge(batch)
	}

	newest := b.data[len(b.data)-1].Timestamp
	if newest.After(now) {
		now = newest
	}
	b.evict(now.Add(-b.horizon))
	b.version++
	version := b.version

	b.mu.Unlock()

	b.notifyCallbacks(version)
}

// merge inserts an ordered batch whose first sample precedes the current tail.
func (b *Buffer) merge(batch []sample.Sample) {
	live := b.data[b.head:]

	// Only the live suffix newer than the batch start has to move.
	split := sort.Search(len(live), func(i int) bool {
		return live[i].Timestamp.After(batch[0].Timestamp)
	})
	tail := slices.Clone(live[split:])

	merged := b.data[:b.head+split]
	i, j := 0, 0
	for i < len(tail) && j < len(batch) {
		if batch[j].Timestamp.Before(tail[i].Timestamp) {
			merged = append(merged, batch[j])
			j++
		} else {
			merged = append(merged, tail[i])
			i++
		}
	}
	merged = append(merged, tail[i:]...)
	merged = append(merged, batch[j:]...)
	b.data = merged
}

// evict drops samples at or before cutoff. Caller must hold the write lock.
func (b *Buffer) evict(cutoff time.Time) {
	live := b.data[b.head:]
	n := sort.Search(len(live), func(i int) bool {
		return live[i].Timestamp.After(cutoff)
	})
	b.head += n

	// Compact once more than half of the backing array is dead.
	if b.head > 0 && b.head >= len(b.data)-b.head {
		remaining := copy(b.data, b.data[b.head:])
		clear(b.data[remaining:])
		b.data = b.data[:remaining]
		b.head = 0
	}
}

// Snapshot returns a copy of all retained samples, oldest first.
// The copy stays valid after later appends.
func (b *Buffer) Snapshot() []sample.Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return slices.Clone(b.data[b.head:])
}

// Query returns a copy of the samples with start <= timestamp < end.
func (b *Buffer) Query(start, end time.Time) []sample.Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	live := b.data[b.head:]
	lo, hi := searchRange(live, start, end)
	result := make([]sample.Sample, hi-lo)
	copy(result, live[lo:hi])
	return result
}

// QueryMillis is Query with integer millisecond bounds.
func (b *Buffer) QueryMillis(startMs, endMs int64) []sample.Sample {
	return b.Query(sample.FromMillis(startMs), sample.FromMillis(endMs))
}

// Len returns the number of retained samples.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data) - b.head
}

// Bounds returns the oldest and newest retained timestamps.
func (b *Buffer) Bounds() (oldest, newest time.Time, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.data) == b.head {
		return time.Time{}, time.Time{}, false
	}
	return b.data[b.head].Timestamp, b.data[len(b.data)-1].Timestamp, true
}

// Version returns a counter that changes on every mutation. Renderers compare
// it between frames to skip redundant redraws.
func (b *Buffer) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// OnUpdate registers a callback invoked after every append with the new version.
// Callbacks run on the appending goroutine and should return quickly.
func (b *Buffer) OnUpdate(callback func(version uint64)) {
	b.cbMu.Lock()
	defer b.cbMu.Unlock()
	b.callbacks = append(b.callbacks, callback)
}

// notifyCallbacks invokes all registered callbacks without holding the data lock.
func (b *Buffer) notifyCallbacks(version uint64) {
	b.cbMu.RLock()
	callbacks := slices.Clone(b.callbacks)
	b.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(version)
		}
	}
}

// searchRange returns the index range of samples in [start, end).
func searchRange(samples []sample.Sample, start, end time.Time) (int, int) {
	if !start.Before(end) {
		return 0, 0
	}
	lo := sort.Search(len(samples), func(i int) bool {
		return !samples[i].Timestamp.Before(start)
	})
	hi := lo + sort.Search(len(samples)-lo, func(i int) bool {
		return !samples[lo+i].Timestamp.Before(end)
	})
	return lo, hi
}
