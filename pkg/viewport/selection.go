package viewport

import (
	"slices"
	"sync"
	"time"

	"github.com/itohio/goecg/pkg/sample"
)

// Querier extracts a half-open time range of samples.
type Querier interface {
	Query(start, end time.Time) []sample.Sample
}

// Selection is delivered to selection callbacks.
type Selection struct {
	Index   int // Absolute segment id
	Segment Segment
	Samples []sample.Sample
}

// Selector tracks the single active segment selection. The last click wins.
type Selector struct {
	mu     sync.RWMutex
	active *Segment

	callbacks []func(Selection)
	cbMu      sync.RWMutex
}

// NewSelector creates a selector with no active selection.
func NewSelector() *Selector {
	return &Selector{}
}

// Select resolves a click to a segment, makes it active, extracts its samples
// and notifies callbacks. Clicks outside the timeline leave the current
// selection untouched and return false.
func (s *Selector) Select(m Mapper, q Querier, x, y, scrollY float32) (Selection, bool) {
	seg, ok := m.Locate(x, y, scrollY)
	if !ok {
		return Selection{}, false
	}
	return s.SelectSegment(seg, q), true
}

// SelectSegment makes seg active and notifies callbacks with its samples.
func (s *Selector) SelectSegment(seg Segment, q Querier) Selection {
	s.mu.Lock()
	s.active = &seg
	s.mu.Unlock()

	sel := Selection{
		Index:   seg.ID,
		Segment: seg,
		Samples: q.Query(seg.Start, seg.End),
	}
	s.notifyCallbacks(sel)
	return sel
}

// Active returns the active segment, if any.
func (s *Selector) Active() (Segment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return Segment{}, false
	}
	return *s.active, true
}

// Clear drops the active selection.
func (s *Selector) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
}

// OnSelect registers a callback invoked for every new selection.
func (s *Selector) OnSelect(callback func(Selection)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, callback)
}

func (s *Selector) notifyCallbacks(sel Selection) {
	s.cbMu.RLock()
	callbacks := slices.Clone(s.callbacks)
	s.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(sel)
		}
	}
}
