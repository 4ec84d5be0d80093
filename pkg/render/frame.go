package render

import (
	"sync"
	"time"

	"github.com/itohio/goecg/pkg/sample"
)

// Data is the read side of a retention buffer.
type Data interface {
	Query(start, end time.Time) []sample.Sample
	Bounds() (oldest, newest time.Time, ok bool)
	Version() uint64
}

// View carries the caller controlled part of a frame.
type View struct {
	Generation uint64  // Configuration generation
	Scroll     float32 // Vertical scroll offset in pixels
}

// Frame identifies everything a rendered image depends on.
// Rendering the same Frame twice produces the same image.
type Frame struct {
	Version    uint64
	Generation uint64
	Width      float32
	Height     float32
	Scroll     float32
	Selection  int64 // Selected segment start in Unix nanoseconds, 0 when none
}

// frameCache remembers the last drawn frame.
type frameCache struct {
	keyMu sync.Mutex
	last  Frame
	valid bool
}

// changed records f and reports whether it differs from the last drawn frame.
func (c *frameCache) changed(f Frame) bool {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()

	if c.valid && c.last == f {
		return false
	}
	c.last = f
	c.valid = true
	return true
}

// Invalidate forces the next Render to draw.
func (c *frameCache) Invalidate() {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	c.valid = false
}

// Renderer draws one view onto a surface.
type Renderer interface {
	// Render draws the view and reports whether anything was drawn.
	// It returns false without touching the surface when the frame is unchanged.
	Render(s Surface, view View) bool
	Invalidate()
}
