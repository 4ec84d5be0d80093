package viewport

import (
	"errors"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/goecg/pkg/config"
)

// ErrInvalidLayout is wrapped by every layout validation failure.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout describes a multi-row timeline: Rows rows of RowDuration each,
// RowWidth x RowHeight pixels, every row split into segments of SegmentDuration.
type Layout struct {
	RowDuration     time.Duration
	SegmentDuration time.Duration
	RowWidth        float32
	RowHeight       float32
	Rows            int
}

// LayoutFor derives the timeline layout from configuration for a row width in pixels.
// Rows cover the full retention horizon.
func LayoutFor(cfg *config.Config, width float32) Layout {
	tl := cfg.Timeline
	rows := 0
	if tl.RowDuration > 0 {
		rows = int((tl.Retention + tl.RowDuration - 1) / tl.RowDuration)
	}
	return Layout{
		RowDuration:     tl.RowDuration,
		SegmentDuration: tl.SegmentDuration,
		RowWidth:        width,
		RowHeight:       float32(tl.RowHeight),
		Rows:            rows,
	}
}

// Validate rejects layouts that would divide by zero.
func (l Layout) Validate() error {
	switch {
	case l.RowDuration <= 0:
		return fmt.Errorf("%w: row duration %v", ErrInvalidLayout, l.RowDuration)
	case l.SegmentDuration <= 0 || l.SegmentDuration > l.RowDuration:
		return fmt.Errorf("%w: segment duration %v", ErrInvalidLayout, l.SegmentDuration)
	case l.RowWidth <= 0 || l.RowHeight <= 0:
		return fmt.Errorf("%w: row size %vx%v", ErrInvalidLayout, l.RowWidth, l.RowHeight)
	case l.Rows <= 0:
		return fmt.Errorf("%w: %d rows", ErrInvalidLayout, l.Rows)
	}
	return nil
}

// SegmentsPerRow returns how many whole segments fit into a row.
func (l Layout) SegmentsPerRow() int {
	if l.SegmentDuration <= 0 {
		return 0
	}
	return int(l.RowDuration / l.SegmentDuration)
}

// TotalSegments returns the number of selectable segments.
func (l Layout) TotalSegments() int {
	return l.Rows * l.SegmentsPerRow()
}

// Span returns the time covered by all rows.
func (l Layout) Span() time.Duration {
	return time.Duration(l.Rows) * l.RowDuration
}

// ContentHeight returns the full scrollable height in pixels.
func (l Layout) ContentHeight() float32 {
	return float32(l.Rows) * l.RowHeight
}

// ClampScroll limits a scroll offset to the scrollable range for a viewport height.
func (l Layout) ClampScroll(scroll, viewHeight float32) float32 {
	maxScroll := math32.Max(0, l.ContentHeight()-viewHeight)
	return math32.Min(math32.Max(scroll, 0), maxScroll)
}

// VisibleRows returns the first and one-past-last row intersecting the viewport.
func (l Layout) VisibleRows(scroll, viewHeight float32) (first, last int) {
	if l.RowHeight <= 0 || l.Rows <= 0 {
		return 0, 0
	}
	first = int(math32.Floor(scroll / l.RowHeight))
	last = int(math32.Ceil((scroll + viewHeight) / l.RowHeight))
	return clampInt(first, 0, l.Rows), clampInt(last, 0, l.Rows)
}

// pixelsPerSecond is the horizontal scale of a row.
func (l Layout) pixelsPerSecond() float32 {
	return l.RowWidth / float32(l.RowDuration.Seconds())
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
