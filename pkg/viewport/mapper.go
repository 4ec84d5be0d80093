package viewport

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/goecg/pkg/config"
)

// Rect is an axis-aligned rectangle in timeline content coordinates
// (y grows downwards from the top of row 0, independent of scrolling).
type Rect struct {
	X, Y, W, H float32
}

// Segment is one selectable sub-division of a timeline row.
type Segment struct {
	Row   int // Row index
	Index int // Segment index within the row
	ID    int // Absolute id: Row*SegmentsPerRow + Index
	Start time.Time
	End   time.Time // Exclusive
}

// Mapper converts between pointer coordinates, segments and time ranges.
// Row 0 starts at Origin.
type Mapper struct {
	Layout
	Origin time.Time
}

// NewMapper creates a mapper for a layout anchored at origin.
func NewMapper(layout Layout, origin time.Time) Mapper {
	return Mapper{Layout: layout, Origin: origin}
}

// OriginFor anchors a timeline so its last row ends at or after newest:
// the origin is newest minus the layout span, rounded down to a whole segment
// so segment boundaries stay put while data scrolls through.
func OriginFor(layout Layout, newest time.Time) time.Time {
	origin := newest.Add(-layout.Span())
	if layout.SegmentDuration > 0 {
		origin = origin.Truncate(layout.SegmentDuration).Add(layout.SegmentDuration)
	}
	return origin
}

// MapperFor builds the timeline mapper for a row width with the last row
// holding newest.
func MapperFor(cfg *config.Config, width float32, newest time.Time) Mapper {
	layout := LayoutFor(cfg, width)
	return NewMapper(layout, OriginFor(layout, newest))
}

// Locate maps a pointer position in viewport coordinates plus the vertical
// scroll offset to a segment. ok is false when the point lies outside the rows
// or the layout is invalid; callers treat that as a no-op.
func (m Mapper) Locate(x, y, scrollY float32) (seg Segment, ok bool) {
	if m.Validate() != nil {
		return Segment{}, false
	}
	if x < 0 || x >= m.RowWidth {
		return Segment{}, false
	}

	row := int(math32.Floor((y + scrollY) / m.RowHeight))
	if row < 0 || row >= m.Rows {
		return Segment{}, false
	}

	within := time.Duration(float64(x) / float64(m.pixelsPerSecond()) * float64(time.Second))
	index := int(within / m.SegmentDuration)
	index = clampInt(index, 0, m.SegmentsPerRow()-1)

	return m.Segment(row*m.SegmentsPerRow() + index)
}

// Segment returns the segment with the given absolute id.
func (m Mapper) Segment(id int) (Segment, bool) {
	per := m.SegmentsPerRow()
	if per <= 0 || id < 0 || id >= m.TotalSegments() {
		return Segment{}, false
	}

	row, index := id/per, id%per
	start := m.Origin.Add(time.Duration(row)*m.RowDuration + time.Duration(index)*m.SegmentDuration)
	return Segment{
		Row:   row,
		Index: index,
		ID:    id,
		Start: start,
		End:   start.Add(m.SegmentDuration),
	}, true
}

// SegmentAt returns the segment containing t.
func (m Mapper) SegmentAt(t time.Time) (Segment, bool) {
	if m.SegmentDuration <= 0 || t.Before(m.Origin) {
		return Segment{}, false
	}
	offset := t.Sub(m.Origin)
	row := int(offset / m.RowDuration)
	index := int((offset % m.RowDuration) / m.SegmentDuration)
	if index >= m.SegmentsPerRow() {
		return Segment{}, false
	}
	return m.Segment(row*m.SegmentsPerRow() + index)
}

// RowSpan returns the time range [start, end) covered by a row.
func (m Mapper) RowSpan(row int) (start, end time.Time) {
	start = m.Origin.Add(time.Duration(row) * m.RowDuration)
	return start, start.Add(m.RowDuration)
}

// RowRect returns the content rectangle of a row.
func (m Mapper) RowRect(row int) Rect {
	return Rect{X: 0, Y: float32(row) * m.RowHeight, W: m.RowWidth, H: m.RowHeight}
}

// SegmentRect returns the content rectangle of a segment.
func (m Mapper) SegmentRect(id int) (Rect, bool) {
	seg, ok := m.Segment(id)
	if !ok {
		return Rect{}, false
	}
	return m.RangeRect(seg.Start, seg.End)
}

// SegmentCenter returns the content coordinates of a segment's center.
func (m Mapper) SegmentCenter(id int) (x, y float32, ok bool) {
	r, ok := m.SegmentRect(id)
	if !ok {
		return 0, 0, false
	}
	return r.X + r.W/2, r.Y + r.H/2, true
}

// RangeRect maps a time range back to pixels. The range is clipped to the
// row containing start; ok is false when start lies outside the rows.
func (m Mapper) RangeRect(start, end time.Time) (Rect, bool) {
	if m.Validate() != nil || start.Before(m.Origin) || !start.Before(end) {
		return Rect{}, false
	}

	row := int(start.Sub(m.Origin) / m.RowDuration)
	if row >= m.Rows {
		return Rect{}, false
	}
	rowStart, rowEnd := m.RowSpan(row)
	if end.After(rowEnd) {
		end = rowEnd
	}

	pps := m.pixelsPerSecond()
	x0 := float32(start.Sub(rowStart).Seconds()) * pps
	x1 := float32(end.Sub(rowStart).Seconds()) * pps
	return Rect{X: x0, Y: float32(row) * m.RowHeight, W: x1 - x0, H: m.RowHeight}, true
}

// TimeAt returns the absolute time under pixel x of a row.
func (m Mapper) TimeAt(row int, x float32) time.Time {
	rowStart, _ := m.RowSpan(row)
	if m.RowWidth <= 0 {
		return rowStart
	}
	return rowStart.Add(time.Duration(float64(x) / float64(m.pixelsPerSecond()) * float64(time.Second)))
}
