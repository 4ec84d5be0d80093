package render

import (
	"sync"
	"time"

	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/sample"
	"github.com/itohio/goecg/pkg/viewport"
)

// baselineRatio places 0 mV below the row center, leaving room for R peaks.
const baselineRatio = 0.6

// Timeline renders the multi-row timeline. Only rows intersecting the
// viewport are drawn; each row shows a decimated trace, grid, an optional
// HH:MM:SS label and the selection highlight.
type Timeline struct {
	frameCache

	Palette Palette

	mu       sync.Mutex
	cfg      *config.Config
	data     func() Data
	clock    func() time.Time
	mapper   viewport.Mapper
	selected *viewport.Segment
	dec      []sample.Sample
	path     Path
}

// NewTimeline creates a timeline renderer reading from data on every frame.
func NewTimeline(cfg *config.Config, data func() Data) *Timeline {
	return &Timeline{
		Palette: DefaultPalette,
		cfg:     cfg,
		data:    data,
		clock:   time.Now,
	}
}

// SetConfig replaces the configuration and forces a redraw.
func (r *Timeline) SetConfig(cfg *config.Config) {
	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()
	r.Invalidate()
}

// Select highlights seg.
func (r *Timeline) Select(seg viewport.Segment) {
	r.mu.Lock()
	r.selected = &seg
	r.mu.Unlock()
	r.Invalidate()
}

// ClearSelection removes the highlight.
func (r *Timeline) ClearSelection() {
	r.mu.Lock()
	r.selected = nil
	r.mu.Unlock()
	r.Invalidate()
}

// Mapper returns the mapper of the last drawn frame, so pointer input resolves
// against what is on screen.
func (r *Timeline) Mapper() viewport.Mapper {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mapper
}

// ClampScroll limits a scroll offset for a viewport of the given size.
func (r *Timeline) ClampScroll(scroll, width, height float32) float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return viewport.LayoutFor(r.cfg, width).ClampScroll(scroll, height)
}

// Render draws the visible rows.
func (r *Timeline) Render(s Surface, view View) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := r.data()
	w, h := s.Size()
	f := Frame{
		Version:    data.Version(),
		Generation: view.Generation,
		Width:      w,
		Height:     h,
		Scroll:     view.Scroll,
	}
	if r.selected != nil {
		f.Selection = r.selected.Start.UnixNano()
	}
	if !r.changed(f) {
		return false
	}

	_, newest, ok := data.Bounds()
	if !ok {
		newest = r.clock()
	}
	r.mapper = viewport.MapperFor(r.cfg, w, newest)

	s.ClearRect(Rect{W: w, H: h})
	if r.mapper.Validate() != nil {
		return true
	}

	scroll := r.mapper.ClampScroll(view.Scroll, h)
	first, last := r.mapper.VisibleRows(scroll, h)
	for row := first; row < last; row++ {
		r.drawRow(s, data, row, scroll)
	}
	return true
}

func (r *Timeline) drawRow(s Surface, data Data, row int, scroll float32) {
	m := r.mapper
	d := r.cfg.Display
	tl := r.cfg.Timeline

	rect := m.RowRect(row)
	rect.Y -= scroll
	start, end := m.RowSpan(row)

	if sel := r.selected; sel != nil && !sel.Start.Before(start) && sel.Start.Before(end) {
		if hl, ok := m.RangeRect(sel.Start, sel.End); ok {
			hl.Y -= scroll
			s.FillRect(hl, r.Palette.Highlight)
		}
	}

	Grid(s, rect, float32(d.GridSpacing), float32(d.PixelsPerMM), r.Palette)

	r.dec = sample.Decimate(r.dec, data.Query(start, end), int(rect.W/2))
	proj := Projection{
		Start:       start,
		Left:        rect.X,
		Baseline:    rect.Y + rect.H*baselineRatio,
		PxPerSecond: rect.W / float32(m.RowDuration.Seconds()),
		PxPerMV:     float32(d.AmplitudeScale*d.PixelsPerMM*tl.Gain),
	}
	r.path.Reset()
	Trace(&r.path, proj, r.dec, tl.InterpolationSteps, rect.X, rect.X+rect.W)
	if !r.path.Empty() {
		s.StrokePath(&r.path, r.Palette.Trace, traceWidth)
	}

	if tl.ShowLabels {
		s.DrawText(rect.X+4, rect.Y+2, start.Format("15:04:05"), r.Palette.Label, labelSize)
	}
}
