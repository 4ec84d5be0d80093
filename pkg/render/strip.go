package render

import (
	"sync"
	"time"

	"github.com/itohio/goecg/pkg/config"
)

// Strip renders the real-time scrolling strip: the trailing window of the
// buffer ending at the newest sample, which sits at the right edge.
type Strip struct {
	frameCache

	Palette Palette

	mu   sync.Mutex
	cfg  *config.Config
	data func() Data
	path Path
}

// NewStrip creates a strip renderer reading from data on every frame.
func NewStrip(cfg *config.Config, data func() Data) *Strip {
	return &Strip{
		Palette: DefaultPalette,
		cfg:     cfg,
		data:    data,
	}
}

// SetConfig replaces the configuration and forces a redraw.
func (r *Strip) SetConfig(cfg *config.Config) {
	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()
	r.Invalidate()
}

// Render draws grid, trace and lead label.
func (r *Strip) Render(s Surface, view View) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := r.data()
	w, h := s.Size()
	if !r.changed(Frame{Version: data.Version(), Generation: view.Generation, Width: w, Height: h}) {
		return false
	}

	d := r.cfg.Display
	full := Rect{W: w, H: h}
	s.ClearRect(full)
	Grid(s, full, float32(d.GridSpacing), float32(d.PixelsPerMM), r.Palette)

	if _, newest, ok := data.Bounds(); ok {
		samples := data.Query(newest.Add(-r.cfg.Realtime.Window), newest.Add(time.Nanosecond))
		proj := PaperProjection(d, r.cfg.Realtime.Gain, newest, w, h/2)

		r.path.Reset()
		Trace(&r.path, proj, samples, r.cfg.Realtime.InterpolationSteps, 0, w)
		if !r.path.Empty() {
			s.StrokePath(&r.path, r.Palette.Trace, traceWidth)
		}
	}

	s.DrawText(4, 2, d.LeadLabel, r.Palette.Label, labelSize)
	return true
}
