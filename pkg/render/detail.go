package render

import (
	"fmt"
	"sync"

	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/sample"
	"github.com/itohio/goecg/pkg/viewport"
)

// Detail renders the selected segment across the whole surface.
type Detail struct {
	frameCache

	Palette Palette

	mu   sync.Mutex
	cfg  *config.Config
	sel  *viewport.Selection
	dec  []sample.Sample
	path Path
}

// NewDetail creates a detail renderer with nothing selected.
func NewDetail(cfg *config.Config) *Detail {
	return &Detail{
		Palette: DefaultPalette,
		cfg:     cfg,
	}
}

// SetConfig replaces the configuration and forces a redraw.
func (r *Detail) SetConfig(cfg *config.Config) {
	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()
	r.Invalidate()
}

// SetSelection shows sel. It can be used directly as a selection callback.
func (r *Detail) SetSelection(sel viewport.Selection) {
	r.mu.Lock()
	r.sel = &sel
	r.mu.Unlock()
	r.Invalidate()
}

// Clear drops the selection.
func (r *Detail) Clear() {
	r.mu.Lock()
	r.sel = nil
	r.mu.Unlock()
	r.Invalidate()
}

// Render draws grid, the selected samples and a caption.
func (r *Detail) Render(s Surface, view View) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, h := s.Size()
	f := Frame{Generation: view.Generation, Width: w, Height: h}
	if r.sel != nil {
		f.Version = uint64(len(r.sel.Samples))
		f.Selection = r.sel.Segment.Start.UnixNano()
	}
	if !r.changed(f) {
		return false
	}

	d := r.cfg.Display
	full := Rect{W: w, H: h}
	s.ClearRect(full)
	Grid(s, full, float32(d.GridSpacing), float32(d.PixelsPerMM), r.Palette)

	if r.sel == nil {
		return true
	}
	seg := r.sel.Segment

	samples := r.sel.Samples
	if budget := int(w); len(samples) > budget {
		r.dec = sample.Decimate(r.dec, samples, budget/2)
		samples = r.dec
	}

	span := seg.End.Sub(seg.Start).Seconds()
	if span > 0 && len(samples) > 0 {
		proj := Projection{
			Start:       seg.Start,
			Baseline:    h / 2,
			PxPerSecond: w / float32(span),
			PxPerMV:     float32(d.AmplitudeScale * d.PixelsPerMM * r.cfg.Detail.Gain),
		}
		r.path.Reset()
		Trace(&r.path, proj, samples, r.cfg.Detail.InterpolationSteps, 0, w)
		if !r.path.Empty() {
			s.StrokePath(&r.path, r.Palette.Trace, traceWidth)
		}
	}

	caption := fmt.Sprintf("%s  %s-%s", d.LeadLabel, seg.Start.Format("15:04:05"), seg.End.Format("15:04:05"))
	s.DrawText(4, 2, caption, r.Palette.Label, labelSize)
	return true
}
