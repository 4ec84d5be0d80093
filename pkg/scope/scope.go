package scope

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goecg/pkg/render"
)

// Ensure Widget handles pointer input.
var (
	_ fyne.Tappable   = (*Widget)(nil)
	_ fyne.Scrollable = (*Widget)(nil)
)

// Widget is a custom Fyne widget that displays one ECG view.
// Drawing is delegated to a render.Renderer, which skips frames whose inputs
// did not change.
type Widget struct {
	widget.BaseWidget

	renderer   render.Renderer
	generation func() uint64

	mu      sync.RWMutex
	scroll  float32
	clamp   func(scroll, width, height float32) float32 // nil disables scrolling
	onTap   func(x, y, scroll float32)
	minSize fyne.Size
}

// New creates a widget drawing with r. generation reports the configuration
// generation and may be nil.
func New(r render.Renderer, generation func() uint64) *Widget {
	if generation == nil {
		generation = func() uint64 { return 0 }
	}
	w := &Widget{
		renderer:   r,
		generation: generation,
		minSize:    fyne.NewSize(400, 200),
	}
	w.ExtendBaseWidget(w)
	return w
}

// SetMinSize sets the minimum widget size.
func (w *Widget) SetMinSize(size fyne.Size) {
	w.mu.Lock()
	w.minSize = size
	w.mu.Unlock()
	w.Refresh()
}

// SetScrollable enables vertical scrolling limited by clamp.
func (w *Widget) SetScrollable(clamp func(scroll, width, height float32) float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clamp = clamp
}

// OnTapped registers the tap handler. It receives the position in widget
// coordinates and the current scroll offset.
func (w *Widget) OnTapped(fn func(x, y, scroll float32)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onTap = fn
}

// Scroll returns the vertical scroll offset.
func (w *Widget) Scroll() float32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.scroll
}

// SetScroll moves the view to offset, clamped to the content.
func (w *Widget) SetScroll(offset float32) {
	size := w.Size()
	w.mu.Lock()
	if w.clamp == nil {
		w.mu.Unlock()
		return
	}
	w.scroll = w.clamp(offset, size.Width, size.Height)
	w.mu.Unlock()
	w.Refresh()
}

// Tapped implements fyne.Tappable.
func (w *Widget) Tapped(ev *fyne.PointEvent) {
	w.mu.RLock()
	fn, scroll := w.onTap, w.scroll
	w.mu.RUnlock()

	if fn != nil {
		fn(ev.Position.X, ev.Position.Y, scroll)
	}
}

// Scrolled implements fyne.Scrollable.
func (w *Widget) Scrolled(ev *fyne.ScrollEvent) {
	w.SetScroll(w.Scroll() - ev.Scrolled.DY)
}

// Invalidate forces the next refresh to redraw.
func (w *Widget) Invalidate() {
	w.renderer.Invalidate()
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	return &scopeRenderer{
		widget:  w,
		surface: newCanvasSurface(render.DefaultPalette.Background),
	}
}
