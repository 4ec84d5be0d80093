package scope

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/goecg/pkg/render"
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	widget  *Widget
	surface *canvasSurface

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	r.widget.mu.RLock()
	defer r.widget.mu.RUnlock()
	return r.widget.minSize
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	if r.lastSize != size {
		r.lastSize = size
		r.surface.size = size
		// Keep the scroll offset inside the resized content
		r.widget.SetScroll(r.widget.Scroll())
		r.Refresh()
	}
}

// Refresh draws a new frame when the view inputs changed.
func (r *scopeRenderer) Refresh() {
	if r.surface.size.Width == 0 || r.surface.size.Height == 0 {
		return
	}

	view := render.View{
		Generation: r.widget.generation(),
		Scroll:     r.widget.Scroll(),
	}
	if r.widget.renderer.Render(r.surface, view) {
		canvas.Refresh(r.widget)
	}
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.surface.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}
