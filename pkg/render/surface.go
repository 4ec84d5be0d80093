package render

import (
	"image/color"

	"github.com/itohio/goecg/pkg/viewport"
)

// Rect is a pixel rectangle on a surface.
type Rect = viewport.Rect

// Point is a pixel position on a surface.
type Point struct {
	X, Y float32
}

// Op is a path operation.
type Op uint8

const (
	OpMoveTo Op = iota
	OpLineTo
)

// PathOp is one step of a path.
type PathOp struct {
	Op Op
	Point
}

// Path is a sequence of move-to/line-to operations. Renderers reuse paths
// between frames, so surfaces must not retain one after StrokePath returns.
type Path struct {
	Ops []PathOp
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float32) {
	p.Ops = append(p.Ops, PathOp{Op: OpMoveTo, Point: Point{X: x, Y: y}})
}

// LineTo extends the current subpath to (x, y). On an empty path it acts as MoveTo.
func (p *Path) LineTo(x, y float32) {
	op := OpLineTo
	if len(p.Ops) == 0 {
		op = OpMoveTo
	}
	p.Ops = append(p.Ops, PathOp{Op: op, Point: Point{X: x, Y: y}})
}

// Reset empties the path keeping its capacity.
func (p *Path) Reset() {
	p.Ops = p.Ops[:0]
}

// Empty reports whether the path has no operations.
func (p *Path) Empty() bool {
	return len(p.Ops) == 0
}

// Lines calls fn for every line segment of the path.
func (p *Path) Lines(fn func(a, b Point)) {
	var pen Point
	for _, op := range p.Ops {
		if op.Op == OpLineTo {
			fn(pen, op.Point)
		}
		pen = op.Point
	}
}

// Surface is the drawing capability renderers draw onto.
// Coordinates are pixels with the origin at the top-left corner.
type Surface interface {
	// Size returns the drawable size in pixels.
	Size() (width, height float32)
	// ClearRect erases everything drawn inside r to the surface background.
	ClearRect(r Rect)
	FillRect(r Rect, c color.Color)
	StrokePath(p *Path, c color.Color, width float32)
	// DrawText draws a single line of text with its top-left corner at (x, y).
	DrawText(x, y float32, text string, c color.Color, size float32)
}

// Palette holds the colors of a rendered view.
type Palette struct {
	Background color.Color
	GridMinor  color.Color
	GridMajor  color.Color
	Trace      color.Color
	Highlight  color.Color
	Label      color.Color
}

// DefaultPalette is a dark oscilloscope style palette.
var DefaultPalette = Palette{
	Background: color.RGBA{R: 20, G: 20, B: 20, A: 255},
	GridMinor:  color.RGBA{R: 40, G: 40, B: 40, A: 255},
	GridMajor:  color.RGBA{R: 75, G: 45, B: 45, A: 255},
	Trace:      color.RGBA{R: 255, G: 165, B: 0, A: 255},
	Highlight:  color.RGBA{R: 0, G: 100, B: 200, A: 90},
	Label:      color.RGBA{R: 150, G: 150, B: 150, A: 255},
}

const (
	traceWidth = 1.5
	gridWidth  = 1
	labelSize  = 11
)
