package scope

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/goecg/pkg/render"
)

// canvasSurface implements render.Surface with Fyne canvas objects.
// Every drawn primitive becomes one object. Lines, rectangles and texts are
// pooled across frames and handed out again after a full clear.
type canvasSurface struct {
	size       fyne.Size
	background color.Color

	objects []fyne.CanvasObject
	lines   []*canvas.Line
	rects   []*canvas.Rectangle
	texts   []*canvas.Text

	// Pool entries handed out in the current frame
	usedLines, usedRects, usedTexts int
}

func newCanvasSurface(background color.Color) *canvasSurface {
	return &canvasSurface{background: background}
}

func (s *canvasSurface) Size() (float32, float32) {
	return s.size.Width, s.size.Height
}

// ClearRect drops all objects when r covers the whole surface and paints the
// background over r.
func (s *canvasSurface) ClearRect(r render.Rect) {
	if r.X <= 0 && r.Y <= 0 && r.X+r.W >= s.size.Width && r.Y+r.H >= s.size.Height {
		s.objects = s.objects[:0]
		s.usedLines, s.usedRects, s.usedTexts = 0, 0, 0
	}
	s.FillRect(r, s.background)
}

func (s *canvasSurface) FillRect(r render.Rect, c color.Color) {
	rect := s.rect()
	rect.FillColor = c
	rect.Move(fyne.NewPos(r.X, r.Y))
	rect.Resize(fyne.NewSize(r.W, r.H))
	s.objects = append(s.objects, rect)
}

func (s *canvasSurface) StrokePath(p *render.Path, c color.Color, width float32) {
	p.Lines(func(a, b render.Point) {
		line := s.line()
		line.StrokeColor = c
		line.StrokeWidth = width
		line.Position1 = fyne.NewPos(a.X, a.Y)
		line.Position2 = fyne.NewPos(b.X, b.Y)
		s.objects = append(s.objects, line)
	})
}

func (s *canvasSurface) DrawText(x, y float32, text string, c color.Color, size float32) {
	t := s.text()
	t.Text = text
	t.Color = c
	t.TextSize = size
	t.Alignment = fyne.TextAlignLeading
	t.Move(fyne.NewPos(x, y))
	s.objects = append(s.objects, t)
}

func (s *canvasSurface) line() *canvas.Line {
	if s.usedLines < len(s.lines) {
		l := s.lines[s.usedLines]
		s.usedLines++
		return l
	}
	l := canvas.NewLine(nil)
	s.lines = append(s.lines, l)
	s.usedLines++
	return l
}

func (s *canvasSurface) rect() *canvas.Rectangle {
	if s.usedRects < len(s.rects) {
		r := s.rects[s.usedRects]
		s.usedRects++
		return r
	}
	r := canvas.NewRectangle(nil)
	s.rects = append(s.rects, r)
	s.usedRects++
	return r
}

func (s *canvasSurface) text() *canvas.Text {
	if s.usedTexts < len(s.texts) {
		t := s.texts[s.usedTexts]
		s.usedTexts++
		return t
	}
	t := canvas.NewText("", nil)
	s.texts = append(s.texts, t)
	s.usedTexts++
	return t
}
