// Package raster implements render.Surface on an in-memory RGBA image.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/chewxy/math32"
	"github.com/itohio/goecg/pkg/render"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Surface draws onto an image.RGBA. Paths are stroked with an anti-aliased
// rasterizer; text uses a fixed 7x13 bitmap face regardless of size.
type Surface struct {
	img  *image.RGBA
	gc   *drawing.RasterGraphicContext
	bg   color.Color
	face font.Face
}

// New creates a surface of width x height pixels cleared to bg.
func New(width, height int, bg color.Color) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphic context: %w", err)
	}

	s := &Surface{
		img:  img,
		gc:   gc,
		bg:   bg,
		face: basicfont.Face7x13,
	}
	s.ClearRect(render.Rect{W: float32(width), H: float32(height)})
	return s, nil
}

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

func (s *Surface) Size() (float32, float32) {
	b := s.img.Bounds()
	return float32(b.Dx()), float32(b.Dy())
}

func (s *Surface) ClearRect(r render.Rect) {
	draw.Draw(s.img, toImageRect(r), image.NewUniform(s.bg), image.Point{}, draw.Src)
}

func (s *Surface) FillRect(r render.Rect, c color.Color) {
	draw.Draw(s.img, toImageRect(r), image.NewUniform(c), image.Point{}, draw.Over)
}

func (s *Surface) StrokePath(p *render.Path, c color.Color, width float32) {
	if p.Empty() {
		return
	}

	s.gc.BeginPath()
	for _, op := range p.Ops {
		switch op.Op {
		case render.OpMoveTo:
			s.gc.MoveTo(float64(op.X), float64(op.Y))
		case render.OpLineTo:
			s.gc.LineTo(float64(op.X), float64(op.Y))
		}
	}
	s.gc.SetStrokeColor(c)
	s.gc.SetLineWidth(float64(width))
	s.gc.Stroke()
}

// DrawText draws text with its top-left corner at (x, y). size is ignored.
func (s *Surface) DrawText(x, y float32, text string, c color.Color, size float32) {
	dr := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(x)),
			Y: fixed.I(int(y) + s.face.Metrics().Ascent.Ceil()),
		},
	}
	dr.DrawString(text)
}

// Encode writes the image as PNG.
func (s *Surface) Encode(w io.Writer) error {
	if err := png.Encode(w, s.img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// SavePNG writes the image to path.
func (s *Surface) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := s.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toImageRect(r render.Rect) image.Rectangle {
	return image.Rect(
		int(math32.Floor(r.X)),
		int(math32.Floor(r.Y)),
		int(math32.Ceil(r.X+r.W)),
		int(math32.Ceil(r.Y+r.H)),
	)
}
