// Package term implements render.Surface as a braille dot canvas for tcell
// screens. Every terminal cell holds 2x4 dots, one dot per surface pixel.
package term

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/gdamore/tcell/v2"
	"github.com/itohio/goecg/pkg/render"
)

const brailleBase rune = 0x2800

type label struct {
	col, row int
	text     string
	color    tcell.Color
}

// Surface is a braille canvas of cols x rows terminal cells.
type Surface struct {
	cols, rows int
	dots       [][]bool
	colors     [][]tcell.Color
	bg         [][]tcell.Color // Per cell background set by FillRect
	labels     []label
}

// New creates an empty canvas.
func New(cols, rows int) *Surface {
	s := &Surface{}
	s.Resize(cols, rows)
	return s
}

// Resize reallocates the canvas, dropping its content.
func (s *Surface) Resize(cols, rows int) {
	cols, rows = max(cols, 0), max(rows, 0)
	s.cols, s.rows = cols, rows
	s.dots = make([][]bool, rows*4)
	s.colors = make([][]tcell.Color, rows*4)
	for i := range s.dots {
		s.dots[i] = make([]bool, cols*2)
		s.colors[i] = make([]tcell.Color, cols*2)
	}
	s.bg = make([][]tcell.Color, rows)
	for i := range s.bg {
		s.bg[i] = make([]tcell.Color, cols)
	}
	s.labels = s.labels[:0]
}

// Cells returns the canvas size in terminal cells.
func (s *Surface) Cells() (cols, rows int) {
	return s.cols, s.rows
}

// Size returns the canvas size in dots.
func (s *Surface) Size() (float32, float32) {
	return float32(s.cols * 2), float32(s.rows * 4)
}

func (s *Surface) ClearRect(r render.Rect) {
	x0, y0, x1, y1 := s.dotRange(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.dots[y][x] = false
			s.colors[y][x] = tcell.ColorDefault
		}
	}
	for y := y0 / 4; y < (y1+3)/4 && y < s.rows; y++ {
		for x := x0 / 2; x < (x1+1)/2 && x < s.cols; x++ {
			s.bg[y][x] = tcell.ColorDefault
		}
	}

	kept := s.labels[:0]
	for _, l := range s.labels {
		if l.col*2 < x0 || l.col*2 >= x1 || l.row*4 < y0 || l.row*4 >= y1 {
			kept = append(kept, l)
		}
	}
	s.labels = kept
}

// FillRect sets the background of every cell the rectangle touches.
func (s *Surface) FillRect(r render.Rect, c color.Color) {
	x0, y0, x1, y1 := s.dotRange(r)
	tc := toColor(c)
	for y := y0 / 4; y < (y1+3)/4 && y < s.rows; y++ {
		for x := x0 / 2; x < (x1+1)/2 && x < s.cols; x++ {
			s.bg[y][x] = tc
		}
	}
}

func (s *Surface) StrokePath(p *render.Path, c color.Color, width float32) {
	tc := toColor(c)
	p.Lines(func(a, b render.Point) {
		s.drawLine(dot(a.X), dot(a.Y), dot(b.X), dot(b.Y), tc)
	})
}

// DrawText places text at the cell containing (x, y). size is ignored.
func (s *Surface) DrawText(x, y float32, text string, c color.Color, size float32) {
	s.labels = append(s.labels, label{
		col:   dot(x) / 2,
		row:   dot(y) / 4,
		text:  text,
		color: toColor(c),
	})
}

// Set lights a single dot.
func (s *Surface) Set(x, y int, c tcell.Color) {
	if x >= 0 && x < s.cols*2 && y >= 0 && y < s.rows*4 {
		s.dots[y][x] = true
		s.colors[y][x] = c
	}
}

// Cell returns the braille rune of a cell, brailleBase when empty.
func (s *Surface) Cell(col, row int) rune {
	r := brailleBase
	for dy := range 4 {
		for dx := range 2 {
			py, px := row*4+dy, col*2+dx
			if py < len(s.dots) && px < len(s.dots[py]) && s.dots[py][px] {
				r |= brailleBit(dx, dy)
			}
		}
	}
	return r
}

// Render copies the canvas onto screen at the given cell offset.
// The dot lowest and leftmost in a cell decides its color.
func (s *Surface) Render(screen tcell.Screen, offsetX, offsetY int) {
	for cy := range s.rows {
		for cx := range s.cols {
			braille := brailleBase
			fg := tcell.ColorDefault
			best := -1

			for dy := range 4 {
				for dx := range 2 {
					py, px := cy*4+dy, cx*2+dx
					if !s.dots[py][px] {
						continue
					}
					braille |= brailleBit(dx, dy)
					if priority := (3-dy)*2 + (1 - dx); priority > best {
						best = priority
						fg = s.colors[py][px]
					}
				}
			}

			bg := s.bg[cy][cx]
			if braille == brailleBase && bg == tcell.ColorDefault {
				continue
			}
			st := tcell.StyleDefault.Foreground(fg).Background(bg)
			screen.SetContent(offsetX+cx, offsetY+cy, braille, nil, st)
		}
	}

	for _, l := range s.labels {
		if l.row < 0 || l.row >= s.rows {
			continue
		}
		col := l.col
		for _, r := range l.text {
			if col >= s.cols {
				break
			}
			if col < 0 {
				col++
				continue
			}
			st := tcell.StyleDefault.Foreground(l.color).Background(s.bg[l.row][col])
			screen.SetContent(offsetX+col, offsetY+l.row, r, nil, st)
			col++
		}
	}
}

func (s *Surface) drawLine(x0, y0, x1, y1 int, c tcell.Color) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		s.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// dotRange clips r to the canvas in dots; the upper bounds are exclusive.
func (s *Surface) dotRange(r render.Rect) (x0, y0, x1, y1 int) {
	w, h := s.cols*2, s.rows*4
	x0 = clamp(int(math32.Floor(r.X)), 0, w)
	y0 = clamp(int(math32.Floor(r.Y)), 0, h)
	x1 = clamp(int(math32.Ceil(r.X+r.W)), 0, w)
	y1 = clamp(int(math32.Ceil(r.Y+r.H)), 0, h)
	return x0, y0, x1, y1
}

func brailleBit(x, y int) rune {
	offsets := [2][4]rune{
		{0x01, 0x02, 0x04, 0x40},
		{0x08, 0x10, 0x20, 0x80},
	}
	return offsets[x][y]
}

func toColor(c color.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

func dot(v float32) int {
	return int(math32.Floor(v))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
