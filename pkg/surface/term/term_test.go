package term

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/itohio/goecg/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func TestSize(t *testing.T) {
	s := New(40, 10)
	w, h := s.Size()
	assert.Equal(t, float32(80), w)
	assert.Equal(t, float32(40), h)

	cols, rows := s.Cells()
	assert.Equal(t, 40, cols)
	assert.Equal(t, 10, rows)
}

func TestStrokePath_HorizontalLine(t *testing.T) {
	s := New(5, 2)

	var p render.Path
	p.MoveTo(0, 0)
	p.LineTo(9, 0)
	s.StrokePath(&p, white, 1)

	for col := range 5 {
		assert.Equal(t, brailleBase|0x01|0x08, s.Cell(col, 0), "cell %d", col)
		assert.Equal(t, brailleBase, s.Cell(col, 1))
	}
}

func TestStrokePath_VerticalLine(t *testing.T) {
	s := New(2, 2)

	var p render.Path
	p.MoveTo(1, 0)
	p.LineTo(1, 7)
	s.StrokePath(&p, white, 1)

	full := brailleBase | 0x08 | 0x10 | 0x20 | 0x80
	assert.Equal(t, full, s.Cell(0, 0))
	assert.Equal(t, full, s.Cell(0, 1))
	assert.Equal(t, brailleBase, s.Cell(1, 0))
}

func TestSet_OutOfBoundsIgnored(t *testing.T) {
	s := New(2, 2)
	s.Set(-1, 0, tcell.ColorWhite)
	s.Set(4, 0, tcell.ColorWhite)
	s.Set(0, 8, tcell.ColorWhite)
	for row := range 2 {
		for col := range 2 {
			assert.Equal(t, brailleBase, s.Cell(col, row))
		}
	}
}

func TestClearRect(t *testing.T) {
	s := New(4, 1)
	var p render.Path
	p.MoveTo(0, 0)
	p.LineTo(7, 0)
	s.StrokePath(&p, white, 1)

	s.ClearRect(render.Rect{X: 0, Y: 0, W: 4, H: 4})
	assert.Equal(t, brailleBase, s.Cell(0, 0))
	assert.Equal(t, brailleBase, s.Cell(1, 0))
	assert.NotEqual(t, brailleBase, s.Cell(2, 0))
}

func TestRender(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(20, 5)

	s := New(10, 2)
	var p render.Path
	p.MoveTo(0, 0)
	p.LineTo(19, 0)
	s.StrokePath(&p, white, 1)
	s.FillRect(render.Rect{X: 0, Y: 4, W: 4, H: 4}, color.RGBA{B: 200, A: 255})
	s.DrawText(0, 4, "II", white, 11)

	s.Render(screen, 1, 1)

	r, _, _, _ := screen.GetContent(1, 1)
	assert.Equal(t, brailleBase|0x01|0x08, r)

	r, _, _, _ = screen.GetContent(1, 2)
	assert.Equal(t, 'I', r)
	r, _, st, _ := screen.GetContent(2, 2)
	assert.Equal(t, 'I', r)
	_, bg, _ := st.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 0, 200), bg)
}

func TestRender_StripOnCanvas(t *testing.T) {
	s := New(60, 12)
	w, h := s.Size()

	var p render.Path
	p.MoveTo(0, h/2)
	p.LineTo(w/2, 0)
	p.LineTo(w-1, h-1)
	s.StrokePath(&p, white, 1)

	lit := 0
	for row := range 12 {
		for col := range 60 {
			if s.Cell(col, row) != brailleBase {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 60)
}
