package render

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/sample"
)

// minGridPitch is the smallest minor grid pitch in pixels that is still drawn.
const minGridPitch = 2

// Projection maps sample time and value to pixels.
type Projection struct {
	Start       time.Time // Time at x = Left
	Left        float32
	Baseline    float32 // y of 0 mV
	PxPerSecond float32
	PxPerMV     float32
}

// PaperProjection projects at the configured paper speed and amplitude scale:
// X = Left + (t-start)*timeScale*ppm and Y = baseline - v*amplitudeScale*ppm*gain.
func PaperProjection(d config.DisplayConfig, gain float64, start time.Time, left, baseline float32) Projection {
	ppm := float32(d.PixelsPerMM)
	return Projection{
		Start:       start,
		Left:        left,
		Baseline:    baseline,
		PxPerSecond: float32(d.TimeScale) * ppm,
		PxPerMV:     float32(d.AmplitudeScale*gain) * ppm,
	}
}

// X returns the horizontal pixel of t.
func (p Projection) X(t time.Time) float32 {
	return p.Left + float32(t.Sub(p.Start).Seconds())*p.PxPerSecond
}

// Y returns the vertical pixel of v millivolts.
func (p Projection) Y(v float64) float32 {
	return p.Baseline - float32(v)*p.PxPerMV
}

// Time returns the time under pixel x.
func (p Projection) Time(x float32) time.Time {
	if p.PxPerSecond == 0 {
		return p.Start
	}
	return p.Start.Add(time.Duration(float64(x-p.Left) / float64(p.PxPerSecond) * float64(time.Second)))
}

// Grid draws paper grid lines over r: a minor line every spacingMM millimeters
// and a major line every fifth. Minor lines closer than minGridPitch pixels are skipped.
func Grid(s Surface, r Rect, spacingMM, ppm float32, pal Palette) {
	pitch := spacingMM * ppm
	if pitch <= 0 || r.W <= 0 || r.H <= 0 {
		return
	}
	drawMinor := pitch >= minGridPitch

	var minor, major Path
	pick := func(i int) *Path {
		if i%5 == 0 {
			return &major
		}
		if drawMinor {
			return &minor
		}
		return nil
	}

	cols := int(math32.Floor(r.W / pitch))
	for i := 0; i <= cols; i++ {
		if p := pick(i); p != nil {
			x := r.X + float32(i)*pitch
			p.MoveTo(x, r.Y)
			p.LineTo(x, r.Y+r.H)
		}
	}
	rows := int(math32.Floor(r.H / pitch))
	for i := 0; i <= rows; i++ {
		if p := pick(i); p != nil {
			y := r.Y + float32(i)*pitch
			p.MoveTo(r.X, y)
			p.LineTo(r.X+r.W, y)
		}
	}

	if !minor.Empty() {
		s.StrokePath(&minor, pal.GridMinor, gridWidth)
	}
	s.StrokePath(&major, pal.GridMajor, gridWidth)
}

// Trace appends samples to path as a polyline. Each consecutive pair is
// subdivided into steps linear segments. Points with x outside [left, right]
// are dropped; the first visible point after a dropped one starts with MoveTo.
func Trace(path *Path, proj Projection, samples []sample.Sample, steps int, left, right float32) {
	if steps < 1 {
		steps = 1
	}

	pen := false
	plot := func(s sample.Sample) {
		x := proj.X(s.Timestamp)
		if x < left || x > right {
			pen = false
			return
		}
		y := proj.Y(s.Value)
		if !pen {
			path.MoveTo(x, y)
			pen = true
			return
		}
		path.LineTo(x, y)
	}

	for i := range samples {
		if i > 0 {
			for k := 1; k < steps; k++ {
				plot(sample.Interpolate(samples[i-1], samples[i], float64(k)/float64(steps)))
			}
		}
		plot(samples[i])
	}
}
