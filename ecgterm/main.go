package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/render"
	"github.com/itohio/goecg/pkg/stream"
	"github.com/itohio/goecg/pkg/surface/term"
)

// mvRange is the vertical span in millivolts that fills the terminal.
const mvRange = 3.0

func main() {
	configFile := flag.String("config", "config.yaml", "Configuration file path")
	fps := flag.Int("fps", 0, "Target frames per second (default: realtime.fps)")
	rate := flag.Int("rate", 0, "Sampling rate override in Hz")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *rate > 0 {
		cfg.Display.SamplingRateHz = *rate
	}
	if *fps > 0 {
		cfg.Realtime.FPS = *fps
	}

	s, err := stream.New(cfg, stream.Realtime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating stream: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.Foreground(tcell.ColorWhite))
	screen.Clear()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error starting stream: %v\n", err)
		os.Exit(1)
	}
	defer s.Stop()

	v := newViewer(cfg, s)
	v.resize(screen.Size())

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Realtime.FPS))
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	eventCh := make(chan tcell.Event, 32)
	quitEventLoop := make(chan struct{})
	defer close(quitEventLoop)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventCh <- ev:
			case <-quitEventLoop:
				return
			}
		}
	}()

	running := true
	for running {
		select {
		case <-sigCh:
			running = false

		case ev := <-eventCh:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					running = false
				case tcell.KeyRune:
					switch ev.Rune() {
					case 'q', 'Q':
						running = false
					case ' ':
						v.togglePause(ctx)
					case '+', '=':
						v.scaleGain(1.25)
					case '-', '_':
						v.scaleGain(1 / 1.25)
					}
				}
			case *tcell.EventResize:
				v.resize(screen.Size())
				screen.Sync()
			}

		case <-ticker.C:
			v.draw(screen)
		}
	}
}

// viewer adapts the paper geometry to the terminal so the configured window
// spans the full width.
type viewer struct {
	base    *config.Config
	stream  *stream.Stream
	strip   *render.Strip
	surface *term.Surface
	gain    float64
	gen     uint64
	err     error // Last start failure, shown in the status line
}

func newViewer(cfg *config.Config, s *stream.Stream) *viewer {
	v := &viewer{
		base:    cfg,
		stream:  s,
		surface: term.New(0, 0),
		gain:    cfg.Realtime.Gain,
	}
	v.strip = render.NewStrip(cfg, func() render.Data { return s.Buffer() })
	return v
}

// resize fits the canvas to the screen, leaving the last row for status.
func (v *viewer) resize(cols, rows int) {
	v.surface.Resize(cols, max(rows-1, 1))
	v.apply()
}

func (v *viewer) scaleGain(f float64) {
	v.gain = min(max(v.gain*f, 0.1), 10)
	v.apply()
}

func (v *viewer) togglePause(ctx context.Context) {
	// Redraw so the status line reflects the new state.
	v.gen++
	if v.stream.Running() {
		v.stream.Stop()
		return
	}
	v.err = v.stream.Start(ctx)
}

// apply derives a terminal config: dots per mm from width and window,
// amplitude so that mvRange fills the height.
func (v *viewer) apply() {
	w, h := v.surface.Size()
	cfg := v.base.Clone()

	window := cfg.Realtime.Window.Seconds()
	if w > 0 && window > 0 {
		cfg.Display.PixelsPerMM = float64(w) / (window * cfg.Display.TimeScale)
		cfg.Display.AmplitudeScale = float64(h) / mvRange / cfg.Display.PixelsPerMM
	}
	cfg.Display.GridSpacing = 5
	cfg.Realtime.Gain = v.gain
	cfg.Realtime.InterpolationSteps = 1

	v.strip.SetConfig(cfg)
	v.gen++
}

func (v *viewer) draw(screen tcell.Screen) {
	if !v.strip.Render(v.surface, render.View{Generation: v.gen}) {
		return
	}
	screen.Clear()
	v.surface.Render(screen, 0, 0)

	_, rows := screen.Size()
	status := fmt.Sprintf(" %d Hz  gain %.2f  [space] pause  [+/-] gain  [q] quit",
		v.base.Display.SamplingRateHz, v.gain)
	switch {
	case v.err != nil:
		status += "  ERROR: " + v.err.Error()
	case !v.stream.Running():
		status += "  PAUSED"
	}
	for i, r := range status {
		screen.SetContent(i, rows-1, r, nil, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}
	screen.Show()
}
