package main

import (
	"context"
	"flag"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/render"
	"github.com/itohio/goecg/pkg/schedule"
	"github.com/itohio/goecg/pkg/scope"
	"github.com/itohio/goecg/pkg/stream"
	"github.com/itohio/goecg/pkg/viewport"
)

func main() {
	var (
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		snapshotFlag = flag.String("snapshot", "", "Render strip, timeline and detail PNGs with this path prefix and exit")
		widthFlag    = flag.Int("width", 1200, "Snapshot width in pixels")
		heightFlag   = flag.Int("height", 400, "Snapshot height in pixels")
		rateFlag     = flag.Int("rate", 0, "Sampling rate override in Hz")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *rateFlag > 0 {
		cfg.Display.SamplingRateHz = *rateFlag
	}

	if *snapshotFlag != "" {
		if err := runSnapshot(cfg, *snapshotFlag, *widthFlag, *heightFlag); err != nil {
			log.Fatalf("Failed to render snapshot: %v", err)
		}
		return
	}

	state, err := newAppState(cfg, *configFlag)
	if err != nil {
		log.Fatalf("Failed to create streams: %v", err)
	}

	application := app.NewWithID("com.itohio.goecg")
	window := application.NewWindow("ECG Viewer")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()
	state.window = window

	state.createWidgets()
	toolbar := createToolbar(state)

	tabs := container.NewAppTabs(
		container.NewTabItem("Real-time", state.stripWidget),
		container.NewTabItem("Timeline", container.NewVSplit(state.timelineWidget, state.detailWidget)),
	)

	window.SetContent(container.NewBorder(toolbar, nil, nil, nil, tabs))
	window.SetOnClosed(state.stop)

	if err := state.start(); err != nil {
		log.Fatalf("Failed to start streams: %v", err)
	}
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg     *config.Config
	cfgPath string
	window  fyne.Window
	ctx     context.Context
	cancel  context.CancelFunc

	realtime *stream.Stream
	timeline *stream.Stream

	strip    *render.Strip
	rows     *render.Timeline
	detail   *render.Detail
	selector *viewport.Selector
	drawLoop *schedule.DrawLoop

	stripWidget    *scope.Widget
	timelineWidget *scope.Widget
	detailWidget   *scope.Widget
	playBtn        *widget.Button
}

func newAppState(cfg *config.Config, cfgPath string) (*appState, error) {
	realtime, err := stream.New(cfg, stream.Realtime)
	if err != nil {
		return nil, err
	}
	timeline, err := stream.New(cfg, stream.Timeline)
	if err != nil {
		return nil, err
	}

	state := &appState{
		cfg:      cfg,
		cfgPath:  cfgPath,
		realtime: realtime,
		timeline: timeline,
		selector: viewport.NewSelector(),
	}
	state.strip = render.NewStrip(cfg, func() render.Data { return realtime.Buffer() })
	state.rows = render.NewTimeline(cfg, func() render.Data { return timeline.Buffer() })
	state.detail = render.NewDetail(cfg)
	return state, nil
}

// createWidgets builds the three views and wires input and update callbacks.
func (s *appState) createWidgets() {
	s.stripWidget = scope.New(s.strip, s.realtime.Generation)

	s.timelineWidget = scope.New(s.rows, s.timeline.Generation)
	s.timelineWidget.SetScrollable(s.rows.ClampScroll)
	s.timelineWidget.OnTapped(func(x, y, scroll float32) {
		if _, ok := s.selector.Select(s.rows.Mapper(), s.timeline.Buffer(), x, y, scroll); !ok {
			log.Printf("Tap at %.0f,%.0f outside the timeline", x, y)
		}
	})

	s.detailWidget = scope.New(s.detail, s.timeline.Generation)
	s.detailWidget.SetMinSize(fyne.NewSize(400, 160))

	s.selector.OnSelect(func(sel viewport.Selection) {
		s.rows.Select(sel.Segment)
		s.detail.SetSelection(sel)
		UpdateWidgetOnMainThread(func() {
			s.timelineWidget.Refresh()
			s.detailWidget.Refresh()
		})
	})

	// The timeline receives one batch per producer interval, refresh on arrival.
	s.timeline.OnUpdate(func() {
		UpdateWidgetOnMainThread(s.timelineWidget.Refresh)
	})

	s.drawLoop = s.newDrawLoop(s.cfg.Realtime.FPS)
}

// newDrawLoop refreshes the strip at fps; the renderer skips frames without new data.
func (s *appState) newDrawLoop(fps int) *schedule.DrawLoop {
	return schedule.NewDrawLoop(fps, func(time.Time) {
		UpdateWidgetOnMainThread(s.stripWidget.Refresh)
	})
}

// setFPS replaces the draw loop, keeping it running if it was.
func (s *appState) setFPS(fps int) {
	running := s.drawLoop.Ticker().Running()
	s.drawLoop.Ticker().Stop()
	s.drawLoop = s.newDrawLoop(fps)
	if running {
		if err := s.drawLoop.Ticker().Start(s.ctx); err != nil {
			log.Printf("Failed to restart draw loop: %v", err)
		}
	}
}

// start begins production and drawing.
func (s *appState) start() error {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if err := s.realtime.Start(s.ctx); err != nil {
		return err
	}
	if err := s.timeline.Start(s.ctx); err != nil {
		s.realtime.Stop()
		return err
	}
	if err := s.drawLoop.Ticker().Start(s.ctx); err != nil {
		s.realtime.Stop()
		s.timeline.Stop()
		return err
	}
	return nil
}

// stop halts production and drawing. It is safe to call more than once.
func (s *appState) stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.drawLoop != nil {
		s.drawLoop.Ticker().Stop()
	}
	s.realtime.Stop()
	s.timeline.Stop()
}

// togglePause pauses or resumes both streams.
func (s *appState) togglePause() {
	if s.realtime.Running() {
		s.stop()
		s.playBtn.SetIcon(theme.MediaPlayIcon())
		return
	}
	if err := s.start(); err != nil {
		log.Printf("Failed to resume streams: %v", err)
		return
	}
	s.playBtn.SetIcon(theme.MediaPauseIcon())
}

// createToolbar creates the application toolbar with pause and settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	state.playBtn = widget.NewButtonWithIcon("", theme.MediaPauseIcon(), func() {
		state.togglePause()
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(state.playBtn, settingsBtn), // left
		nil, // right
		nil, // center
	)
}
