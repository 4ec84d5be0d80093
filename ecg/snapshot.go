package main

import (
	"fmt"
	"log"

	"github.com/itohio/goecg/pkg/config"
	"github.com/itohio/goecg/pkg/render"
	"github.com/itohio/goecg/pkg/stream"
	"github.com/itohio/goecg/pkg/surface/raster"
	"github.com/itohio/goecg/pkg/viewport"
)

// runSnapshot renders all three views of freshly seeded streams to
// <prefix>-strip.png, <prefix>-timeline.png and <prefix>-detail.png.
// The detail view shows the newest complete segment.
func runSnapshot(cfg *config.Config, prefix string, width, height int) error {
	realtime, err := stream.New(cfg, stream.Realtime)
	if err != nil {
		return err
	}
	timeline, err := stream.New(cfg, stream.Timeline)
	if err != nil {
		return err
	}

	strip := render.NewStrip(cfg, func() render.Data { return realtime.Buffer() })
	if err := renderPNG(strip, prefix+"-strip.png", width, height); err != nil {
		return err
	}

	rows := render.NewTimeline(cfg, func() render.Data { return timeline.Buffer() })
	tlSurface, err := raster.New(width, height, rows.Palette.Background)
	if err != nil {
		return err
	}
	rows.Render(tlSurface, render.View{})

	m := rows.Mapper()
	_, newest, ok := timeline.Buffer().Bounds()
	if !ok {
		return fmt.Errorf("timeline buffer is empty")
	}
	seg, ok := m.SegmentAt(newest.Add(-cfg.Timeline.SegmentDuration))
	if !ok {
		return fmt.Errorf("no segment before %s", newest.Format("15:04:05"))
	}

	detail := render.NewDetail(cfg)
	selector := viewport.NewSelector()
	selector.OnSelect(func(sel viewport.Selection) {
		rows.Select(sel.Segment)
		detail.SetSelection(sel)
	})
	selector.SelectSegment(seg, timeline.Buffer())

	// Scroll so the selected row is the last visible one.
	scroll := float32(seg.Row+1)*m.RowHeight - float32(height)
	rows.Render(tlSurface, render.View{Scroll: scroll})
	if err := tlSurface.SavePNG(prefix + "-timeline.png"); err != nil {
		return err
	}
	log.Printf("Saved %s-timeline.png", prefix)

	return renderPNG(detail, prefix+"-detail.png", width, height)
}

func renderPNG(r render.Renderer, path string, width, height int) error {
	s, err := raster.New(width, height, render.DefaultPalette.Background)
	if err != nil {
		return err
	}
	r.Render(s, render.View{})
	if err := s.SavePNG(path); err != nil {
		return err
	}
	log.Printf("Saved %s", path)
	return nil
}
