package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goecg/pkg/config"
)

// showSettingsDialog displays a settings dialog with tabs for the display and view options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createDisplayTab(state),
		createViewsTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(500, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(500, 400))
	d.Show()
}

// createDisplayTab creates the signal and paper configuration tab.
func createDisplayTab(state *appState) *container.TabItem {
	rateEntry := widget.NewEntry()
	rateEntry.SetText(strconv.Itoa(state.cfg.Display.SamplingRateHz))

	timeScaleEntry := widget.NewEntry()
	timeScaleEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Display.TimeScale))

	amplitudeEntry := widget.NewEntry()
	amplitudeEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Display.AmplitudeScale))

	gridEntry := widget.NewEntry()
	gridEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Display.GridSpacing))

	leadEntry := widget.NewEntry()
	leadEntry.SetText(state.cfg.Display.LeadLabel)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sampling Rate (Hz)", Widget: rateEntry},
			{Text: "Time Scale (mm/s)", Widget: timeScaleEntry},
			{Text: "Amplitude Scale (mm/mV)", Widget: amplitudeEntry},
			{Text: "Grid Spacing (mm)", Widget: gridEntry},
			{Text: "Lead Label", Widget: leadEntry},
		},
		OnSubmit: func() {
			cfg := state.cfg.Clone()
			if rate, err := strconv.Atoi(rateEntry.Text); err == nil {
				cfg.Display.SamplingRateHz = rate
			}
			if v, err := strconv.ParseFloat(timeScaleEntry.Text, 64); err == nil {
				cfg.Display.TimeScale = v
			}
			if v, err := strconv.ParseFloat(amplitudeEntry.Text, 64); err == nil {
				cfg.Display.AmplitudeScale = v
			}
			if v, err := strconv.ParseFloat(gridEntry.Text, 64); err == nil {
				cfg.Display.GridSpacing = v
			}
			cfg.Display.LeadLabel = leadEntry.Text
			applySettings(state, cfg)
		},
	}

	return container.NewTabItem("Display", form)
}

// createViewsTab creates the real-time, timeline and detail configuration tab.
func createViewsTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(state.cfg.Realtime.Window.String())

	fpsEntry := widget.NewEntry()
	fpsEntry.SetText(strconv.Itoa(state.cfg.Realtime.FPS))

	rowEntry := widget.NewEntry()
	rowEntry.SetText(state.cfg.Timeline.RowDuration.String())

	segmentEntry := widget.NewEntry()
	segmentEntry.SetText(state.cfg.Timeline.SegmentDuration.String())

	timelineGainEntry := widget.NewEntry()
	timelineGainEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Timeline.Gain))

	detailGainEntry := widget.NewEntry()
	detailGainEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Detail.Gain))

	labelsCheck := widget.NewCheck("", nil)
	labelsCheck.SetChecked(state.cfg.Timeline.ShowLabels)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Real-time Window", Widget: windowEntry},
			{Text: "Real-time FPS", Widget: fpsEntry},
			{Text: "Timeline Row Duration", Widget: rowEntry},
			{Text: "Timeline Segment Duration", Widget: segmentEntry},
			{Text: "Timeline Gain", Widget: timelineGainEntry},
			{Text: "Detail Gain", Widget: detailGainEntry},
			{Text: "Row Labels", Widget: labelsCheck},
		},
		OnSubmit: func() {
			cfg := state.cfg.Clone()
			if d, err := time.ParseDuration(windowEntry.Text); err == nil {
				cfg.Realtime.Window = d
				if cfg.Realtime.Retention < 2*d {
					cfg.Realtime.Retention = 2 * d
				}
			}
			if fps, err := strconv.Atoi(fpsEntry.Text); err == nil {
				cfg.Realtime.FPS = fps
			}
			if d, err := time.ParseDuration(rowEntry.Text); err == nil {
				cfg.Timeline.RowDuration = d
			}
			if d, err := time.ParseDuration(segmentEntry.Text); err == nil {
				cfg.Timeline.SegmentDuration = d
			}
			if v, err := strconv.ParseFloat(timelineGainEntry.Text, 64); err == nil {
				cfg.Timeline.Gain = v
			}
			if v, err := strconv.ParseFloat(detailGainEntry.Text, 64); err == nil {
				cfg.Detail.Gain = v
			}
			cfg.Timeline.ShowLabels = labelsCheck.Checked
			applySettings(state, cfg)
		},
	}

	return container.NewTabItem("Views", form)
}

// applySettings validates cfg, saves it and rebuilds the streams. The previous
// configuration stays active when validation fails.
func applySettings(state *appState, cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if err := cfg.Save(state.cfgPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}

	if err := state.realtime.Reconfigure(cfg); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if err := state.timeline.Reconfigure(cfg); err != nil {
		dialog.ShowError(err, state.window)
		return
	}

	if cfg.Realtime.FPS != state.cfg.Realtime.FPS {
		state.setFPS(cfg.Realtime.FPS)
	}
	state.cfg = cfg
	state.strip.SetConfig(cfg)
	state.rows.SetConfig(cfg)
	state.rows.ClearSelection()
	state.detail.SetConfig(cfg)
	state.detail.Clear()
	state.selector.Clear()

	state.stripWidget.Refresh()
	state.timelineWidget.SetScroll(state.timelineWidget.Scroll())
	state.timelineWidget.Refresh()
	state.detailWidget.Refresh()
}
