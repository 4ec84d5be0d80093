package main

import (
	"fyne.io/fyne/v2"
)

// UpdateWidgetOnMainThread schedules a widget update function to run on the main Fyne thread.
// Stream callbacks fire on producer goroutines, and Fyne widgets cannot be
// updated from there directly.
func UpdateWidgetOnMainThread(callback func()) {
	if callback == nil {
		return
	}
	fyne.Do(callback)
}
