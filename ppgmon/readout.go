package main

import (
	"fmt"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/beat"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/sample"
)

// updateReadout refreshes the toolbar BPM and temperature labels.
// Must be called on the main Fyne thread.
func updateReadout(state *appState, samples []sample.Sample, metrics beat.Metrics) {
	if len(samples) == 0 {
		return
	}
	latest := samples[len(samples)-1]

	// Prefer the host-side HRV estimate once enough intervals have been
	// collected; fall back to the BPM the firmware put in the packet.
	bpm := int(metrics.HeartRate + 0.5)
	if bpm == 0 {
		bpm = int(latest.BPM)
	}

	if bpm > 0 {
		state.bpmLabel.SetText(fmt.Sprintf("%d bpm", bpm))
	} else {
		state.bpmLabel.SetText("-- bpm")
	}
	state.tempLabel.SetText(fmt.Sprintf("%d°C", latest.Temp))
}

// resetReadout clears the toolbar labels after a disconnect.
func resetReadout(state *appState) {
	state.bpmLabel.SetText("-- bpm")
	state.tempLabel.SetText("--°C")
}
