package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/monitor"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/ppg"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	// Create tabs
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createDetectorTab(state),
		createMockTab(state),
	)

	// Create dialog with tabs as content
	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := ppg.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
		currentDisplay = currentPort
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {
		// Selection handler - will be called on submit
	})
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(fmt.Sprintf("%d", state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}

			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected // Fallback to selected text
				}

				// Check if port changed and device is connected
				portChanged := state.cfg.Serial.Port != selectedPort
				wasConnected := state.device != nil && state.device.IsConnected()

				state.cfg.Serial.Port = selectedPort
				if err := state.cfg.Save("config.yaml"); err != nil {
					dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
					return
				}

				// If port changed and device was connected, restart the measurement chain
				if portChanged && wasConnected {
					// Gracefully close old chain
					closeMeasurementChain(state.chain)
					state.chain = nil

					// Close old device
					if state.device != nil {
						state.device.Close()
						state.device = nil
					}

					// Reconnect with new port
					handleConnect(state)
				}
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createDetectorTab creates the beat detector configuration tab.
func createDetectorTab(state *appState) *container.TabItem {
	thresholdEntry := widget.NewEntry()
	thresholdEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Detector.Threshold))

	refractoryEntry := widget.NewEntry()
	refractoryEntry.SetText(state.cfg.Detector.Refractory.String())

	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Detector.WindowSeconds))

	smoothSamplesEntry := widget.NewEntry()
	smoothSamplesEntry.SetText(fmt.Sprintf("%d", state.cfg.Detector.SmoothSamples))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Beat Threshold (counts)", Widget: thresholdEntry},
			{Text: "Refractory Period", Widget: refractoryEntry},
			{Text: "Window (seconds)", Widget: windowSecondsEntry},
			{Text: "Smooth Samples (0=disabled)", Widget: smoothSamplesEntry},
		},
		OnSubmit: func() {
			if th, err := strconv.ParseFloat(thresholdEntry.Text, 64); err == nil {
				state.cfg.Detector.Threshold = th
			}
			if rf, err := time.ParseDuration(refractoryEntry.Text); err == nil {
				state.cfg.Detector.Refractory = rf
			}
			if ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64); err == nil {
				state.cfg.Detector.WindowSeconds = ws
			}
			if ss, err := strconv.Atoi(smoothSamplesEntry.Text); err == nil {
				state.cfg.Detector.SmoothSamples = ss
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
			// Recreate heart monitor with new config
			state.heartMonitor = monitor.New(state.cfg)
		},
	}

	return container.NewTabItem("Detector", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	noiseLevelEntry := widget.NewEntry()
	noiseLevelEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.NoiseLevel))

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(state.cfg.Mock.SampleRate.String())

	tempEntry := widget.NewEntry()
	tempEntry.SetText(fmt.Sprintf("%d", state.cfg.Mock.Temp))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Noise Level (counts)", Widget: noiseLevelEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
			{Text: "Temperature (°C)", Widget: tempEntry},
		},
		OnSubmit: func() {
			if nl, err := strconv.ParseFloat(noiseLevelEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseLevel = nl
			}
			if sr, err := time.ParseDuration(sampleRateEntry.Text); err == nil {
				state.cfg.Mock.SampleRate = sr
			}
			if temp, err := strconv.Atoi(tempEntry.Text); err == nil {
				state.cfg.Mock.Temp = temp
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
