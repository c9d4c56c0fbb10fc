package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/beat"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/config"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/monitor"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/ppg"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/sample"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/scope"
)

func main() {
	var (
		portFlag          = flag.String("p", "", "Serial port override (e.g., COM8 or /dev/rfcomm0)")
		configFlag        = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag          = flag.Bool("mock", false, "Use mocked sensor instead of serial port")
		smoothSamplesFlag = flag.Int("smooth-samples", -1, "Moving-average width for the displayed trace (0 = disabled, overrides config)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	// Override smoothing if provided via command line
	if *smoothSamplesFlag >= 0 {
		cfg.Detector.SmoothSamples = *smoothSamplesFlag
	}

	// Create Fyne application
	application := app.NewWithID("com.dan1e1z.ppgmon")

	// Create main window
	window := application.NewWindow("PPG Health Monitor")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	// Create heart monitor
	heartMonitor := monitor.New(cfg)

	// Create application state
	appState := &appState{
		cfg:          cfg,
		device:       nil,
		heartMonitor: heartMonitor,
		window:       window,
		useMock:      *mockFlag,
	}

	// Create toolbar
	toolbar := createToolbar(appState)

	// Create scope widget for waveform display
	scopeWidget := scope.New(cfg)
	appState.scopeWidget = scopeWidget

	// Create border layout with toolbar at top and scope widget as content
	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		scopeWidget,
	)

	window.SetContent(content)
	window.ShowAndRun()
}

// measurementChain tracks the components of the measurement chain for graceful shutdown.
type measurementChain struct {
	device           ppg.Device
	samplesStream    <-chan sample.Sample
	monitorGoroutine chan struct{} // Closed when monitor goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg          *config.Config
	device       ppg.Device
	heartMonitor *monitor.Monitor
	scopeWidget  *scope.ScopeWidget
	window       fyne.Window
	connectBtn   *widget.Button
	bpmLabel     *widget.Label
	tempLabel    *widget.Label
	useMock      bool
	chain        *measurementChain // Current measurement chain (nil if not connected)

	// Throttling for scope updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect and Settings
// buttons on the left and the live BPM/temperature readout on the right.
func createToolbar(state *appState) fyne.CanvasObject {
	// Connect button with icon
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	// Settings button with icon
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	bpmLabel := widget.NewLabel("-- bpm")
	bpmLabel.TextStyle = fyne.TextStyle{Bold: true}
	state.bpmLabel = bpmLabel

	tempLabel := widget.NewLabel("--°C")
	state.tempLabel = tempLabel

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn), // left
		container.NewHBox(bpmLabel, tempLabel),     // right
		nil, // center (spacer)
	)
}

// closeMeasurementChain gracefully closes the measurement chain.
// Waits for the monitor goroutine to finish and channels to drain.
func closeMeasurementChain(chain *measurementChain) {
	if chain == nil {
		return
	}

	// Close device - this will close the packets channel
	if chain.device != nil {
		chain.device.Close()
	}

	// Wait for the monitor goroutine to finish. It exits when samplesStream
	// closes, which happens once the converters finish draining.
	if chain.monitorGoroutine != nil {
		<-chain.monitorGoroutine
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		// Disconnect - gracefully close measurement chain
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.device = nil
		resetReadout(state)
		if state.useMock {
			fmt.Println("Disconnected from mocked sensor")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	// Connect
	var device ppg.Device
	if state.useMock {
		device = ppg.NewMock(&state.cfg.Mock)
		fmt.Println("Using mocked sensor")
	} else {
		device = ppg.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, ppg.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked sensor: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device
	if state.useMock {
		fmt.Printf("Connected to mocked sensor\n")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	// Reset monitor shutdown flag for the new chain
	state.heartMonitor.ResetShutdown()

	// Register callback with the monitor to update the scope widget.
	// Throttle updates to ~60 FPS (16.67ms between updates) to ensure smooth UI.
	const updateInterval = 16 * time.Millisecond // ~60 FPS
	state.heartMonitor.OnUpdate(func(samples []sample.Sample, beats []monitor.Beat, metrics beat.Metrics) {
		// Throttle updates to prevent UI from being overwhelmed
		state.updateMu.Lock()
		now := time.Now()
		timeSinceLastUpdate := now.Sub(state.lastUpdateTime)
		state.updateMu.Unlock()

		// Skip update if too soon since last update
		if timeSinceLastUpdate < updateInterval {
			return
		}

		// Update timestamp
		state.updateMu.Lock()
		state.lastUpdateTime = now
		state.updateMu.Unlock()

		// Update widgets on main thread.
		// The scope widget handles downsampling internally, so pass full data.
		fyne.Do(func() {
			state.scopeWidget.UpdateData(samples, beats, metrics)
			updateReadout(state, samples, metrics)
		})
	})

	// Chain converters: base converter always used, smoothing conditionally.
	// Increase buffer size to prevent channel full errors.
	baseStream := sample.NewConverter(state.cfg, 500)(device.Packets())

	var samplesStream <-chan sample.Sample
	if state.cfg.Detector.SmoothSamples > 0 {
		samplesStream = sample.NewSmoothingConverter(state.cfg.Detector.SmoothSamples, 500)(baseStream)
	} else {
		// No smoothing, use base stream directly
		samplesStream = baseStream
	}

	// Process samples through the heart monitor
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		state.heartMonitor.ProcessSamples(samplesStream)
	}()

	// Store chain for graceful shutdown
	state.chain = &measurementChain{
		device:           device,
		samplesStream:    samplesStream,
		monitorGoroutine: monitorDone,
	}
}
