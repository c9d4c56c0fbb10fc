package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/beat"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/config"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/monitor"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/sample"
)

// ScopeWidget is a custom Fyne widget that displays the live PPG waveform
// with beat markers and HRV readouts, oscilloscope style.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu      sync.RWMutex
	samples []sample.Sample
	beats   []monitor.Beat
	metrics beat.Metrics

	// Display buffer (reused for downsampling)
	displaySamples []sample.Sample

	// Auto-scaling
	yMin, yMax float64
	xMin, xMax time.Time

	// Display settings
	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		cfg:              cfg,
		samples:          make([]sample.Sample, 0),
		beats:            make([]monitor.Beat, 0),
		displaySamples:   make([]sample.Sample, 0, 1000),
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	s.ExtendBaseWidget(s)
	// Trigger initial refresh to display empty scope
	s.Refresh()
	return s
}

// UpdateData updates the widget with new monitor data.
// This should be called from the monitor callback using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample, beats []monitor.Beat, metrics beat.Metrics) {
	s.mu.Lock()

	// Downsample for display (reuse buffer)
	s.displaySamples = sample.Downsample(s.displaySamples, samples, s.maxDisplayPoints)

	// Store full data
	s.samples = samples
	s.beats = beats
	s.metrics = metrics

	// Calculate auto-scaling
	s.updateAutoScale()

	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// updateAutoScale calculates the axis ranges from current data.
func (s *ScopeWidget) updateAutoScale() {
	if len(s.displaySamples) == 0 {
		s.yMin = 0.0
		s.yMax = 3.3
		s.xMin = time.Now()
		s.xMax = time.Now().Add(10 * time.Second)
		return
	}

	s.yMin = s.displaySamples[0].PPG
	s.yMax = s.displaySamples[0].PPG
	for _, sm := range s.displaySamples {
		if sm.PPG < s.yMin {
			s.yMin = sm.PPG
		}
		if sm.PPG > s.yMax {
			s.yMax = sm.PPG
		}
	}

	// Add 10% margin
	yRange := s.yMax - s.yMin
	if yRange == 0 {
		yRange = 1.0
	}
	margin := yRange * 0.1
	s.yMin -= margin
	s.yMax += margin

	// Time range
	s.xMin = s.displaySamples[0].Timestamp
	s.xMax = s.displaySamples[len(s.displaySamples)-1].Timestamp
	// Ensure minimum window
	if s.xMax.Sub(s.xMin) < time.Duration(s.cfg.Detector.WindowSeconds)*time.Second {
		s.xMax = s.xMin.Add(time.Duration(s.cfg.Detector.WindowSeconds) * time.Second)
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:    s,
		grid:     grid,
		objects:  []fyne.CanvasObject{grid},
		lastSize: fyne.Size{Width: 0, Height: 0},
	}
}
