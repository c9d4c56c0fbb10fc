package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/beat"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/monitor"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/sample"
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Beat markers (vertical lines)
	beatLines []*canvas.Line

	// BPM labels over beats
	bpmLabels []*canvas.Text

	// HR/HRV readout
	readoutLabel *canvas.Text

	// Grid lines
	gridLines []*canvas.Line
	gridTexts []*canvas.Text

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	// Background fills entire widget
	r.grid.Resize(size)

	// Check if size changed
	if r.lastSize.Width != size.Width || r.lastSize.Height != size.Height {
		r.lastSize = size
		// Size changed, trigger widget refresh to redraw with new dimensions
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.displaySamples
	beats := r.scope.beats
	metrics := r.scope.metrics
	yMin := r.scope.yMin
	yMax := r.scope.yMax
	xMin := r.scope.xMin
	xMax := r.scope.xMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	// Clear old objects (but keep grid)
	r.objects = []fyne.CanvasObject{r.grid}
	r.gridLines = r.gridLines[:0]
	r.gridTexts = r.gridTexts[:0]
	r.beatLines = r.beatLines[:0]
	r.bpmLabels = r.bpmLabels[:0]
	r.readoutLabel = nil

	// Calculate margins
	marginLeft := float32(60.0)
	marginRight := float32(20.0)
	marginTop := float32(20.0)
	marginBottom := float32(40.0)

	plotWidth := size.Width - marginLeft - marginRight
	plotHeight := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	// Draw grid
	r.drawGrid(plotX, plotY, plotWidth, plotHeight, yMin, yMax, xMin, xMax)

	// Draw PPG waveform (green trace)
	if len(samples) > 1 {
		r.drawWaveform(plotX, plotY, plotWidth, plotHeight, samples, yMin, yMax, xMin, xMax)
	}

	// Draw beat markers (red vertical lines with BPM labels)
	r.drawBeats(plotX, plotY, plotWidth, plotHeight, beats, xMin, xMax)

	// Draw HR/HRV readout
	r.drawReadout(plotX, plotY, metrics)
}

// drawGrid draws the oscilloscope-style grid.
func (r *scopeRenderer) drawGrid(plotX, plotY, plotWidth, plotHeight float32, yMin, yMax float64, xMin, xMax time.Time) {
	// Horizontal grid lines (voltage)
	numHLines := 8
	for i := 0; i <= numHLines; i++ {
		y := plotY + float32(i)*plotHeight/float32(numHLines)
		line := canvas.NewLine(color.RGBA{R: 40, G: 40, B: 40, A: 255})
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotWidth, y)
		line.StrokeWidth = 1
		r.gridLines = append(r.gridLines, line)
		r.objects = append(r.objects, line)

		// Y-axis label
		value := yMax - float64(i)*(yMax-yMin)/float64(numHLines)
		text := canvas.NewText(formatVoltage(float32(value)), color.RGBA{R: 150, G: 150, B: 150, A: 255})
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX-5, y-6))
		r.gridTexts = append(r.gridTexts, text)
		r.objects = append(r.objects, text)
	}

	// Vertical grid lines (time)
	numVLines := 10
	for i := 0; i <= numVLines; i++ {
		x := plotX + float32(i)*plotWidth/float32(numVLines)
		line := canvas.NewLine(color.RGBA{R: 40, G: 40, B: 40, A: 255})
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.gridLines = append(r.gridLines, line)
		r.objects = append(r.objects, line)

		// X-axis label
		timeOffset := float64(i) * xMax.Sub(xMin).Seconds() / float64(numVLines)
		text := canvas.NewText(formatSeconds(float32(timeOffset)), color.RGBA{R: 150, G: 150, B: 150, A: 255})
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, plotY+plotHeight+5))
		r.gridTexts = append(r.gridTexts, text)
		r.objects = append(r.objects, text)
	}
}

// drawWaveform draws the PPG trace (green).
func (r *scopeRenderer) drawWaveform(plotX, plotY, plotWidth, plotHeight float32, samples []sample.Sample, yMin, yMax float64, xMin, xMax time.Time) {
	if len(samples) < 2 {
		return
	}

	span := float32(xMax.Sub(xMin).Seconds())
	if span <= 0 {
		return
	}

	points := make([]fyne.Position, 0, len(samples))
	for _, s := range samples {
		x := plotX + float32(s.Timestamp.Sub(xMin).Seconds())/span*plotWidth
		y := plotY + plotHeight - float32((s.PPG-yMin)/(yMax-yMin))*plotHeight
		points = append(points, fyne.NewPos(x, y))
	}

	// Draw connected line segments
	for i := 0; i < len(points)-1; i++ {
		line := canvas.NewLine(color.RGBA{R: 80, G: 220, B: 100, A: 255}) // Green
		line.Position1 = points[i]
		line.Position2 = points[i+1]
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
	}
}

// drawBeats draws a vertical marker with the instantaneous BPM at each beat.
func (r *scopeRenderer) drawBeats(plotX, plotY, plotWidth, plotHeight float32, beats []monitor.Beat, xMin, xMax time.Time) {
	span := float32(xMax.Sub(xMin).Seconds())
	if span <= 0 {
		return
	}

	for _, b := range beats {
		if b.Time.Before(xMin) || b.Time.After(xMax) {
			continue
		}

		x := plotX + float32(b.Time.Sub(xMin).Seconds())/span*plotWidth
		line := canvas.NewLine(color.RGBA{R: 220, G: 60, B: 60, A: 255}) // Red
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.beatLines = append(r.beatLines, line)
		r.objects = append(r.objects, line)

		text := canvas.NewText(fmt.Sprintf("%d", b.BPM), color.RGBA{R: 220, G: 60, B: 60, A: 255})
		text.TextSize = 11
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-10, plotY-16))
		r.bpmLabels = append(r.bpmLabels, text)
		r.objects = append(r.objects, text)
	}
}

// drawReadout draws the heart rate and HRV summary in the top-left corner.
func (r *scopeRenderer) drawReadout(plotX, plotY float32, m beat.Metrics) {
	if m.MeanRR == 0 {
		return
	}

	readout := fmt.Sprintf("HR %s bpm   RR %s ms   SDNN %s ms   RMSSD %s ms",
		formatFixed(m.HeartRate, 0),
		formatFixed(m.MeanRR, 0),
		formatFixed(m.SDNN, 1),
		formatFixed(m.RMSSD, 1))

	text := canvas.NewText(readout, color.RGBA{R: 200, G: 200, B: 200, A: 255}) // Light gray
	text.TextSize = 11
	text.Alignment = fyne.TextAlignLeading
	text.Move(fyne.NewPos(plotX+10, plotY+10))
	r.readoutLabel = text
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

// Helper functions for formatting

func formatVoltage(v float32) string {
	if math32.Abs(v) < 0.001 {
		return "0.000V"
	}
	return formatFixed(v, 3) + "V"
}

func formatSeconds(s float32) string {
	if s < 1 {
		return formatFixed(s, 2) + "s"
	}
	return formatFixed(s, 1) + "s"
}

// formatFixed renders v with the given number of decimals, rounding half up.
func formatFixed(v float32, decimals int) string {
	mult := math32.Pow(10, float32(decimals))
	rounded := math32.Round(v*mult) / mult
	return fmt.Sprintf("%.*f", decimals, rounded)
}
