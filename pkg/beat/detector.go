// Package beat detects heartbeats in a streaming PPG signal and derives
// heart rate and time-domain HRV statistics from the beat-to-beat intervals.
package beat

import (
	"time"
)

const (
	// DefaultThreshold is the AC amplitude (in ADC counts above the moving
	// baseline) a rising edge must cross to count as a beat.
	DefaultThreshold = 40.0

	// DefaultRefractory rejects re-triggers inside one beat. 300 ms caps the
	// detectable rate at 200 BPM.
	DefaultRefractory = 300 * time.Millisecond

	// baselineWindow is the moving-average length used for DC removal.
	// At the 20 ms sample period this spans ~1.3 s, comfortably longer
	// than one beat.
	baselineWindow = 64

	// maxIntervals bounds the RR history used for HRV statistics.
	maxIntervals = 60

	// Physiologically plausible RR interval bounds in milliseconds
	// (30-200 BPM). Intervals outside are discarded as detection noise.
	minPlausibleRR = 300.0
	maxPlausibleRR = 2000.0
)

// Detector finds beats by removing the DC baseline with a moving average and
// looking for rising threshold crossings in the remaining AC component,
// gated by a refractory period.
//
// Detector is not safe for concurrent use.
type Detector struct {
	threshold  float32
	refractory time.Duration

	baseline movingAverage
	prevAC   float32
	primed   bool

	lastBeat time.Time
	rr       []float32 // RR intervals, milliseconds, oldest first
}

// New creates a Detector. Non-positive threshold or refractory select the
// defaults.
func New(threshold float32, refractory time.Duration) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if refractory <= 0 {
		refractory = DefaultRefractory
	}
	return &Detector{
		threshold:  threshold,
		refractory: refractory,
		rr:         make([]float32, 0, maxIntervals),
	}
}

// Process feeds one PPG sample with its timestamp. It returns the
// instantaneous heart rate and true when the sample completes a new
// RR interval, and (0, false) otherwise.
func (d *Detector) Process(value float32, ts time.Time) (int, bool) {
	d.baseline.add(value)
	ac := value - d.baseline.mean()

	if !d.primed {
		d.primed = true
		d.prevAC = ac
		return 0, false
	}

	crossed := d.prevAC < d.threshold && ac >= d.threshold
	d.prevAC = ac

	if !crossed {
		return 0, false
	}
	if !d.lastBeat.IsZero() && ts.Sub(d.lastBeat) < d.refractory {
		return 0, false
	}

	if d.lastBeat.IsZero() {
		// First beat only anchors the interval timer.
		d.lastBeat = ts
		return 0, false
	}

	rrMs := float32(ts.Sub(d.lastBeat).Seconds() * 1000)
	d.lastBeat = ts

	if rrMs < minPlausibleRR || rrMs > maxPlausibleRR {
		return 0, false
	}

	d.rr = append(d.rr, rrMs)
	if len(d.rr) > maxIntervals {
		d.rr = d.rr[1:]
	}

	return int(60000.0/rrMs + 0.5), true
}

// Intervals returns a copy of the retained RR intervals in milliseconds.
func (d *Detector) Intervals() []float32 {
	out := make([]float32, len(d.rr))
	copy(out, d.rr)
	return out
}

// Reset discards all detection state and interval history.
func (d *Detector) Reset() {
	d.baseline = movingAverage{}
	d.prevAC = 0
	d.primed = false
	d.lastBeat = time.Time{}
	d.rr = d.rr[:0]
}

// movingAverage is a fixed-window running mean for baseline (DC) tracking.
type movingAverage struct {
	buf [baselineWindow]float32
	sum float32
	n   int
	idx int
}

func (m *movingAverage) add(v float32) {
	if m.n == len(m.buf) {
		m.sum -= m.buf[m.idx]
	} else {
		m.n++
	}
	m.buf[m.idx] = v
	m.sum += v
	m.idx = (m.idx + 1) % len(m.buf)
}

func (m *movingAverage) mean() float32 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float32(m.n)
}
