package beat

import "github.com/chewxy/math32"

// Metrics holds time-domain HRV statistics over the retained RR intervals.
// All interval-based fields are in milliseconds.
type Metrics struct {
	MeanRR    float32 // Mean RR interval
	SDNN      float32 // Standard deviation of RR intervals
	RMSSD     float32 // Root mean square of successive differences
	PNN50     float32 // Percentage of successive differences > 50 ms
	SD1       float32 // Poincare short-term variability
	SD2       float32 // Poincare long-term variability
	SDRatio   float32 // SD1/SD2 (0 when SD2 is 0)
	HeartRate float32 // BPM derived from MeanRR
}

// Metrics computes HRV statistics from the interval history. It returns the
// zero Metrics until at least two intervals have been collected.
func (d *Detector) Metrics() Metrics {
	rr := d.rr
	if len(rr) < 2 {
		return Metrics{}
	}

	var sum float32
	for _, v := range rr {
		sum += v
	}
	mean := sum / float32(len(rr))

	var sqDev float32
	for _, v := range rr {
		dv := v - mean
		sqDev += dv * dv
	}
	sdnn := math32.Sqrt(sqDev / float32(len(rr)))

	var sqDiff float32
	nn50 := 0
	for i := 1; i < len(rr); i++ {
		diff := rr[i] - rr[i-1]
		sqDiff += diff * diff
		if math32.Abs(diff) > 50 {
			nn50++
		}
	}
	nDiff := float32(len(rr) - 1)
	rmssd := math32.Sqrt(sqDiff / nDiff)
	pnn50 := float32(nn50) / nDiff * 100

	sd1 := math32.Sqrt(0.5 * rmssd * rmssd)
	sd2 := math32.Sqrt(math32.Max(2*sdnn*sdnn-0.5*rmssd*rmssd, 0))
	ratio := float32(0)
	if sd2 > 0 {
		ratio = sd1 / sd2
	}

	return Metrics{
		MeanRR:    mean,
		SDNN:      sdnn,
		RMSSD:     rmssd,
		PNN50:     pnn50,
		SD1:       sd1,
		SD2:       sd2,
		SDRatio:   ratio,
		HeartRate: 60000 / mean,
	}
}
