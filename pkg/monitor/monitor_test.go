package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/beat"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/config"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/pulsesim"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/sample"
)

// makeStream builds a closed channel of samples spaced one period apart,
// with 2-sample spikes at the given indices.
func makeStream(total int, spikeAt map[int]bool) <-chan sample.Sample {
	ch := make(chan sample.Sample, total)
	base := time.Unix(1700000000, 0)
	for i := 0; i < total; i++ {
		raw := uint16(1900)
		if spikeAt[i] || spikeAt[i-1] {
			raw = 2300
		}
		ch <- sample.Sample{
			Timestamp: base.Add(time.Duration(i) * pulsesim.SamplePeriod),
			Raw:       raw,
			PPG:       float64(raw) / 4095.0 * 3.3,
		}
	}
	close(ch)
	return ch
}

func TestMonitor_WindowEviction(t *testing.T) {
	cfg := config.Default()
	cfg.Detector.WindowSeconds = 1

	m := New(cfg)
	m.ProcessSamples(makeStream(100, nil))

	// 100 samples span 2 s; only the trailing 1 s window survives.
	samples := m.Samples()
	require.Len(t, samples, 50)

	base := time.Unix(1700000000, 0)
	assert.Equal(t, base.Add(50*pulsesim.SamplePeriod), samples[0].Timestamp)
	assert.Equal(t, base.Add(99*pulsesim.SamplePeriod), samples[49].Timestamp)
}

func TestMonitor_DetectsBeats(t *testing.T) {
	cfg := config.Default()
	cfg.Detector.WindowSeconds = 20 // Keep every sample in the window

	spikes := map[int]bool{}
	for i := 0; i < 500; i += 40 {
		spikes[i] = true
	}

	m := New(cfg)
	m.ProcessSamples(makeStream(500, spikes))

	// One spike every 800 ms: the first primes the detector, the second
	// anchors the interval timer, the rest complete 800 ms intervals.
	beats := m.Beats()
	require.Len(t, beats, 11)

	samples := m.Samples()
	for _, b := range beats {
		assert.Equal(t, 75, b.BPM)
		assert.Equal(t, uint16(2300), samples[b.Index].Raw, "beat index should point at a spike")
	}

	metrics := m.Metrics()
	assert.InDelta(t, 800.0, metrics.MeanRR, 0.5)
	assert.InDelta(t, 75.0, metrics.HeartRate, 0.1)
}

func TestMonitor_BeatIndicesShiftOnEviction(t *testing.T) {
	cfg := config.Default()
	cfg.Detector.WindowSeconds = 2 // 100-sample window

	spikes := map[int]bool{}
	for i := 0; i < 500; i += 40 {
		spikes[i] = true
	}

	m := New(cfg)
	m.ProcessSamples(makeStream(500, spikes))

	samples := m.Samples()
	beats := m.Beats()
	require.NotEmpty(t, beats)

	// Every surviving beat must still point at its spike after shifting.
	for _, b := range beats {
		require.GreaterOrEqual(t, b.Index, 0)
		require.Less(t, b.Index, len(samples))
		assert.Equal(t, uint16(2300), samples[b.Index].Raw)
		assert.Equal(t, samples[b.Index].Timestamp, b.Time)
	}
}

func TestMonitor_Callbacks(t *testing.T) {
	cfg := config.Default()
	m := New(cfg)

	var mu sync.Mutex
	calls := 0
	lastCount := 0
	m.OnUpdate(func(samples []sample.Sample, beats []Beat, _ beat.Metrics) {
		mu.Lock()
		calls++
		lastCount = len(samples)
		mu.Unlock()
	})

	m.ProcessSamples(makeStream(30, nil))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 30, calls, "one callback per processed sample")
	assert.Equal(t, 30, lastCount, "last callback sees the full window")
}

// TestMonitor_GracefulShutdown verifies that no callbacks fire after the
// input channel closes, and that ResetShutdown re-arms them.
func TestMonitor_GracefulShutdown(t *testing.T) {
	cfg := config.Default()
	m := New(cfg)

	var mu sync.Mutex
	calls := 0
	m.OnUpdate(func([]sample.Sample, []Beat, beat.Metrics) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	m.ProcessSamples(makeStream(10, nil))

	mu.Lock()
	after := calls
	mu.Unlock()

	// Shutdown is latched: a stray sample processed now must not notify.
	m.processSample(sample.Sample{Timestamp: time.Unix(1700000100, 0), Raw: 1900})
	mu.Lock()
	assert.Equal(t, after, calls, "no callbacks after shutdown")
	mu.Unlock()

	// A new measurement chain re-arms callbacks.
	m.ResetShutdown()
	m.processSample(sample.Sample{Timestamp: time.Unix(1700000101, 0), Raw: 1900})
	mu.Lock()
	assert.Equal(t, after+1, calls, "callbacks resume after ResetShutdown")
	mu.Unlock()
}
