package monitor

import (
	"sync"
	"time"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/beat"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/config"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/sample"
)

var _ HeartMonitor = (*Monitor)(nil)

// Beat marks a detected heartbeat within the sample window.
type Beat struct {
	Index int       // Sample index in the window buffer
	Time  time.Time // Beat timestamp
	BPM   int       // Instantaneous rate from the completing RR interval
}

// HeartMonitor processes samples, maintains the display window, and detects beats.
type HeartMonitor interface {
	ProcessSamples(input <-chan sample.Sample)
	Samples() []sample.Sample // Current window of samples (FIFO, ordered first to last)
	Beats() []Beat            // Detected beats within the window
	Metrics() beat.Metrics    // HRV statistics over the retained RR intervals
	OnUpdate(func(samples []sample.Sample, beats []Beat, metrics beat.Metrics)) // Register callback for updates
}

// Monitor implements HeartMonitor.
//
// The sample buffer is a FIFO ordered oldest first; removal is based on
// timestamp (the configured display window), not on sample count. Beat
// indices always point into the current buffer and are shifted on eviction.
type Monitor struct {
	cfg *config.Config

	samples  []sample.Sample
	beats    []Beat
	detector *beat.Detector

	// Thread safety
	mu sync.RWMutex

	// Update callbacks receive copies of the current window state.
	callbacks []func(samples []sample.Sample, beats []Beat, metrics beat.Metrics)
	cbMu      sync.RWMutex

	windowDuration time.Duration

	// Shutdown control
	shutdown bool // Set when the input channel closes, prevents further callbacks
}

// New creates a new Monitor instance.
func New(cfg *config.Config) *Monitor {
	return &Monitor{
		cfg:            cfg,
		samples:        make([]sample.Sample, 0),
		beats:          make([]Beat, 0),
		detector:       beat.New(float32(cfg.Detector.Threshold), cfg.Detector.Refractory),
		callbacks:      make([]func(samples []sample.Sample, beats []Beat, metrics beat.Metrics), 0),
		windowDuration: time.Duration(cfg.Detector.WindowSeconds * float64(time.Second)),
	}
}

// ProcessSamples processes samples from the input channel until it closes.
// When the input channel closes, the shutdown flag stops further callbacks.
func (m *Monitor) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		m.processSample(s)
	}
	// Channel closed - mark as shutdown to prevent further callbacks
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// processSample appends a sample, evicts samples outside the window, runs
// beat detection, and notifies callbacks.
func (m *Monitor) processSample(s sample.Sample) {
	m.mu.Lock()

	m.samples = append(m.samples, s)
	m.evictExpired(s.Timestamp)

	// Beat detection runs on raw ADC counts; the threshold is in counts.
	if bpm, ok := m.detector.Process(float32(s.Raw), s.Timestamp); ok {
		m.beats = append(m.beats, Beat{
			Index: len(m.samples) - 1,
			Time:  s.Timestamp,
			BPM:   bpm,
		})
	}

	shouldNotify := !m.shutdown
	m.mu.Unlock()

	if shouldNotify {
		m.notifyCallbacks()
	}
}

// evictExpired drops samples older than the display window and shifts beat
// indices accordingly. Must be called with the write lock held.
func (m *Monitor) evictExpired(latest time.Time) {
	cutoffTime := latest.Add(-m.windowDuration)
	cutoffIndex := 0
	for i, s := range m.samples {
		if s.Timestamp.After(cutoffTime) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex == 0 {
		return
	}

	m.samples = m.samples[cutoffIndex:]

	// Shift beat indices and drop beats that fell out of the window
	validBeats := m.beats[:0]
	for _, b := range m.beats {
		b.Index -= cutoffIndex
		if b.Index >= 0 {
			validBeats = append(validBeats, b)
		}
	}
	m.beats = validBeats
}

// Samples returns a copy of the current sample window.
func (m *Monitor) Samples() []sample.Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sample.Sample, len(m.samples))
	copy(result, m.samples)
	return result
}

// Beats returns a copy of the beats within the current window.
func (m *Monitor) Beats() []Beat {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Beat, len(m.beats))
	copy(result, m.beats)
	return result
}

// Metrics returns HRV statistics over the retained RR intervals.
func (m *Monitor) Metrics() beat.Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.detector.Metrics()
}

// OnUpdate registers a callback invoked whenever a sample is processed.
// The callback receives copies and should return as fast as possible.
func (m *Monitor) OnUpdate(callback func(samples []sample.Sample, beats []Beat, metrics beat.Metrics)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown resets the shutdown flag, allowing callbacks to be sent again.
// This should be called before starting a new measurement chain.
func (m *Monitor) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with copies of the
// current data, without holding the data lock during the calls.
func (m *Monitor) notifyCallbacks() {
	m.mu.RLock()
	samplesCopy := make([]sample.Sample, len(m.samples))
	copy(samplesCopy, m.samples)
	beatsCopy := make([]Beat, len(m.beats))
	copy(beatsCopy, m.beats)
	metrics := m.detector.Metrics()
	m.mu.RUnlock()

	m.cbMu.RLock()
	callbacks := make([]func(samples []sample.Sample, beats []Beat, metrics beat.Metrics), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samplesCopy, beatsCopy, metrics)
		}
	}
}
