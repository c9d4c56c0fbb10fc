package ppg

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/beat"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/config"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/packet"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/pulsesim"
)

// Mock simulates the sensor MCU for testing and development. It replays the
// recorded pulse waveform through the same sample player and beat detector
// the firmware uses, and emits the same binary packets.
type Mock struct {
	cfg *config.MockConfig

	packets   chan packet.Packet
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	// Simulation state
	player   *pulsesim.Player
	detector *beat.Detector
	simClock uint32 // Synthetic microsecond clock fed to the player
	sampleN  int
	bpm      uint8
	sequence uint32
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			NoiseLevel: 4.0,
			SampleRate: 20 * time.Millisecond,
			Temp:       36,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Mock{
		cfg:       cfg,
		packets:   make(chan packet.Packet, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}

	// The player runs on a synthetic clock that advances one nominal sample
	// period per tick, so the replayed waveform is identical at any tick
	// rate instead of depending on wall time.
	m.player = pulsesim.New(func() uint32 { return m.simClock })
	m.detector = beat.New(0, 0)

	return m
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true

	// Start generating packets
	go m.generatePackets()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.packets)

	return nil
}

// Packets returns the channel for reading packets.
func (m *Mock) Packets() <-chan packet.Packet {
	return m.packets
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generatePackets ticks at the configured sample rate and emits one packet
// per packet.SampleCount samples, exactly like the firmware loop.
func (m *Mock) generatePackets() {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	start := time.Now()
	var p packet.Packet
	fill := 0

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			p.PPG[fill] = m.nextSample(start)
			fill++
			if fill < packet.SampleCount {
				continue
			}
			fill = 0

			p.Sequence = m.sequence
			m.sequence++
			p.BPM = m.bpm
			p.Temp = uint8(m.cfg.Temp)

			select {
			case m.packets <- p:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// nextSample produces one simulated ADC reading and feeds the beat detector.
func (m *Mock) nextSample(start time.Time) uint16 {
	value := float64(m.player.Next())

	// Deterministic noise: two incommensurate sinusoids scaled to the
	// configured level.
	n := float64(m.sampleN)
	value += (math.Sin(n*0.7) + math.Cos(n*1.3)) * 0.5 * m.cfg.NoiseLevel

	if value < 0 {
		value = 0
	} else if value > 4095 {
		value = 4095
	}

	// Detector timestamps follow the synthetic timebase so BPM matches the
	// recording no matter how fast the mock ticks.
	ts := start.Add(time.Duration(m.sampleN) * pulsesim.SamplePeriod)
	if bpm, ok := m.detector.Process(float32(value), ts); ok {
		m.bpm = uint8(bpm)
	}

	m.sampleN++
	m.simClock += pulsesim.SamplePeriodMs * 1000

	return uint16(value)
}
