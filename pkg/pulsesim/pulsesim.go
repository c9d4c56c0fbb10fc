// Package pulsesim replays a pre-recorded pulse sensor waveform over time.
// It stands in for real PPG hardware so that beat detection and the host
// monitor can be developed without a sensor attached.
package pulsesim

import "time"

// SamplePeriodMs is the nominal interval between consecutive waveform
// samples. The recording was made at 50 Hz, so the player is meant to be
// polled roughly every 20 ms.
const SamplePeriodMs = 20

// SamplePeriod is SamplePeriodMs as a time.Duration.
const SamplePeriod = SamplePeriodMs * time.Millisecond

// Clock returns elapsed microseconds since an arbitrary epoch as a uint32,
// wrapping at the 32-bit boundary (the same semantics as Arduino micros()).
type Clock func() uint32

// Player walks the waveform table based on elapsed wall-clock time. Each
// call to Next advances the cursor by however many whole sample periods have
// passed since the previous call, so the replayed waveform tracks real time
// regardless of the polling rate.
//
// Player is not safe for concurrent use; it is designed to be polled from a
// single control loop.
type Player struct {
	clock  Clock
	prev   uint32
	cursor int
}

// New creates a Player driven by the given clock. If clock is nil, a
// monotonic system clock starting at zero is used.
func New(clock Clock) *Player {
	if clock == nil {
		clock = SystemClock()
	}
	return &Player{clock: clock}
}

// SystemClock returns a Clock measuring microseconds since the moment it was
// created, truncated to uint32. The truncation wraps every ~71.6 minutes;
// Next's unsigned subtraction self-corrects across the wrap.
func SystemClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Microseconds())
	}
}

// Next returns the waveform sample for the current instant.
//
// Calls spaced closer than one sample period return the same sample again;
// there is no interpolation. Calls spaced much wider than one period skip
// the intervening samples entirely, which shows up as discontinuities in the
// replayed waveform. Both behaviors are intended: the player is only
// expected to look right when polled near the nominal 20 ms interval.
func (p *Player) Next() int {
	now := p.clock()
	// Unsigned wraparound arithmetic: if the clock wrapped since the last
	// call, now-prev still yields the true elapsed microseconds.
	steps := (now - p.prev) / (SamplePeriodMs * 1000)
	p.cursor = (p.cursor + int(steps)) % len(waveform)
	p.prev = now
	return waveform[p.cursor]
}

// Cursor returns the current index into the waveform table.
func (p *Player) Cursor() int {
	return p.cursor
}
