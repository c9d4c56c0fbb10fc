package ppg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/config"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/packet"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/pulsesim"
)

// fastMockConfig is a noiseless mock ticking fast enough for tests.
func fastMockConfig() *config.MockConfig {
	return &config.MockConfig{
		NoiseLevel: 0,
		SampleRate: time.Millisecond,
		Temp:       34,
	}
}

// collectPackets reads n packets or fails after a timeout.
func collectPackets(t *testing.T, ch <-chan packet.Packet, n int) []packet.Packet {
	t.Helper()
	out := make([]packet.Packet, 0, n)
	for len(out) < n {
		select {
		case p, ok := <-ch:
			require.True(t, ok, "packet channel closed early")
			out = append(out, p)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d of %d packets", len(out), n)
		}
	}
	return out
}

func TestMock_ReplaysRecordedWaveform(t *testing.T) {
	mock := NewMock(fastMockConfig())
	require.NoError(t, mock.Connect())
	defer mock.Close()

	packets := collectPackets(t, mock.Packets(), 2)

	// Without noise the mock replays the recording exactly, one table step
	// per sample, wrapping modulo the table length.
	for i, v := range packets[0].PPG {
		assert.Equal(t, uint16(pulsesim.At(i)), v, "packet 0 sample %d", i)
	}
	for i, v := range packets[1].PPG {
		want := pulsesim.At((packet.SampleCount + i) % pulsesim.Len())
		assert.Equal(t, uint16(want), v, "packet 1 sample %d", i)
	}

	assert.Equal(t, uint32(0), packets[0].Sequence)
	assert.Equal(t, uint32(1), packets[1].Sequence)
	assert.Equal(t, uint8(34), packets[0].Temp)
}

func TestMock_ReportsPlausibleBPM(t *testing.T) {
	mock := NewMock(fastMockConfig())
	require.NoError(t, mock.Connect())
	defer mock.Close()

	// The recording holds two beats per 85-sample cycle (~70 BPM). Within
	// ten packets (ten beats) the on-device estimate must settle.
	packets := collectPackets(t, mock.Packets(), 10)

	last := packets[len(packets)-1]
	require.NotZero(t, last.BPM)
	assert.GreaterOrEqual(t, last.BPM, uint8(60))
	assert.LessOrEqual(t, last.BPM, uint8(80))
}

func TestMock_ConnectTwice(t *testing.T) {
	mock := NewMock(fastMockConfig())
	require.NoError(t, mock.Connect())
	defer mock.Close()

	assert.Error(t, mock.Connect())
	assert.True(t, mock.IsConnected())
}

func TestMock_CloseWithoutConnect(t *testing.T) {
	mock := NewMock(fastMockConfig())
	assert.NoError(t, mock.Close())
	assert.False(t, mock.IsConnected())
}

func TestNewMock_NilConfigUsesDefaults(t *testing.T) {
	mock := NewMock(nil)
	require.NotNil(t, mock)
	assert.Equal(t, 20*time.Millisecond, mock.cfg.SampleRate)
	assert.Equal(t, 36, mock.cfg.Temp)
}
