package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/config"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/packet"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/pulsesim"
)

func TestADCToVoltage(t *testing.T) {
	tests := []struct {
		name string
		adc  uint16
		vref float64
		want float64
	}{
		{
			name: "zero ADC",
			adc:  0,
			vref: 3.3,
			want: 0.0,
		},
		{
			name: "max ADC",
			adc:  4095,
			vref: 3.3,
			want: 3.3,
		},
		{
			name: "half ADC",
			adc:  2047,
			vref: 3.3,
			want: 1.65, // Approximately
		},
		{
			name: "different VRef",
			adc:  2047,
			vref: 5.0,
			want: 2.5, // Approximately
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adcToVoltage(tt.adc, tt.vref)
			assert.InDelta(t, tt.want, got, 0.01, "adcToVoltage(%d, %f) = %f, want %f", tt.adc, tt.vref, got, tt.want)
		})
	}
}

func TestConverter_UnpacksPackets(t *testing.T) {
	cfg := config.Default()

	p := packet.Packet{Sequence: 7, BPM: 70, Temp: 36}
	for i := range p.PPG {
		p.PPG[i] = uint16(1800 + i)
	}

	in := make(chan packet.Packet, 1)
	out := NewConverter(cfg, 100)(in)

	in <- p
	close(in)

	var got []Sample
	for s := range out {
		got = append(got, s)
	}
	require.Len(t, got, packet.SampleCount)

	for i, s := range got {
		assert.Equal(t, uint16(1800+i), s.Raw)
		assert.InDelta(t, float64(1800+i)/4095.0*3.3, s.PPG, 1e-9)
		assert.Equal(t, uint8(70), s.BPM)
		assert.Equal(t, uint8(36), s.Temp)
	}

	// Samples within a packet are spaced at the nominal period, newest last.
	for i := 1; i < len(got); i++ {
		assert.Equal(t, pulsesim.SamplePeriod, got[i].Timestamp.Sub(got[i-1].Timestamp))
	}
}

func TestConverter_ClosesOutputWhenInputCloses(t *testing.T) {
	cfg := config.Default()
	in := make(chan packet.Packet)
	out := NewConverter(cfg, 10)(in)

	close(in)

	select {
	case _, ok := <-out:
		assert.False(t, ok, "output channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("output channel did not close")
	}
}

func TestSmoothingConverter(t *testing.T) {
	in := make(chan Sample, 10)
	out := NewSmoothingConverter(3, 10)(in)

	base := time.Unix(1700000000, 0)
	values := []float64{1.0, 2.0, 3.0, 4.0}
	for i, v := range values {
		in <- Sample{Timestamp: base.Add(time.Duration(i) * pulsesim.SamplePeriod), PPG: v, BPM: 70}
	}
	close(in)

	var got []Sample
	for s := range out {
		got = append(got, s)
	}
	require.Len(t, got, 4)

	// Window grows to 3: 1, (1+2)/2, (1+2+3)/3, (2+3+4)/3.
	assert.InDelta(t, 1.0, got[0].PPG, 1e-9)
	assert.InDelta(t, 1.5, got[1].PPG, 1e-9)
	assert.InDelta(t, 2.0, got[2].PPG, 1e-9)
	assert.InDelta(t, 3.0, got[3].PPG, 1e-9)

	// Metadata passes through untouched.
	assert.Equal(t, uint8(70), got[3].BPM)
	assert.Equal(t, base.Add(3*pulsesim.SamplePeriod), got[3].Timestamp)
}

func TestSmoothingConverter_InvalidWindowPassesThrough(t *testing.T) {
	in := make(chan Sample, 2)
	out := NewSmoothingConverter(0, 10)(in)

	in <- Sample{PPG: 2.5}
	close(in)

	s, ok := <-out
	require.True(t, ok)
	assert.InDelta(t, 2.5, s.PPG, 1e-9)
}

func TestDownsample(t *testing.T) {
	samples := make([]Sample, 100)
	for i := range samples {
		samples[i].PPG = float64(i)
	}

	t.Run("no downsampling needed", func(t *testing.T) {
		got := Downsample(nil, samples, 200)
		assert.Len(t, got, 100)
		assert.Equal(t, samples, got)
	})

	t.Run("decimates to max points", func(t *testing.T) {
		got := Downsample(nil, samples, 10)
		require.Len(t, got, 10)
		assert.InDelta(t, 0.0, got[0].PPG, 1e-9)
		assert.InDelta(t, 10.0, got[1].PPG, 1e-9)
		assert.InDelta(t, 90.0, got[9].PPG, 1e-9)
	})

	t.Run("reuses destination capacity", func(t *testing.T) {
		dst := make([]Sample, 0, 50)
		got := Downsample(dst, samples, 10)
		require.Len(t, got, 10)
		assert.Equal(t, 50, cap(got), "should reuse dst backing array")
	})

	t.Run("empty input", func(t *testing.T) {
		got := Downsample(nil, nil, 10)
		assert.Empty(t, got)
	})
}
