package sample

import (
	"log"
	"time"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/config"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/packet"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/pulsesim"
)

// Sample represents a single PPG reading with physical values.
type Sample struct {
	Timestamp time.Time
	PPG       float64 // Sensor voltage (V)
	Raw       uint16  // Original 12-bit ADC reading (0-4095)
	BPM       uint8   // On-device heart rate estimate carried by the packet
	Temp      uint8   // Skin temperature (degrees C)
}

// Converter is a function type that converts a Packet channel to a Sample channel.
type Converter func(in <-chan packet.Packet) <-chan Sample

// NewConverter creates a converter that unpacks each packet into its
// individual samples. Packets carry no per-sample timestamps, so samples are
// spread backwards from the packet arrival time at the nominal 20 ms period.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan packet.Packet) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for p := range in {
				arrival := time.Now()
				for i, raw := range p.PPG {
					s := unpackSample(p, i, raw, arrival, cfg)
					select {
					case out <- s:
					case <-time.After(time.Second):
						log.Printf("Converter output channel full, dropping sample")
					}
				}
			}
		}()

		return out
	}
}

// unpackSample builds the i-th sample of a packet that arrived at the given time.
func unpackSample(p packet.Packet, i int, raw uint16, arrival time.Time, cfg *config.Config) Sample {
	return Sample{
		Timestamp: arrival.Add(-time.Duration(packet.SampleCount-1-i) * pulsesim.SamplePeriod),
		PPG:       adcToVoltage(raw, cfg.Sampling.VRef),
		Raw:       raw,
		BPM:       p.BPM,
		Temp:      p.Temp,
	}
}

// adcToVoltage converts a 12-bit ADC reading to voltage.
func adcToVoltage(adc uint16, vref float64) float64 {
	return (float64(adc) / 4095.0) * vref
}
