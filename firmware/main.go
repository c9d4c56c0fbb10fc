//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/beat"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/packet"
	"github.com/dan1e1z/BMET2922-Major-Project/pkg/pulsesim"
)

var (
	adcTemp machine.ADC
	uart    = machine.UART0

	// Waveform playback and on-device beat detection
	player   *pulsesim.Player
	detector *beat.Detector
	lastBPM  uint8

	// Outgoing packet assembly
	outPacket   packet.Packet
	sampleIndex int
	sequence    uint32

	// Timing
	lastSample time.Time
)

func main() {
	// Configure the thermistor ADC input with highest resolution
	PIN_TEMP_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})
	adcTemp = machine.ADC{Pin: PIN_TEMP_ADC}
	adcTemp.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	// Configure UART for packet transmission
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// The player advances through the recorded waveform by wall-clock
	// time, so a late loop iteration skips samples instead of stretching
	// the pulse shape.
	player = pulsesim.New(nil)
	detector = beat.New(0, 0)

	lastSample = time.Now()

	// Main loop
	for {
		now := time.Now()

		if now.Sub(lastSample) >= SAMPLE_PERIOD_MS*time.Millisecond {
			samplePPG(now)
			lastSample = now
		}

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

// samplePPG takes one waveform sample, runs beat detection, and sends a
// packet once PACKET_SAMPLES samples have been collected.
func samplePPG(now time.Time) {
	value := player.Next()

	if bpm, ok := detector.Process(float32(value), now); ok {
		lastBPM = uint8(bpm)
	}

	outPacket.PPG[sampleIndex] = uint16(value)
	sampleIndex++

	if sampleIndex >= PACKET_SAMPLES {
		sendPacket()
		sampleIndex = 0
	}
}

func sendPacket() {
	outPacket.Sequence = sequence
	outPacket.BPM = lastBPM
	outPacket.Temp = readTemperature()
	sequence++

	data, err := outPacket.MarshalBinary()
	if err != nil {
		return
	}
	uart.Write(data)
}

// readTemperature converts the thermistor divider reading to whole
// degrees Celsius using a linear fit around body temperature.
func readTemperature() uint8 {
	counts := uint32(adcTemp.Get())
	tempC := TEMP_OFFSET_C + counts*TEMP_SCALE_NUM/TEMP_SCALE_DEN
	if tempC > 255 {
		tempC = 255
	}
	return uint8(tempC)
}
