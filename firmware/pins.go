//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_PERIOD_MS = 20 // PPG sample period in milliseconds (50 Hz)
	PACKET_SAMPLES   = 50 // Samples per transmitted packet (one packet per second)

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Temperature sensor (thermistor divider)
	PIN_TEMP_ADC = machine.A1

	// Thermistor linearization around body temperature:
	// temp_c = TEMP_OFFSET_C + counts * TEMP_SCALE_NUM / TEMP_SCALE_DEN
	TEMP_OFFSET_C  = 20
	TEMP_SCALE_NUM = 1
	TEMP_SCALE_DEN = 128

	// Serial configuration
	// Baud rate calculation: one 106-byte packet per second
	// (4-byte sequence + 50 x 2-byte samples + BPM + temp).
	// UART 8N1: 10 bits/byte = 1,060 baud minimum. 115200 provides
	// >100x headroom and matches the host default.
	UART_BAUD_RATE = 115200
)
