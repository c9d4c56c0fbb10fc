// Package packet defines the binary frame the MCU streams to the host over
// the Bluetooth SPP serial link.
package packet

import (
	"encoding/binary"
	"fmt"
)

const (
	// SampleCount is the number of PPG samples carried per packet. At the
	// 20 ms sample period one packet covers exactly one second.
	SampleCount = 50

	// Size is the encoded packet length in bytes: uint32 sequence,
	// SampleCount uint16 PPG values, uint8 BPM, uint8 temperature.
	Size = 4 + 2*SampleCount + 1 + 1
)

// Packet is one second of sensor data as sent by the firmware.
// All fields are little-endian on the wire.
type Packet struct {
	Sequence uint32              // Monotonically increasing packet counter
	PPG      [SampleCount]uint16 // Raw 12-bit ADC readings (0-4095)
	BPM      uint8               // On-device heart rate estimate (0 = none yet)
	Temp     uint8               // Skin temperature (whole degrees C)
}

// MarshalBinary encodes the packet into a Size-byte frame.
func (p *Packet) MarshalBinary() ([]byte, error) {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint32(buf[0:4], p.Sequence)
	for i, v := range p.PPG {
		binary.LittleEndian.PutUint16(buf[4+2*i:], v)
	}
	buf[Size-2] = p.BPM
	buf[Size-1] = p.Temp
	return buf, nil
}

// UnmarshalBinary decodes a Size-byte frame into the packet.
func (p *Packet) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("invalid packet length: expected %d bytes, got %d", Size, len(data))
	}

	p.Sequence = binary.LittleEndian.Uint32(data[0:4])
	for i := range p.PPG {
		v := binary.LittleEndian.Uint16(data[4+2*i:])
		if v > 4095 {
			return fmt.Errorf("ppg sample %d out of range: %d (max 4095)", i, v)
		}
		p.PPG[i] = v
	}
	p.BPM = data[Size-2]
	p.Temp = data[Size-1]
	return nil
}
