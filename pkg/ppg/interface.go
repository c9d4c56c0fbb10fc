package ppg

import "github.com/dan1e1z/BMET2922-Major-Project/pkg/packet"

// Device defines the interface for PPG sensor devices (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Packets() <-chan packet.Packet
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
