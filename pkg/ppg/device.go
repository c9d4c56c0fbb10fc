package ppg

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"go.bug.st/serial"

	"github.com/dan1e1z/BMET2922-Major-Project/pkg/packet"
)

const (
	// DefaultBaudRate is the standard baud rate for the ESP32 Bluetooth SPP bridge.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the packets channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the sensor MCU over a serial port.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	packets   chan packet.Packet
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		packets:   make(chan packet.Packet, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect connects to the serial port and starts reading packets.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	// Start reading packets in a goroutine
	go d.readPackets(port)

	return nil
}

// Close closes the connection and stops reading packets.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	// Close serial port
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	// Close packets channel
	close(d.packets)

	return nil
}

// Packets returns the channel for reading packets.
func (d *Serial) Packets() <-chan packet.Packet {
	return d.packets
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readPackets reads fixed-size frames from the stream and decodes them.
// Sequence gaps are logged so that dropped packets on the Bluetooth link
// are visible but never fatal.
func (d *Serial) readPackets(r io.Reader) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Panic in readPackets: %v", rec)
		}
	}()

	frame := make([]byte, packet.Size)
	var lastSeq uint32
	haveSeq := false

	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if _, err := io.ReadFull(r, frame); err != nil {
				if err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			var p packet.Packet
			if err := p.UnmarshalBinary(frame); err != nil {
				// Likely a framing slip after a dropped byte; discard this
				// frame and let the fixed-size cadence re-align.
				log.Printf("Failed to decode packet: %v", err)
				continue
			}

			if haveSeq && p.Sequence != lastSeq+1 {
				log.Printf("Packet sequence gap: expected %d, got %d", lastSeq+1, p.Sequence)
			}
			lastSeq = p.Sequence
			haveSeq = true

			// Send packet to channel (non-blocking)
			select {
			case d.packets <- p:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Packets channel full, dropping packet")
			}
		}
	}
}
