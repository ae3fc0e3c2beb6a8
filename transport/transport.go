// Package transport provides the serial channel the Tech2 protocol runs
// over and the deadline-bounded read helpers shared by the session and
// download layers.
package transport

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the Tech2 link speed.
const DefaultBaudRate = 38400

// Port is the duplex byte channel the protocol runs over. It is satisfied
// by go.bug.st/serial.Port; tests substitute scripted implementations.
//
// A Port is owned exclusively by one client for its lifetime. Read returns
// (0, nil) when the configured read timeout expires with no data.
type Port interface {
	io.ReadWriteCloser

	// SetReadTimeout bounds how long a single Read may block
	SetReadTimeout(t time.Duration) error

	// ResetInputBuffer discards unread input
	ResetInputBuffer() error
}

// Open opens the named serial port at the given baud rate, 8N1.
// A baud of 0 selects DefaultBaudRate.
func Open(name string, baud int) (Port, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	return port, nil
}
