// Package serialport abstracts the serial device carrying the
// time-link protocol so tests can substitute an in-memory pipe.
package serialport

import "io"

// Port is a bidirectional byte stream to the peer.
type Port interface {
	io.ReadWriteCloser

	// Flush pushes any buffered output to the device.
	Flush() error
}

// Config holds serial port settings.
type Config struct {
	// Device path, e.g. "/dev/ttyS0".
	Device string

	// Baud rate. USB CDC devices ignore this.
	Baud int

	// Read timeout in milliseconds, 0 blocks.
	ReadTimeout int
}

func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        250000,
		ReadTimeout: 100,
	}
}
