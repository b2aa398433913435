package serialport

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// NativePort drives a real serial device.
type NativePort struct {
	port *serial.Port
}

func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("serialport: nil config")
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", cfg.Device, err)
	}
	return &NativePort{port: port}, nil
}

func (p *NativePort) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *NativePort) Write(b []byte) (int, error) { return p.port.Write(b) }

func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Flush is a no-op: writes go straight to the device fd.
func (p *NativePort) Flush() error { return nil }
