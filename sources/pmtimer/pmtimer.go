// Package pmtimer implements the ACPI power-management timer clock
// source, the always-available baseline candidate for selection.
package pmtimer

import (
	"fmt"

	"go.uber.org/zap"

	"clockcore/core"
)

const (
	// FrequencyHz is the fixed ACPI PM timer rate.
	FrequencyHz = 3579545

	resolutionNS = core.NSPerSec / FrequencyHz

	// The counter overflows depending on its width:
	//
	//   2**24 ticks / 3,579,545 ticks/sec = 4.69 sec
	//   2**32 ticks / 3,579,545 ticks/sec = 1200 sec
	//
	// Resample at least every 2 seconds, well inside the 24-bit wrap.
	fixupPeriodNS = 2 * core.NSPerSec
)

// PortReader reads the raw PM timer register. Register access is
// platform plumbing, not part of the driver; the real implementation
// lives in acpi_linux.go and tests supply their own.
type PortReader interface {
	ReadCounter() (uint32, error)
}

// Source is the PM timer clock source.
type Source struct {
	port PortReader
	bits uint8
	log  *zap.Logger
}

// New creates a PM timer source over a counter register. width32 is the
// platform capability flag for the extended 32-bit counter; without it
// the counter is 24 bits wide.
func New(port PortReader, width32 bool, log *zap.Logger) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	bits := uint8(24)
	if width32 {
		bits = 32
	}
	return &Source{port: port, bits: bits, log: log}
}

func (s *Source) Name() string          { return "PMT" }
func (s *Source) Bits() uint8           { return s.bits }
func (s *Source) FrequencyHz() uint64   { return FrequencyHz }
func (s *Source) ResolutionNS() uint64  { return resolutionNS }
func (s *Source) FixupPeriodNS() uint64 { return fixupPeriodNS }

// Enable reports the timer configuration. The counter free-runs from
// power-on, so there is nothing to start.
func (s *Source) Enable() error {
	s.log.Info("pm timer enabled", zap.Uint8("bits", s.bits),
		zap.Int("resolution_ns", resolutionNS))
	return nil
}

// Disable is a no-op: the counter cannot be stopped.
func (s *Source) Disable() error {
	return nil
}

// Read samples the counter, masked to the counter width.
func (s *Source) Read() (core.Cycles, error) {
	v, err := s.port.ReadCounter()
	if err != nil {
		return 0, fmt.Errorf("pm timer read: %w", err)
	}
	return core.Cycles(v) & s.mask(), nil
}

// Elapsed converts the tick delta between two samples to nanoseconds.
// The masked subtraction yields the true delta across at most one wrap
// of the counter.
func (s *Source) Elapsed(a, b core.Cycles) uint64 {
	delta := (b - a) & s.mask()
	return core.CyclesToNS(uint64(delta), FrequencyHz)
}

func (s *Source) mask() core.Cycles {
	return (core.Cycles(1) << s.bits) - 1
}
