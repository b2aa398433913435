// Package monoraw adapts the kernel's raw monotonic clock to the
// clock source contract. It exists as a portable fallback for hosts
// where no hardware counter can be probed directly.
package monoraw

import (
	"fmt"

	"golang.org/x/sys/unix"

	"clockcore/core"
)

const fixupPeriodNS = 10 * core.NSPerSec

// Source reads CLOCK_MONOTONIC_RAW. The value is already in
// nanoseconds so frequency is fixed at 1GHz.
type Source struct{}

func New() (*Source, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return nil, fmt.Errorf("monoraw: clock_gettime: %w", err)
	}
	return &Source{}, nil
}

func (s *Source) Name() string { return "MONORAW" }

// Bits is reported as 63 because the kernel value is a signed
// nanosecond count.
func (s *Source) Bits() uint8 { return 63 }

func (s *Source) FrequencyHz() uint64 { return core.NSPerSec }

func (s *Source) ResolutionNS() uint64 { return 1 }

func (s *Source) FixupPeriodNS() uint64 { return fixupPeriodNS }

func (s *Source) Read() (core.Cycles, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return 0, fmt.Errorf("monoraw: clock_gettime: %w", err)
	}
	return core.Cycles(uint64(ts.Sec)*core.NSPerSec + uint64(ts.Nsec)), nil
}

func (s *Source) Elapsed(a, b core.Cycles) uint64 {
	if b < a {
		return 0
	}
	return uint64(b - a)
}
