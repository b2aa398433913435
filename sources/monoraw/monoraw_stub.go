//go:build !linux

package monoraw

import (
	"fmt"

	"clockcore/core"
)

// Source is unavailable off Linux.
type Source struct{}

func New() (*Source, error) {
	return nil, fmt.Errorf("monoraw: only supported on linux")
}

func (s *Source) Name() string            { return "MONORAW" }
func (s *Source) Bits() uint8             { return 63 }
func (s *Source) FrequencyHz() uint64     { return core.NSPerSec }
func (s *Source) ResolutionNS() uint64    { return 1 }
func (s *Source) FixupPeriodNS() uint64   { return 10 * core.NSPerSec }
func (s *Source) Read() (core.Cycles, error) {
	return 0, fmt.Errorf("monoraw: only supported on linux")
}
func (s *Source) Elapsed(a, b core.Cycles) uint64 { return 0 }
