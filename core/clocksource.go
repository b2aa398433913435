package core

// Cycles is a raw sample from a free-running hardware counter, in the
// counter's native units. Samples are only meaningful to the source
// that produced them.
type Cycles uint64

// Time unit conversions
const (
	NSPerSec = 1000000000
	NSPerUS  = 1000
)

// ClockSource is the contract every hardware timer driver implements.
// Read and Elapsed are the two required capabilities; enable/disable
// are optional and discovered via the Enabler/Disabler interfaces.
type ClockSource interface {
	// Name returns a short identifier used in logs ("PMT", "TSC", ...)
	Name() string

	// Bits returns the width of the hardware counter, which determines
	// its wrap period
	Bits() uint8

	// FrequencyHz returns the counter tick rate
	FrequencyHz() uint64

	// ResolutionNS returns nanoseconds per counter tick; a smaller value
	// means a more precise source
	ResolutionNS() uint64

	// FixupPeriodNS is the maximum interval the counter may go unread
	// before a wrap could pass unnoticed
	FixupPeriodNS() uint64

	// Read samples the counter. A failed hardware read returns an error;
	// the caller treats it as a zero-length advance and must not let it
	// disturb the wall clock.
	Read() (Cycles, error)

	// Elapsed returns the nanoseconds between two samples taken in
	// temporal order a then b, accounting for at most one counter wrap.
	Elapsed(a, b Cycles) uint64
}

// Enabler is implemented by sources that need to be started before
// they count.
type Enabler interface {
	Enable() error
}

// Disabler is implemented by sources that can be stopped.
type Disabler interface {
	Disable() error
}

// enableSource starts a source if it supports being started.
func enableSource(s ClockSource) error {
	if e, ok := s.(Enabler); ok {
		return e.Enable()
	}
	return nil
}

// disableSource stops a source if it supports being stopped.
func disableSource(s ClockSource) error {
	if d, ok := s.(Disabler); ok {
		return d.Disable()
	}
	return nil
}

// CyclesToNS converts a tick delta to nanoseconds for a counter running
// at freqHz. Split into whole and fractional parts so the intermediate
// product cannot overflow for any realistic frequency.
func CyclesToNS(delta, freqHz uint64) uint64 {
	if freqHz == 0 {
		return 0
	}
	return (delta/freqHz)*NSPerSec + (delta%freqHz)*NSPerSec/freqHz
}
