package core

// Timespec is a wall-clock value: seconds since the Unix epoch plus a
// nanosecond remainder in [0, 1e9).
type Timespec struct {
	Sec  int64
	Nsec int64
}

// Timeval is a wall-clock value truncated to microsecond resolution.
type Timeval struct {
	Sec  int64
	Usec int64
}

// NS returns the value as a single nanosecond count since the epoch.
func (ts Timespec) NS() uint64 {
	return uint64(ts.Sec)*NSPerSec + uint64(ts.Nsec)
}

// Timeval truncates the value to microseconds.
func (ts Timespec) Timeval() Timeval {
	return Timeval{Sec: ts.Sec, Usec: ts.Nsec / NSPerUS}
}

// addNanoseconds advances the value by ns, carrying into seconds. Deltas
// are non-negative, so the result never moves backwards.
func (ts *Timespec) addNanoseconds(ns uint64) {
	ts.Sec += int64(ns / NSPerSec)
	ts.Nsec += int64(ns % NSPerSec)
	if ts.Nsec >= NSPerSec {
		ts.Nsec -= NSPerSec
		ts.Sec++
	}
}
