package core

import (
	"sync/atomic"
	"time"
)

// fakeSource is a scripted clock source for tests. Read returns the next
// scripted sample, sticking on the last one when the script runs out.
type fakeSource struct {
	name    string
	bits    uint8
	freq    uint64
	res     uint64
	fixup   uint64
	samples []Cycles
	idx     int
	readErr error
	reads   int
}

func newFakeSource(name string, res uint64, samples ...Cycles) *fakeSource {
	return &fakeSource{
		name:    name,
		bits:    32,
		freq:    1000000, // 1 MHz: one tick per microsecond
		res:     res,
		fixup:   2 * NSPerSec,
		samples: samples,
	}
}

func (f *fakeSource) Name() string          { return f.name }
func (f *fakeSource) Bits() uint8           { return f.bits }
func (f *fakeSource) FrequencyHz() uint64   { return f.freq }
func (f *fakeSource) ResolutionNS() uint64  { return f.res }
func (f *fakeSource) FixupPeriodNS() uint64 { return f.fixup }

func (f *fakeSource) Read() (Cycles, error) {
	f.reads++
	if f.readErr != nil {
		return 0, f.readErr
	}
	if len(f.samples) == 0 {
		return 0, nil
	}
	s := f.samples[f.idx]
	if f.idx < len(f.samples)-1 {
		f.idx++
	}
	return s, nil
}

func (f *fakeSource) Elapsed(a, b Cycles) uint64 {
	mask := ^Cycles(0)
	if f.bits < 64 {
		mask = (Cycles(1) << f.bits) - 1
	}
	delta := (b - a) & mask
	return CyclesToNS(uint64(delta), f.freq)
}

// switchableSource adds enable/disable capabilities to fakeSource.
type switchableSource struct {
	fakeSource
	on       bool
	enables  int
	disables int
}

func newSwitchableSource(name string, res uint64, samples ...Cycles) *switchableSource {
	return &switchableSource{fakeSource: *newFakeSource(name, res, samples...)}
}

func (s *switchableSource) Enable() error {
	s.on = true
	s.enables++
	return nil
}

func (s *switchableSource) Disable() error {
	s.on = false
	s.disables++
	return nil
}

// tickingSource is a thread-safe source whose counter advances a fixed
// number of ticks on every read, for concurrency tests.
type tickingSource struct {
	counter atomic.Uint64
	step    uint64
}

func (t *tickingSource) Name() string          { return "TICK" }
func (t *tickingSource) Bits() uint8           { return 64 }
func (t *tickingSource) FrequencyHz() uint64   { return 1000000 }
func (t *tickingSource) ResolutionNS() uint64  { return 1000 }
func (t *tickingSource) FixupPeriodNS() uint64 { return 2 * NSPerSec }

func (t *tickingSource) Read() (Cycles, error) {
	return Cycles(t.counter.Add(t.step)), nil
}

func (t *tickingSource) Elapsed(a, b Cycles) uint64 {
	if b < a {
		return 0
	}
	return CyclesToNS(uint64(b-a), t.FrequencyHz())
}

// fakeRTC returns a fixed boot time.
type fakeRTC struct {
	t   time.Time
	err error
}

func (r fakeRTC) ReadTime() (time.Time, error) {
	return r.t, r.err
}
