package pmtimer

import (
	"errors"
	"testing"

	"clockcore/core"
)

type fakePort struct {
	values []uint32
	idx    int
	err    error
}

func (p *fakePort) ReadCounter() (uint32, error) {
	if p.err != nil {
		return 0, p.err
	}
	v := p.values[p.idx]
	if p.idx < len(p.values)-1 {
		p.idx++
	}
	return v, nil
}

func TestWidthFlag(t *testing.T) {
	narrow := New(&fakePort{values: []uint32{0}}, false, nil)
	wide := New(&fakePort{values: []uint32{0}}, true, nil)

	if narrow.Bits() != 24 {
		t.Errorf("narrow timer bits = %d, want 24", narrow.Bits())
	}
	if wide.Bits() != 32 {
		t.Errorf("wide timer bits = %d, want 32", wide.Bits())
	}
}

func TestReadMasksToWidth(t *testing.T) {
	// The register reads back 32 bits; a 24-bit timer only counts the
	// low 24.
	src := New(&fakePort{values: []uint32{0xFF123456}}, false, nil)

	v, err := src.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if v != 0x123456 {
		t.Errorf("read = %#x, want 0x123456", v)
	}
}

func TestReadFailure(t *testing.T) {
	src := New(&fakePort{err: errors.New("io fail")}, true, nil)

	v, err := src.Read()
	if err == nil {
		t.Fatal("expected error from failing port")
	}
	if v != 0 {
		t.Errorf("failed read returned %d, want the zero sentinel", v)
	}
}

func TestElapsedSimple(t *testing.T) {
	src := New(&fakePort{values: []uint32{0}}, true, nil)

	// One full second of ticks.
	if got := src.Elapsed(0, FrequencyHz); got != core.NSPerSec {
		t.Errorf("elapsed = %dns, want 1s", got)
	}
}

func TestElapsedSingleWrap24(t *testing.T) {
	src := New(&fakePort{values: []uint32{0}}, false, nil)

	// The counter wrapped exactly once: 0xFFFFF0 -> 0x10 is 0x20 ticks.
	a := core.Cycles(0xFFFFF0)
	b := core.Cycles(0x10)

	want := core.CyclesToNS(0x20, FrequencyHz)
	if got := src.Elapsed(a, b); got != want {
		t.Errorf("wrapped elapsed = %dns, want %dns", got, want)
	}
	if want <= 0 || want > fixupPeriodNS {
		t.Errorf("expected a small positive delta, got %dns", want)
	}
}

func TestElapsedSingleWrap32(t *testing.T) {
	src := New(&fakePort{values: []uint32{0}}, true, nil)

	a := core.Cycles(0xFFFFFFF0)
	b := core.Cycles(0x10)

	want := core.CyclesToNS(0x20, FrequencyHz)
	if got := src.Elapsed(a, b); got != want {
		t.Errorf("wrapped elapsed = %dns, want %dns", got, want)
	}
}

func TestFixupInsideWrapPeriod(t *testing.T) {
	// The resample interval must sit inside the narrow counter's wrap
	// period (2^24 / 3579545 Hz = 4.69s).
	wrapNS := core.CyclesToNS(1<<24, FrequencyHz)
	if fixupPeriodNS >= wrapNS {
		t.Errorf("fixup period %dns not inside wrap period %dns", uint64(fixupPeriodNS), wrapNS)
	}
}

func TestSourceDescriptors(t *testing.T) {
	src := New(&fakePort{values: []uint32{0}}, false, nil)

	if src.Name() != "PMT" {
		t.Errorf("name = %q", src.Name())
	}
	if src.FrequencyHz() != 3579545 {
		t.Errorf("frequency = %d", src.FrequencyHz())
	}
	if src.ResolutionNS() != 279 {
		t.Errorf("resolution = %dns, want 279", src.ResolutionNS())
	}
	if err := src.Enable(); err != nil {
		t.Errorf("enable: %v", err)
	}
	if err := src.Disable(); err != nil {
		t.Errorf("disable: %v", err)
	}
}
