//go:build amd64

package tsc

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"clockcore/core"
)

func TestCounterAdvances(t *testing.T) {
	a := readCounter()
	time.Sleep(time.Millisecond)
	b := readCounter()
	if b <= a {
		t.Fatalf("counter did not advance: %d then %d", a, b)
	}
}

func TestNewDescriptor(t *testing.T) {
	src, err := New(zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if src.Name() != "TSC" {
		t.Errorf("Name = %q", src.Name())
	}
	if src.Bits() != 64 {
		t.Errorf("Bits = %d", src.Bits())
	}
	if src.FrequencyHz() == 0 {
		t.Error("calibration returned zero frequency")
	}
	if src.ResolutionNS() == 0 {
		t.Error("resolution must be at least 1ns")
	}
	if src.FixupPeriodNS() != 10*core.NSPerSec {
		t.Errorf("FixupPeriodNS = %d", src.FixupPeriodNS())
	}
}

func TestNewNilLogger(t *testing.T) {
	src, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if src.FrequencyHz() == 0 {
		t.Error("calibration returned zero frequency")
	}
}

func TestElapsed(t *testing.T) {
	src := &Source{freqHz: 1000000, resNS: 1000}
	if got := src.Elapsed(100, 1100); got != 1000000 {
		t.Errorf("Elapsed(100, 1100) = %d, want 1000000", got)
	}
	if got := src.Elapsed(1100, 100); got != 0 {
		t.Errorf("reordered pair: Elapsed = %d, want 0", got)
	}
}

func TestCalibrationRoughlyMatchesWallClock(t *testing.T) {
	src, err := New(zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	start, _ := src.Read()
	time.Sleep(20 * time.Millisecond)
	end, _ := src.Read()
	ns := src.Elapsed(start, end)
	// Sleep overshoots but never undershoots; allow a wide band for
	// loaded CI machines.
	if ns < 15*1000000 || ns > 500*1000000 {
		t.Errorf("20ms sleep measured as %dns", ns)
	}
}
