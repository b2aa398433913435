package core

import "testing"

func TestRegistryDeduplicates(t *testing.T) {
	r := NewSourceRegistry(nil)
	src := newFakeSource("PMT", 279, 0)

	r.Register(src)
	r.Register(src)

	if r.Len() != 1 {
		t.Errorf("expected 1 source after double register, got %d", r.Len())
	}
}

func TestRegisterEnablesImmediately(t *testing.T) {
	r := NewSourceRegistry(nil)
	src := newSwitchableSource("TSC", 1, 0)

	r.Register(src)

	if !src.on || src.enables != 1 {
		t.Errorf("register did not enable source: on=%v enables=%d", src.on, src.enables)
	}
}

func TestRegisterPlainSource(t *testing.T) {
	// A source without enable/disable capabilities registers fine.
	r := NewSourceRegistry(nil)
	src := newFakeSource("MONO_RAW", 1, 0)

	r.Register(src)

	if r.Len() != 1 {
		t.Errorf("expected 1 source, got %d", r.Len())
	}
}

func TestUnregisterDoesNotDisable(t *testing.T) {
	r := NewSourceRegistry(nil)
	src := newSwitchableSource("TSC", 1, 0)

	r.Register(src)
	r.Unregister(src)

	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
	if src.disables != 0 {
		t.Errorf("unregister must not stop the device, disables=%d", src.disables)
	}

	// Removing it again is harmless.
	r.Unregister(src)
}

func TestSnapshotPreservesOrder(t *testing.T) {
	r := NewSourceRegistry(nil)
	a := newFakeSource("A", 100, 0)
	b := newFakeSource("B", 200, 0)
	c := newFakeSource("C", 300, 0)

	r.Register(a)
	r.Register(b)
	r.Register(c)
	r.Unregister(b)

	snap := r.Snapshot()
	if len(snap) != 2 || snap[0] != ClockSource(a) || snap[1] != ClockSource(c) {
		t.Errorf("unexpected snapshot order: %v", snap)
	}
}
