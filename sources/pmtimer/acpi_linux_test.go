//go:build linux

package pmtimer

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeFADT(t *testing.T, table []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "FACP")
	if err := os.WriteFile(path, table, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFADTLegacy(t *testing.T) {
	table := make([]byte, fadtFlags+4)
	binary.LittleEndian.PutUint32(table[fadtPMTimerBlock:], 0x608)

	info, err := readFADT(writeFADT(t, table))
	if err != nil {
		t.Fatalf("readFADT: %v", err)
	}
	if info.timerPort != 0x608 {
		t.Errorf("port = %#x, want 0x608", info.timerPort)
	}
	if info.width32 {
		t.Error("width32 set without the TMR_VAL_EXT flag")
	}
}

func TestReadFADTExtended(t *testing.T) {
	table := make([]byte, fadtXPMTimerGAS+12)
	binary.LittleEndian.PutUint32(table[fadtPMTimerBlock:], 0x608)
	binary.LittleEndian.PutUint32(table[fadtFlags:], flagTimer32)
	table[fadtXPMTimerGAS] = gasSpaceSystemIO
	binary.LittleEndian.PutUint64(table[fadtXPMTimerGAS+4:], 0xB008)

	info, err := readFADT(writeFADT(t, table))
	if err != nil {
		t.Fatalf("readFADT: %v", err)
	}
	if info.timerPort != 0xB008 {
		t.Errorf("port = %#x, want the extended 0xB008", info.timerPort)
	}
	if !info.width32 {
		t.Error("TMR_VAL_EXT flag not honored")
	}
}

func TestReadFADTTruncated(t *testing.T) {
	if _, err := readFADT(writeFADT(t, make([]byte, 40))); err == nil {
		t.Error("expected error for truncated table")
	}
}

func TestReadFADTNoTimer(t *testing.T) {
	if _, err := readFADT(writeFADT(t, make([]byte, fadtFlags+4))); err == nil {
		t.Error("expected error when no timer block is present")
	}
}
