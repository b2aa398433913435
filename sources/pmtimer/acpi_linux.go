//go:build linux

package pmtimer

import (
	"encoding/binary"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// FADT field offsets (ACPI spec, "FACP" table)
const (
	fadtPMTimerBlock = 76  // PM_TMR_BLK, 32-bit I/O port
	fadtFlags        = 112 // fixed feature flags
	fadtXPMTimerGAS  = 208 // X_PM_TMR_BLK generic address structure

	// TMR_VAL_EXT flag: the timer value is extended to 32 bits
	flagTimer32 = 1 << 8

	gasSpaceSystemIO = 1
)

// fadtInfo is what the driver needs out of the firmware table.
type fadtInfo struct {
	timerPort uint64
	width32   bool
}

// readFADT parses the kernel's copy of the FADT.
func readFADT(path string) (fadtInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fadtInfo{}, fmt.Errorf("fadt read: %w", err)
	}
	if len(raw) < fadtFlags+4 {
		return fadtInfo{}, fmt.Errorf("fadt truncated: %d bytes", len(raw))
	}

	info := fadtInfo{
		timerPort: uint64(binary.LittleEndian.Uint32(raw[fadtPMTimerBlock:])),
		width32:   binary.LittleEndian.Uint32(raw[fadtFlags:])&flagTimer32 != 0,
	}

	// ACPI 2.0+ extended address supersedes the legacy field when present
	// and still in I/O port space.
	if len(raw) >= fadtXPMTimerGAS+12 && raw[fadtXPMTimerGAS] == gasSpaceSystemIO {
		if addr := binary.LittleEndian.Uint64(raw[fadtXPMTimerGAS+4:]); addr != 0 {
			info.timerPort = addr
		}
	}

	if info.timerPort == 0 {
		return fadtInfo{}, fmt.Errorf("fadt: no pm timer block")
	}
	return info, nil
}

// devPortReader reads the PM timer register through /dev/port. Requires
// root (CAP_SYS_RAWIO).
type devPortReader struct {
	fd   int
	port int64
}

func openDevPort(port uint64) (*devPortReader, error) {
	fd, err := unix.Open("/dev/port", unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/port: %w", err)
	}
	return &devPortReader{fd: fd, port: int64(port)}, nil
}

func (r *devPortReader) ReadCounter() (uint32, error) {
	var buf [4]byte
	n, err := unix.Pread(r.fd, buf[:], r.port)
	if err != nil {
		return 0, fmt.Errorf("port 0x%x read: %w", r.port, err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("port 0x%x short read: %d bytes", r.port, n)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (r *devPortReader) Close() error {
	return unix.Close(r.fd)
}

// Probe locates the PM timer via the firmware tables and returns a
// ready source.
func Probe(log *zap.Logger) (*Source, error) {
	info, err := readFADT("/sys/firmware/acpi/tables/FACP")
	if err != nil {
		return nil, err
	}

	port, err := openDevPort(info.timerPort)
	if err != nil {
		return nil, err
	}

	src := New(port, info.width32, log)

	// One read up front so a misconfigured port fails at probe time, not
	// on the first wall-clock advance.
	if _, err := port.ReadCounter(); err != nil {
		port.Close()
		return nil, err
	}
	return src, nil
}
