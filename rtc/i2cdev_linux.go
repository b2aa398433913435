package rtc

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// i2cSlave is the ioctl that binds a /dev/i2c-N fd to a bus address.
const i2cSlave = 0x0703

// I2CDev exposes a Linux /dev/i2c-N character device through the
// driver bus interface so chip drivers written against it work on a
// plain host kernel.
type I2CDev struct {
	f *os.File
}

func OpenI2CDev(path string) (*I2CDev, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c open %s: %w", path, err)
	}
	return &I2CDev{f: f}, nil
}

func (d *I2CDev) Close() error {
	return d.f.Close()
}

// Tx performs a write followed by a read against the addressed chip.
func (d *I2CDev) Tx(addr uint16, w, r []byte) error {
	if err := unix.IoctlSetInt(int(d.f.Fd()), i2cSlave, int(addr)); err != nil {
		return fmt.Errorf("i2c addr %#x: %w", addr, err)
	}
	if len(w) > 0 {
		if _, err := d.f.Write(w); err != nil {
			return fmt.Errorf("i2c write: %w", err)
		}
	}
	if len(r) > 0 {
		if _, err := io.ReadFull(d.f, r); err != nil {
			return fmt.Errorf("i2c read: %w", err)
		}
	}
	return nil
}
