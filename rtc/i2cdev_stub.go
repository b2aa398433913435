//go:build !linux

package rtc

import "fmt"

type I2CDev struct{}

func OpenI2CDev(path string) (*I2CDev, error) {
	return nil, fmt.Errorf("i2c: only supported on linux")
}

func (d *I2CDev) Close() error { return nil }

func (d *I2CDev) Tx(addr uint16, w, r []byte) error {
	return fmt.Errorf("i2c: only supported on linux")
}
