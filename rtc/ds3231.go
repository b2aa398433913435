package rtc

import (
	"fmt"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

// DS3231 reads a Maxim DS3231 clock chip over I2C.
type DS3231 struct {
	dev ds3231.Device
}

// NewDS3231 attaches to the chip on the given bus. A dead coin cell
// is reported on ReadTime rather than here, so a stopped chip can
// still be inspected.
func NewDS3231(bus drivers.I2C) *DS3231 {
	dev := ds3231.New(bus)
	dev.Configure()
	return &DS3231{dev: dev}
}

func (d *DS3231) ReadTime() (time.Time, error) {
	if !d.dev.IsTimeValid() {
		return time.Time{}, fmt.Errorf("ds3231 read: oscillator stopped, time not trustworthy")
	}
	t, err := d.dev.ReadTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("ds3231 read: %w", err)
	}
	return t, nil
}
