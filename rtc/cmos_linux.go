package rtc

import (
	"fmt"
	"time"

	urtc "github.com/u-root/u-root/pkg/rtc"
)

// CMOS reads the PC battery-backed clock through the kernel's
// /dev/rtc interface.
type CMOS struct {
	dev *urtc.RTC
}

func OpenCMOS() (*CMOS, error) {
	dev, err := urtc.OpenRTC()
	if err != nil {
		return nil, fmt.Errorf("cmos rtc: %w", err)
	}
	return &CMOS{dev: dev}, nil
}

func (c *CMOS) ReadTime() (time.Time, error) {
	t, err := c.dev.Read()
	if err != nil {
		return time.Time{}, fmt.Errorf("cmos rtc read: %w", err)
	}
	return t, nil
}
