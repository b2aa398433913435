//go:build !linux

package rtc

import (
	"fmt"
	"time"
)

type CMOS struct{}

func OpenCMOS() (*CMOS, error) {
	return nil, fmt.Errorf("cmos rtc: only supported on linux")
}

func (c *CMOS) ReadTime() (time.Time, error) {
	return time.Time{}, fmt.Errorf("cmos rtc: only supported on linux")
}
