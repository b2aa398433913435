// Package rtc provides the battery-backed clock readers used to seed
// the wall clock at boot. Every reader satisfies core.RTCReader; the
// seeding code does not care which flavor of hardware sits behind it.
package rtc

import "time"

// SystemClock reads the operating system's idea of wall time. It is
// the fallback when no hardware RTC is configured or reachable.
type SystemClock struct{}

func (SystemClock) ReadTime() (time.Time, error) {
	return time.Now(), nil
}
