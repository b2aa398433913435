//go:build !linux

package pmtimer

import (
	"fmt"

	"go.uber.org/zap"
)

// Probe is only implemented on linux, where the FADT and the port-space
// device are reachable.
func Probe(log *zap.Logger) (*Source, error) {
	return nil, fmt.Errorf("pm timer probing not supported on this platform")
}
