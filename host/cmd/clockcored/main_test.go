package main

import (
	"testing"

	"clockcore/config"
)

func TestLinkPortOpensBlocking(t *testing.T) {
	cfg := linkPortConfig(config.LinkConfig{Device: "/dev/ttyS0", Baud: 250000})
	if cfg.ReadTimeout != 0 {
		t.Errorf("link port read timeout = %dms; an idle timeout surfaces"+
			" as EOF and kills the server", cfg.ReadTimeout)
	}
	if cfg.Device != "/dev/ttyS0" || cfg.Baud != 250000 {
		t.Errorf("link settings not carried over: %+v", cfg)
	}
}
