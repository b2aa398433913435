// Command clockcored maintains a hardware-counter-driven wall clock
// and serves time queries over an interactive console and an optional
// serial time-link.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"clockcore/config"
	"clockcore/core"
	"clockcore/host/serialport"
	"clockcore/host/timelink"
	"clockcore/rtc"
	"clockcore/sources/monoraw"
	"clockcore/sources/pmtimer"
	"clockcore/sources/tsc"
)

var (
	configPath = flag.String("config", "", "Configuration file path")
	linkDevice = flag.String("device", "", "Serial device for the time-link (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "clockcored: %v\n", err)
		os.Exit(1)
	}
	if *linkDevice != "" {
		cfg.Link.Device = *linkDevice
		if cfg.Link.Baud == 0 {
			cfg.Link.Baud = 250000
		}
	}

	log, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "clockcored: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	sub, err := bootSubsystem(cfg, log)
	if err != nil {
		log.Fatal("boot failed", zap.Error(err))
	}

	go runResyncLoop(sub, cfg, log)

	if cfg.Link.Device != "" {
		port, err := serialport.Open(linkPortConfig(cfg.Link))
		if err != nil {
			log.Fatal("time-link open failed", zap.Error(err))
		}
		defer port.Close()
		srv := timelink.NewServer(sub, log)
		go func() {
			if err := srv.Serve(port); err != nil {
				log.Error("time-link server stopped", zap.Error(err))
			}
		}()
		log.Info("time-link serving", zap.String("device", cfg.Link.Device))
	}

	runConsole(sub)
}

// linkPortConfig builds the serial settings for the time-link server.
// The server parks in Read between requests and treats EOF as a
// hangup, and a tarm read timeout surfaces as a zero-byte read that
// becomes EOF, so the port must open blocking.
func linkPortConfig(link config.LinkConfig) *serialport.Config {
	return &serialport.Config{
		Device: link.Device,
		Baud:   link.Baud,
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		return config.Default(), nil
	}
	return config.Load(*configPath)
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// bootSubsystem probes counters, registers the configured sources and
// seeds the wall clock.
func bootSubsystem(cfg *config.Config, log *zap.Logger) (*core.Subsystem, error) {
	fallback := probeFallback(cfg, log)
	if fallback == nil {
		return nil, errors.New("no usable counter on this host")
	}

	sub := core.InitSubsystem(fallback, log)

	if sourceEnabled(cfg, "tsc") {
		if src, err := tsc.New(log); err != nil {
			log.Warn("tsc unavailable", zap.Error(err))
		} else {
			sub.Register(src)
		}
	}

	if sub.SelectActive() == nil {
		return nil, errors.New("source selection yielded nothing")
	}

	if err := sub.InitWallClock(openRTC(cfg, log)); err != nil {
		log.Warn("rtc seed failed, falling back to system clock", zap.Error(err))
		if err := sub.InitWallClock(rtc.SystemClock{}); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// probeFallback picks the baseline counter: the ACPI PM timer when it
// probes, the kernel's raw monotonic clock otherwise.
func probeFallback(cfg *config.Config, log *zap.Logger) core.ClockSource {
	if sourceEnabled(cfg, "pmtimer") {
		if src, err := pmtimer.Probe(log); err != nil {
			log.Warn("pm timer unavailable", zap.Error(err))
		} else {
			return src
		}
	}
	if sourceEnabled(cfg, "monoraw") || sourceEnabled(cfg, "pmtimer") {
		if src, err := monoraw.New(); err != nil {
			log.Warn("monotonic raw clock unavailable", zap.Error(err))
		} else {
			return src
		}
	}
	return nil
}

func sourceEnabled(cfg *config.Config, name string) bool {
	for _, s := range cfg.Sources {
		if s.Type == name {
			return !s.Disable
		}
	}
	return false
}

func openRTC(cfg *config.Config, log *zap.Logger) core.RTCReader {
	switch cfg.RTC.Driver {
	case "cmos":
		r, err := rtc.OpenCMOS()
		if err != nil {
			log.Warn("cmos rtc unavailable", zap.Error(err))
			return rtc.SystemClock{}
		}
		return r
	case "ds3231":
		bus, err := rtc.OpenI2CDev(cfg.RTC.Bus)
		if err != nil {
			log.Warn("i2c bus unavailable", zap.Error(err))
			return rtc.SystemClock{}
		}
		return rtc.NewDS3231(bus)
	default:
		return rtc.SystemClock{}
	}
}

// runResyncLoop drives the periodic wall-clock advancement so the
// active counter never wraps twice between samples.
func runResyncLoop(sub *core.Subsystem, cfg *config.Config, log *zap.Logger) {
	start := time.Now()
	nowNS := func() uint64 { return uint64(time.Since(start)) }

	timers := core.NewTimerList()
	if iv := cfg.Resync.Interval.Std(); iv > 0 {
		t := &core.Timer{WakeNS: nowNS() + uint64(iv)}
		t.Handler = func(t *core.Timer) uint8 {
			if err := sub.Advance(); err != nil {
				log.Debug("resync skipped", zap.Error(err))
			}
			t.WakeNS += uint64(iv)
			return core.SF_RESCHEDULE
		}
		timers.Schedule(t)
	} else {
		timers.Schedule(sub.NewResyncTimer(nowNS()))
	}

	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for range tick.C {
		timers.Dispatch(nowNS())
	}
}

func runConsole(sub *core.Subsystem) {
	console := core.NewConsole()
	sub.InstallConsoleCommands(console)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "quit", "exit", "q":
			return
		case "help", "?":
			fmt.Print(console.Help())
			continue
		}
		if err := console.Dispatch(line, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}
