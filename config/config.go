// Package config loads the daemon configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level daemon configuration.
type Config struct {
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Resync  ResyncConfig   `yaml:"resync"`
	Sources []SourceConfig `yaml:"sources"`
	RTC     RTCConfig      `yaml:"rtc"`
	Link    LinkConfig     `yaml:"link"`
}

// Duration parses YAML strings like "500ms" or "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// ResyncConfig controls the periodic wall-clock advancement.
type ResyncConfig struct {
	// Interval overrides the automatic half-fixup-period cadence.
	// Zero keeps the automatic value.
	Interval Duration `yaml:"interval"`
}

// SourceConfig enables or disables one counter driver.
type SourceConfig struct {
	// Type is the driver name: pmtimer, tsc, monoraw.
	Type    string `yaml:"type"`
	Disable bool   `yaml:"disable"`
}

// RTCConfig picks the boot-time wall clock seed.
type RTCConfig struct {
	// Driver is system, cmos, or ds3231.
	Driver string `yaml:"driver"`
	// Bus is the I2C device path for ds3231, e.g. /dev/i2c-1.
	Bus string `yaml:"bus"`
}

// LinkConfig configures the optional serial time-link server.
type LinkConfig struct {
	// Device is the serial port path. Empty disables the link.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config read: %w", err)
	}
	return Parse(raw)
}

// Parse decodes configuration out of YAML text.
func Parse(raw []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.Sources) == 0 {
		c.Sources = []SourceConfig{
			{Type: "pmtimer"},
			{Type: "tsc"},
		}
	}
	if c.RTC.Driver == "" {
		c.RTC.Driver = "system"
	}
	if c.RTC.Driver == "ds3231" && c.RTC.Bus == "" {
		c.RTC.Bus = "/dev/i2c-1"
	}
	if c.Link.Device != "" && c.Link.Baud == 0 {
		c.Link.Baud = 250000
	}
}

func (c *Config) validate() error {
	for _, s := range c.Sources {
		switch s.Type {
		case "pmtimer", "tsc", "monoraw":
		default:
			return fmt.Errorf("config: unknown source type %q", s.Type)
		}
	}
	switch c.RTC.Driver {
	case "system", "cmos", "ds3231":
	default:
		return fmt.Errorf("config: unknown rtc driver %q", c.RTC.Driver)
	}
	if c.Resync.Interval < 0 {
		return fmt.Errorf("config: negative resync interval")
	}
	return nil
}
