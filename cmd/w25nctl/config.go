package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-w25n/protocol"
)

// Supported drivers.
const (
	driverSpidev = "spidev"
	driverPeriph = "periph"
	driverSim    = "sim"
)

// Config is the w25nctl configuration. It is read from a YAML file and
// then overridden by command line flags.
//
// Example:
//
//	driver: spidev
//	device: /dev/spidev0.0
//	speed_hz: 20000000
//	width: quad
//	log_level: info
//	poll_interval: 100us
//	verify: true
type Config struct {
	Driver        string        `yaml:"driver"`
	Device        string        `yaml:"device"`
	SpeedHz       uint32        `yaml:"speed_hz"`
	Width         string        `yaml:"width"`
	LogLevel      string        `yaml:"log_level"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	Verify        bool          `yaml:"verify"`
	SkipBadBlocks bool          `yaml:"skip_bad_blocks"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Driver:   driverSpidev,
		Device:   "/dev/spidev0.0",
		SpeedHz:  10_000_000,
		Width:    "single",
		LogLevel: "warn",
		Verify:   true,
	}
}

// ConfigError reports an unreadable or invalid configuration.
type ConfigError struct {
	File    string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ParseConfig parses YAML on top of DefaultConfig. Unknown keys are
// rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &ConfigError{Message: "failed to parse YAML", Cause: err}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the config file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigError{File: path, Message: "failed to read file", Cause: err}
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			ce.File = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the driver, width and log level.
func (c Config) Validate() error {
	switch c.Driver {
	case driverSpidev, driverPeriph, driverSim:
	default:
		return &ConfigError{Message: fmt.Sprintf("unknown driver %q (want spidev, periph or sim)", c.Driver)}
	}

	width, err := c.BusWidth()
	if err != nil {
		return err
	}
	if c.Driver == driverPeriph && width != protocol.Single {
		return &ConfigError{Message: "the periph driver only supports width single"}
	}

	if _, err := c.Level(); err != nil {
		return err
	}
	if c.PollInterval < 0 {
		return &ConfigError{Message: "poll_interval cannot be negative"}
	}
	return nil
}

// BusWidth returns the configured maximum bus width.
func (c Config) BusWidth() (protocol.BusWidth, error) {
	for _, w := range []protocol.BusWidth{protocol.Single, protocol.Dual, protocol.Quad} {
		if c.Width == w.String() {
			return w, nil
		}
	}
	return 0, &ConfigError{Message: fmt.Sprintf("unknown width %q (want single, dual or quad)", c.Width)}
}

// Level returns the configured log level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, &ConfigError{Message: "invalid log_level", Cause: err}
	}
	return lvl, nil
}

// methodsFor picks the load and fast read variants for a bus width.
func methodsFor(w protocol.BusWidth) (protocol.WriteMethod, protocol.ReadMethod) {
	switch w {
	case protocol.Quad:
		return protocol.QuadLoad, protocol.FastReadQuadIO
	case protocol.Dual:
		return protocol.SingleLoad, protocol.FastReadDualIO
	default:
		return protocol.SingleLoad, protocol.FastRead
	}
}
