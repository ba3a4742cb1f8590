package spidev

import "github.com/moffa90/go-w25n/protocol"

// Config holds the spidev settings applied on Open.
type Config struct {
	// SpeedHz is the clock rate of every segment. Zero keeps the driver's
	// configured maximum.
	SpeedHz uint32

	// Mode is the clock polarity and phase. Width bits are added from
	// MaxWidth.
	Mode Mode

	// MaxWidth is the widest phase the controller and wiring support
	MaxWidth protocol.BusWidth
}

func defaultConfig() Config {
	return Config{
		SpeedHz:  10_000_000,
		Mode:     Mode0,
		MaxWidth: protocol.Single,
	}
}

// Option is a functional option for Open.
type Option func(*Config)

// WithSpeed sets the SPI clock in Hz.
func WithSpeed(hz uint32) Option {
	return func(c *Config) {
		c.SpeedHz = hz
	}
}

// WithMode sets the clock polarity and phase.
func WithMode(m Mode) Option {
	return func(c *Config) {
		c.Mode = m
	}
}

// WithMaxWidth enables dual or quad phases. Commands wider than the
// configured width fail with protocol.ErrBusAddress.
func WithMaxWidth(w protocol.BusWidth) Option {
	return func(c *Config) {
		switch w {
		case protocol.Single, protocol.Dual, protocol.Quad:
			c.MaxWidth = w
		}
	}
}
