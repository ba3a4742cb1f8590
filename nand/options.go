package nand

import "time"

// Config holds the device handle configuration.
type Config struct {
	// Logger is used for logging commands (optional)
	Logger Logger

	// PollInterval is the pause between status reads in WaitWhileBusy.
	// Zero polls back to back.
	PollInterval time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{}
}

// Option is a functional option for configuring a device handle.
type Option func(*Config)

// WithLogger sets a logger for device commands.
//
// Example:
//
//	dev := nand.New(transport, nand.WithLogger(nand.NewSlogLogger(slog.Default())))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithPollInterval sets the pause between status reads while waiting for
// the device. Negative values are ignored.
//
// Example:
//
//	dev := nand.New(transport, nand.WithPollInterval(50*time.Microsecond))
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.PollInterval = d
		}
	}
}
