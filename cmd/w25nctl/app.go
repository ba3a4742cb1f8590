package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"github.com/moffa90/go-w25n/nand"
	"github.com/moffa90/go-w25n/simulator"
	"github.com/moffa90/go-w25n/transport/periphspi"
	"github.com/moffa90/go-w25n/transport/spidev"
)

// rootFlags are the persistent flags that override the config file.
type rootFlags struct {
	config   string
	driver   string
	device   string
	speedHz  uint32
	width    string
	logLevel string
}

// app holds the state shared by all subcommands of one invocation.
type app struct {
	flags  rootFlags
	config Config
	logger *slog.Logger

	// chip backs the sim driver. It is created on first use and survives
	// across invocations that share the app.
	chip   *simulator.Chip
	closer io.Closer
}

// configure loads the config file, applies flag overrides and sets up
// logging. It runs before every subcommand.
func (a *app) configure(cmd *cobra.Command) error {
	cfg := DefaultConfig()
	if a.flags.config != "" {
		var err error
		if cfg, err = LoadConfig(a.flags.config); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Driver = a.flags.driver
	}
	if flags.Changed("device") {
		cfg.Device = a.flags.device
	}
	if flags.Changed("speed") {
		cfg.SpeedHz = a.flags.speedHz
	}
	if flags.Changed("width") {
		cfg.Width = a.flags.width
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	a.config = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// open connects the configured transport and returns a read-mode handle.
func (a *app) open() (*nand.ReadDevice, error) {
	var t nand.Transport

	switch a.config.Driver {
	case driverSim:
		if a.chip == nil {
			a.chip = simulator.New()
		}
		t = a.chip

	case driverSpidev:
		width, err := a.config.BusWidth()
		if err != nil {
			return nil, err
		}
		d, err := spidev.Open(a.config.Device,
			spidev.WithSpeed(a.config.SpeedHz),
			spidev.WithMaxWidth(width),
		)
		if err != nil {
			return nil, err
		}
		a.closer = d
		t = d

	case driverPeriph:
		d, err := periphspi.Open(a.config.Device, physic.Frequency(a.config.SpeedHz)*physic.Hertz)
		if err != nil {
			return nil, err
		}
		a.closer = d
		t = d

	default:
		return nil, fmt.Errorf("unknown driver %q", a.config.Driver)
	}

	a.logger.Debug("transport opened", "driver", a.config.Driver, "device", a.config.Device)

	return nand.New(t,
		nand.WithLogger(nand.NewSlogLogger(a.logger)),
		nand.WithPollInterval(a.config.PollInterval),
	), nil
}

// close releases the transport opened by open, if any.
func (a *app) close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}
