//go:build !linux

package spidev

import (
	"errors"

	"github.com/moffa90/go-w25n/protocol"
)

var errUnsupported = errors.New("spidev: only supported on linux")

// Device is a W25N01GV transport on a Linux spidev node.
type Device struct{}

// Open always fails outside Linux.
func Open(dev string, opts ...Option) (*Device, error) {
	return nil, errUnsupported
}

// Mode always fails outside Linux.
func (d *Device) Mode() (Mode, error) { return 0, errUnsupported }

// Close is a no-op outside Linux.
func (d *Device) Close() error { return nil }

// Write always fails outside Linux.
func (d *Device) Write(cmd protocol.Command) error { return errUnsupported }

// Transfer always fails outside Linux.
func (d *Device) Transfer(cmd protocol.Command, rx []byte) error { return errUnsupported }
