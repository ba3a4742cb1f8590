package nand

import (
	"time"

	"github.com/moffa90/go-w25n/protocol"
)

// bus is the transport and configuration a handle owns. Exactly one live
// handle points at a given bus.
type bus struct {
	transport Transport
	config    Config
}

// handle carries the mode-independent operations shared by ReadDevice and
// WriteDevice.
type handle struct {
	bus *bus
}

// ReadDevice is a device handle in read mode. It is the initial mode and
// the mode every write operation returns to.
//
// A ReadDevice is not safe for concurrent use.
type ReadDevice struct {
	handle
}

// WriteDevice is a device handle in write mode: the write enable latch has
// been set and erase, load and program execute are available.
//
// A WriteDevice is not safe for concurrent use.
type WriteDevice struct {
	handle
}

// New takes ownership of transport and returns a read-mode handle.
//
// Example:
//
//	t, err := spidev.Open("/dev/spidev0.0")
//	dev := nand.New(t, nand.WithLogger(logger))
//	id, err := dev.JEDECID()
func New(transport Transport, opts ...Option) *ReadDevice {
	if transport == nil {
		panic("transport cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &ReadDevice{handle{bus: &bus{transport: transport, config: cfg}}}
}

// IntoWriteMode sends Write Enable and returns a write-mode handle. On
// success the receiver is released. On failure the receiver is unchanged.
func (d *ReadDevice) IntoWriteMode() (*WriteDevice, error) {
	const op = "write enable"
	if err := d.gate(op); err != nil {
		return nil, err
	}
	if err := d.write(op, protocol.BuildWriteEnableCmd()); err != nil {
		return nil, err
	}
	return &WriteDevice{d.detach()}, nil
}

// IntoReadMode sends Write Disable and returns a read-mode handle. On
// success the receiver is released. On failure the receiver is unchanged.
func (d *WriteDevice) IntoReadMode() (*ReadDevice, error) {
	const op = "write disable"
	if err := d.gate(op); err != nil {
		return nil, err
	}
	if err := d.write(op, protocol.BuildWriteDisableCmd()); err != nil {
		return nil, err
	}
	return &ReadDevice{d.detach()}, nil
}

// Release detaches the handle and hands the transport back to the caller.
// It returns nil if the handle was already released.
func (h *handle) Release() Transport {
	if h.bus == nil {
		return nil
	}
	t := h.bus.transport
	h.bus = nil
	return t
}

// Released reports whether the handle gave up its transport.
func (h *handle) Released() bool {
	return h.bus == nil
}

// ResetDevice sends Device Reset. It is not busy-gated: reset is accepted
// while the device is busy.
func (h *handle) ResetDevice() error {
	return h.write("device reset", protocol.BuildDeviceResetCmd())
}

// JEDECID reads the manufacturer and device ID. It is not busy-gated.
func (h *handle) JEDECID() (protocol.JEDECID, error) {
	const op = "read JEDEC ID"
	rx := make([]byte, protocol.JEDECIDSize)
	if err := h.transfer(op, protocol.BuildJEDECIDCmd(), rx); err != nil {
		return protocol.JEDECID{}, err
	}
	return protocol.ParseJEDECID(rx)
}

// CheckBusy reads the status register and reports the busy bit.
func (h *handle) CheckBusy() (bool, error) {
	status, err := h.ReadStatusRegister()
	if err != nil {
		return false, err
	}
	return status.DeviceBusy, nil
}

// WaitWhileBusy polls the status register until the busy bit clears. There
// is no timeout. A failed status read ends the wait and is returned.
func (h *handle) WaitWhileBusy() error {
	for {
		busy, err := h.CheckBusy()
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		if d := h.bus.config.PollInterval; d > 0 {
			time.Sleep(d)
		}
	}
}

// detach moves the bus into a new handle value and releases the receiver.
func (h *handle) detach() handle {
	b := h.bus
	h.bus = nil
	return handle{bus: b}
}

// attached returns the bus or ErrHandleReleased.
func (h *handle) attached(op string) (*bus, error) {
	if h.bus == nil {
		return nil, &CommandError{Op: op, Kind: KindHandleReleased}
	}
	return h.bus, nil
}

// gate fails with ErrDeviceBusy when the device would ignore a command.
func (h *handle) gate(op string) error {
	busy, err := h.CheckBusy()
	if err != nil {
		return err
	}
	if busy {
		h.logDebug("command rejected", "op", op, "reason", "busy")
		return &CommandError{Op: op, Kind: KindDeviceBusy}
	}
	return nil
}

func (h *handle) write(op string, cmd protocol.Command) error {
	b, err := h.attached(op)
	if err != nil {
		return err
	}
	h.logDebug("command", "op", op, "cmd", cmd.String())
	if err := b.transport.Write(cmd); err != nil {
		h.logError("transport write failed", "op", op, "error", err)
		return transportError(op, err)
	}
	return nil
}

func (h *handle) transfer(op string, cmd protocol.Command, rx []byte) error {
	b, err := h.attached(op)
	if err != nil {
		return err
	}
	h.logDebug("command", "op", op, "cmd", cmd.String(), "rx", len(rx))
	if err := b.transport.Transfer(cmd, rx); err != nil {
		h.logError("transport transfer failed", "op", op, "error", err)
		return transportError(op, err)
	}
	return nil
}

// logDebug logs a debug message if a logger is configured.
func (h *handle) logDebug(msg string, keysAndValues ...interface{}) {
	if h.bus != nil && h.bus.config.Logger != nil {
		h.bus.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (h *handle) logError(msg string, keysAndValues ...interface{}) {
	if h.bus != nil && h.bus.config.Logger != nil {
		h.bus.config.Logger.Error(msg, keysAndValues...)
	}
}
