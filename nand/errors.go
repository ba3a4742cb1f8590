package nand

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-w25n/protocol"
)

// Sentinel errors. A failure that reached the bus, or was refused before
// it, is a *CommandError and matches exactly one of them with errors.Is.
// Argument errors caught before any transfer (*PageBoundsError, an invalid
// read or write method) and malformed responses from protocol parsers
// match none.
var (
	// ErrDeviceBusy means the busy bit was set, so the command was never sent
	ErrDeviceBusy = errors.New("device busy")

	// ErrTransportBusy means the bus controller refused the transfer
	ErrTransportBusy = errors.New("transport busy")

	// ErrTransportAddress means the bus controller rejected the address phase
	ErrTransportAddress = errors.New("transport address error")

	// ErrTransportUnknown means the transfer failed for any other reason
	ErrTransportUnknown = errors.New("transport failure")

	// ErrWriteFailure means the status register reported an erase or
	// program failure after the command
	ErrWriteFailure = errors.New("write failure")

	// ErrHandleReleased means the handle gave up its transport in a mode
	// transition or Release and can no longer reach the device
	ErrHandleReleased = errors.New("handle released")
)

// ErrorKind classifies a CommandError.
type ErrorKind uint8

const (
	KindDeviceBusy ErrorKind = iota + 1
	KindTransportBusy
	KindTransportAddress
	KindTransportUnknown
	KindWriteFailure
	KindHandleReleased
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindDeviceBusy:
		return ErrDeviceBusy
	case KindTransportBusy:
		return ErrTransportBusy
	case KindTransportAddress:
		return ErrTransportAddress
	case KindTransportUnknown:
		return ErrTransportUnknown
	case KindWriteFailure:
		return ErrWriteFailure
	case KindHandleReleased:
		return ErrHandleReleased
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// CommandError reports a failed device operation.
type CommandError struct {
	// Op is the operation that failed
	Op string

	// Kind classifies the failure
	Kind ErrorKind

	// Status is the status register that reported a write failure
	Status *protocol.StatusRegister

	// Err is the underlying transport error, if any
	Err error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Kind)
}

// Is matches the sentinel of the error's kind.
func (e *CommandError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsCommandError returns true if the error is a CommandError.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}

// transportError maps a transport failure onto its kind.
func transportError(op string, err error) error {
	kind := KindTransportUnknown
	switch protocol.ClassifyBusError(err) {
	case protocol.BusBusy:
		kind = KindTransportBusy
	case protocol.BusAddress:
		kind = KindTransportAddress
	}
	return &CommandError{Op: op, Kind: kind, Err: err}
}

// PageBoundsError reports a buffer that does not fit in the data buffer.
// It is returned before any bus traffic.
type PageBoundsError struct {
	Column uint16
	Length int
}

func (e *PageBoundsError) Error() string {
	return fmt.Sprintf("column %d with length %d is outside the %d byte data buffer",
		e.Column, e.Length, protocol.PageSizeWithECC)
}

func checkBounds(column uint16, length int) error {
	if length <= 0 || int(column)+length > protocol.PageSizeWithECC {
		return &PageBoundsError{Column: column, Length: length}
	}
	return nil
}
