package protocol

import "errors"

// Bus errors a transport reports. Anything else a transport returns is
// treated as an unknown failure.
var (
	// ErrBusBusy means the bus controller was still busy with a previous
	// transfer and refused the command
	ErrBusBusy = errors.New("bus busy")

	// ErrBusAddress means the controller rejected the address or the phase
	// layout of the command
	ErrBusAddress = errors.New("bus address error")
)

// BusErrorKind classifies a transport error.
type BusErrorKind uint8

const (
	BusUnknown BusErrorKind = iota
	BusBusy
	BusAddress
)

func (k BusErrorKind) String() string {
	switch k {
	case BusBusy:
		return "busy"
	case BusAddress:
		return "address"
	default:
		return "unknown"
	}
}

// ClassifyBusError maps a transport error onto its kind.
func ClassifyBusError(err error) BusErrorKind {
	switch {
	case errors.Is(err, ErrBusBusy):
		return BusBusy
	case errors.Is(err, ErrBusAddress):
		return BusAddress
	default:
		return BusUnknown
	}
}
