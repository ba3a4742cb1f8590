package nand

import "github.com/moffa90/go-w25n/protocol"

// Transport clocks command descriptors onto the bus.
//
// Implementations report protocol.ErrBusBusy or protocol.ErrBusAddress
// (possibly wrapped) for controller busy and address faults; any other error
// is treated as an unknown transport failure.
type Transport interface {
	// Write sends cmd, including cmd.Data when present.
	Write(cmd protocol.Command) error

	// Transfer sends cmd and then reads len(rx) bytes on cmd.DataWidth.
	Transfer(cmd protocol.Command, rx []byte) error
}
