// Package nand provides a mode-checked driver for the W25N01GV serial NAND.
//
// # Overview
//
// A device handle owns the transport to one chip and sequences every
// command the way the chip requires:
//   - Commands are refused with ErrDeviceBusy while the busy bit is set
//   - Erase, load and program execute need the write enable latch
//   - Erase and program execute clear the latch and report E-FAIL/P-FAIL
//
// # Modes
//
// New returns a *ReadDevice. Write operations exist only on *WriteDevice,
// which IntoWriteMode returns. Operations that end write mode on the chip
// (EraseBlock, WriteDataBufferToMemory, IntoReadMode) return a *ReadDevice
// again. A transition releases the handle it was called on; further calls
// on a released handle fail with ErrHandleReleased and never reach the bus.
//
//	dev := nand.New(transport)
//
//	w, err := dev.IntoWriteMode()
//	if err != nil {
//	    return err
//	}
//	if err := w.SingleLoadToDataBuffer([]byte{0, 1, 2, 3, 42}, 0, true); err != nil {
//	    return err
//	}
//	dev, err = w.WriteDataBufferToMemory(0)
//	if err != nil {
//	    return err
//	}
//	if err := dev.WaitWhileBusy(); err != nil {
//	    return err
//	}
//
//	if err := dev.ReadMemoryToDataBuffer(0); err != nil {
//	    return err
//	}
//	if err := dev.WaitWhileBusy(); err != nil {
//	    return err
//	}
//	buf := make([]byte, protocol.PageSizeWithECC)
//	err = dev.SingleReadDataBuffer(buf)
//
// # Waiting
//
// Nothing waits implicitly. CheckBusy reads the busy bit once;
// WaitWhileBusy polls until it clears, returning early with the error if a
// status read fails. There is no timeout.
//
// # Error Handling
//
// Every failure is a *CommandError matching one sentinel:
//   - ErrDeviceBusy: busy bit set, command not sent
//   - ErrTransportBusy, ErrTransportAddress, ErrTransportUnknown: transport failed
//   - ErrWriteFailure: status reported an erase or program failure
//   - ErrHandleReleased: handle used after a mode transition
//
// Buffers that do not fit in the 2112-byte data buffer are rejected with
// *PageBoundsError before any bus traffic. Nothing is retried.
//
// # Hardware Independence
//
// This package does NOT clock the bus. Callers supply a Transport; see
// transport/spidev and transport/periphspi, or simulator for tests.
package nand
