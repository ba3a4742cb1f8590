package nand

import "github.com/moffa90/go-w25n/protocol"

// EraseBlock erases the 128KB block containing page. The erase runs in the
// background on the device; call WaitWhileBusy on the returned handle
// before the next command.
//
// The device clears the write enable latch after the command, so the
// receiver is released and a read-mode handle is returned. If the status
// register reports an erase failure the error matches ErrWriteFailure and
// the returned handle is still valid. Only E-FAIL is consulted: P-FAIL
// survives until the next program execute.
func (d *WriteDevice) EraseBlock(page uint16) (*ReadDevice, error) {
	const op = "block erase"
	if err := d.gate(op); err != nil {
		return nil, err
	}
	if err := d.write(op, protocol.BuildBlockEraseCmd(page)); err != nil {
		return nil, err
	}

	rd := &ReadDevice{d.detach()}
	return rd, rd.checkWriteResult(op, eraseFailed)
}

// LoadToDataBuffer writes data into the data buffer starting at column
// using method. Nothing reaches the array until WriteDataBufferToMemory.
func (d *WriteDevice) LoadToDataBuffer(data []byte, column uint16, method protocol.WriteMethod) error {
	op := method.String()
	if err := checkBounds(column, len(data)); err != nil {
		return err
	}
	cmd, err := protocol.BuildLoadProgramDataCmd(method, column, data)
	if err != nil {
		return err
	}
	if err := d.gate(op); err != nil {
		return err
	}
	return d.write(op, cmd)
}

// SingleLoadToDataBuffer loads data on a single line. clear resets the
// bytes outside the loaded range to the erased value; otherwise they keep
// whatever the buffer held.
func (d *WriteDevice) SingleLoadToDataBuffer(data []byte, column uint16, clear bool) error {
	return d.LoadToDataBuffer(data, column, protocol.WriteMethodFor(protocol.Single, clear))
}

// QuadLoadToDataBuffer loads data on four lines. See SingleLoadToDataBuffer.
func (d *WriteDevice) QuadLoadToDataBuffer(data []byte, column uint16, clear bool) error {
	return d.LoadToDataBuffer(data, column, protocol.WriteMethodFor(protocol.Quad, clear))
}

// WriteDataBufferToMemory commits the data buffer to page with Program
// Execute. The program runs in the background; wait on the returned handle.
//
// As with EraseBlock the receiver is released, and a reported erase or
// program failure is returned together with a valid read-mode handle.
func (d *WriteDevice) WriteDataBufferToMemory(page uint16) (*ReadDevice, error) {
	const op = "program execute"
	if err := d.gate(op); err != nil {
		return nil, err
	}
	if err := d.write(op, protocol.BuildProgramExecuteCmd(page)); err != nil {
		return nil, err
	}

	rd := &ReadDevice{d.detach()}
	return rd, rd.checkWriteResult(op, eraseOrProgramFailed)
}

func eraseFailed(s protocol.StatusRegister) bool {
	return s.EraseFailure
}

func eraseOrProgramFailed(s protocol.StatusRegister) bool {
	return s.EraseFailure || s.WriteFailure
}

// checkWriteResult reads the status register after an erase or program
// execute and reports a failure when failed matches it.
func (h *handle) checkWriteResult(op string, failed func(protocol.StatusRegister) bool) error {
	status, err := h.ReadStatusRegister()
	if err != nil {
		return err
	}
	if failed(status) {
		h.logError("write failure reported", "op", op,
			"erase_failure", status.EraseFailure, "program_failure", status.WriteFailure)
		return &CommandError{Op: op, Kind: KindWriteFailure, Status: &status}
	}
	return nil
}
