package nand

import "github.com/moffa90/go-w25n/protocol"

// ReadMemoryToDataBuffer stages page into the device's data buffer. The
// device is busy until the transfer completes; wait before reading the
// buffer out.
func (h *handle) ReadMemoryToDataBuffer(page uint16) error {
	const op = "page data read"
	if err := h.gate(op); err != nil {
		return err
	}
	return h.write(op, protocol.BuildPageDataReadCmd(page))
}

// ReadDataBuffer reads len(buf) bytes of the staged page from column 0
// using method. A full page with the ECC area is PageSizeWithECC bytes.
func (h *handle) ReadDataBuffer(buf []byte, method protocol.ReadMethod) error {
	return h.ReadDataBufferAt(buf, 0, method)
}

// ReadDataBufferAt reads len(buf) bytes of the staged page starting at
// column using method.
func (h *handle) ReadDataBufferAt(buf []byte, column uint16, method protocol.ReadMethod) error {
	op := method.String()
	if err := checkBounds(column, len(buf)); err != nil {
		return err
	}
	cmd, err := protocol.BuildFastReadCmd(method, column, len(buf))
	if err != nil {
		return err
	}
	if err := h.gate(op); err != nil {
		return err
	}
	return h.transfer(op, cmd, buf)
}

// SingleReadDataBuffer reads the staged page with Fast Read (0x0B).
func (h *handle) SingleReadDataBuffer(buf []byte) error {
	return h.ReadDataBuffer(buf, protocol.FastRead)
}

// QuadReadDataBuffer reads the staged page with Fast Read Quad I/O (0xEB).
func (h *handle) QuadReadDataBuffer(buf []byte) error {
	return h.ReadDataBuffer(buf, protocol.FastReadQuadIO)
}

// ReadBBMLookupTable reads the bad block management LUT. Empty slots are
// nil; slot order is the device's.
func (h *handle) ReadBBMLookupTable() (protocol.BBMLookupTable, error) {
	const op = "read BBM LUT"
	if err := h.gate(op); err != nil {
		return protocol.BBMLookupTable{}, err
	}

	rx := make([]byte, protocol.BBMLUTSize)
	if err := h.transfer(op, protocol.BuildReadBBMCmd(), rx); err != nil {
		return protocol.BBMLookupTable{}, err
	}
	return protocol.ParseBBMLookupTable(rx)
}
