// Package periphspi implements nand.Transport on a periph.io SPI
// connection. It works with any periph host driver (Linux spidev, FTDI
// bridges, bit-banged ports) but only single-line phases: commands that
// need dual or quad lines fail with protocol.ErrBusAddress.
package periphspi

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/moffa90/go-w25n/protocol"
)

// Device sends commands as single full-duplex transactions on conn.
type Device struct {
	conn spi.Conn
	port spi.PortCloser
}

// New wraps an already connected spi.Conn. The connection must use 8 bit
// words in mode 0 or 3.
func New(conn spi.Conn) *Device {
	if conn == nil {
		panic("conn cannot be nil")
	}
	return &Device{conn: conn}
}

// Open initializes the periph host drivers, opens the SPI port by name
// ("" for the first one found) and connects at freq in mode 0.
func Open(name string, freq physic.Frequency) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periphspi: host init: %w", err)
	}

	port, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("periphspi: open %q: %w", name, err)
	}

	conn, err := port.Connect(freq, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("periphspi: connect: %w", err)
	}
	return &Device{conn: conn, port: port}, nil
}

// Close releases the port if Open created it.
func (d *Device) Close() error {
	if d.port == nil {
		return nil
	}
	return d.port.Close()
}

func (d *Device) String() string {
	return d.conn.String()
}

// Write sends cmd including its data phase.
func (d *Device) Write(cmd protocol.Command) error {
	buf, err := header(cmd)
	if err != nil {
		return err
	}
	buf = append(buf, cmd.Data...)
	if err := d.conn.Tx(buf, nil); err != nil {
		return fmt.Errorf("periphspi: %w", err)
	}
	return nil
}

// Transfer sends cmd and receives len(rx) bytes in its data phase.
func (d *Device) Transfer(cmd protocol.Command, rx []byte) error {
	w, err := header(cmd)
	if err != nil {
		return err
	}
	n := len(w)
	w = append(w, make([]byte, len(rx))...)
	r := make([]byte, len(w))

	if err := d.conn.Tx(w, r); err != nil {
		return fmt.Errorf("periphspi: %w", err)
	}
	copy(rx, r[n:])
	return nil
}

// header serializes the phases before the data phase.
func header(cmd protocol.Command) ([]byte, error) {
	if w := cmd.MaxWidth(); w > protocol.Single {
		return nil, fmt.Errorf("periphspi: command 0x%02X needs %s lines: %w",
			cmd.Instruction, w, protocol.ErrBusAddress)
	}
	if cmd.DummyCycles%8 != 0 {
		return nil, fmt.Errorf("periphspi: %d dummy cycles are not byte aligned: %w",
			cmd.DummyCycles, protocol.ErrBusAddress)
	}

	buf := []byte{cmd.Instruction}
	if cmd.Address != nil {
		buf = append(buf, cmd.Address.Bytes()...)
	}
	buf = append(buf, cmd.Alternate...)
	buf = append(buf, make([]byte, cmd.DummyCycles/8)...)
	return buf, nil
}
