package spidev

import (
	"fmt"

	"github.com/moffa90/go-w25n/protocol"
)

// Mode is the spidev mode word (SPI_IOC_WR_MODE32).
type Mode uint32

const (
	CPHA Mode = 1 << iota
	CPOL
	CS_HIGH
	LSB_FIRST
	THREE_WIRE
	LOOP
	NO_CS
	READY
	TX_DUAL
	TX_QUAD
	RX_DUAL
	RX_QUAD
)

// Mode0 is clock idle low, sample on the rising edge. The W25N01GV
// supports modes 0 and 3.
const Mode0 Mode = 0

// Mode3 is clock idle high, sample on the rising edge.
const Mode3 = CPOL | CPHA

// widthMode returns the mode bits needed to clock phases up to w wide.
func widthMode(w protocol.BusWidth) Mode {
	switch w {
	case protocol.Quad:
		return TX_QUAD | RX_QUAD
	case protocol.Dual:
		return TX_DUAL | RX_DUAL
	default:
		return 0
	}
}

// Transfer is one segment of an SPI_IOC_MESSAGE. Chip select stays
// asserted across the segments of one message.
type Transfer struct {
	Tx      []byte
	Rx      []byte
	SpeedHz uint32
	TxNBits uint8
	RxNBits uint8
}

// Frame splits cmd into segments, one per change of direction or bus
// width. Dummy cycles are clocked as zero bytes at the width of the phase
// before them. rx receives the data phase of a transfer; pass nil for a
// write.
func Frame(cmd protocol.Command, rx []byte, maxWidth protocol.BusWidth, speedHz uint32) ([]Transfer, error) {
	if w := cmd.MaxWidth(); w > maxWidth {
		return nil, fmt.Errorf("spidev: command 0x%02X needs %s lines, bus has %s: %w",
			cmd.Instruction, w, maxWidth, protocol.ErrBusAddress)
	}

	var out []Transfer
	tx := func(data []byte, width protocol.BusWidth) {
		if len(data) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Rx == nil && out[n-1].TxNBits == uint8(width) {
			out[n-1].Tx = append(out[n-1].Tx, data...)
			return
		}
		out = append(out, Transfer{
			Tx:      append([]byte(nil), data...),
			SpeedHz: speedHz,
			TxNBits: uint8(width),
		})
	}

	tx([]byte{cmd.Instruction}, cmd.InstructionWidth)
	last := cmd.InstructionWidth

	if cmd.Address != nil {
		tx(cmd.Address.Bytes(), cmd.Address.Width)
		last = cmd.Address.Width
	}
	if len(cmd.Alternate) > 0 {
		tx(cmd.Alternate, cmd.AlternateWidth)
		last = cmd.AlternateWidth
	}
	if cmd.DummyCycles > 0 {
		bits := int(cmd.DummyCycles) * int(last)
		if bits%8 != 0 {
			return nil, fmt.Errorf("spidev: %d dummy cycles at %s width are not byte aligned: %w",
				cmd.DummyCycles, last, protocol.ErrBusAddress)
		}
		tx(make([]byte, bits/8), last)
	}

	switch {
	case rx != nil:
		if len(rx) > 0 {
			out = append(out, Transfer{Rx: rx, SpeedHz: speedHz, RxNBits: uint8(cmd.DataWidth)})
		}
	default:
		tx(cmd.Data, cmd.DataWidth)
	}
	return out, nil
}
