package simulator

import (
	"fmt"

	"github.com/moffa90/go-w25n/protocol"
)

// FrameError reports a command whose phases do not match the datasheet
// framing for its opcode. It wraps protocol.ErrBusAddress so drivers see an
// addressing failure, as a real controller would report a malformed frame.
type FrameError struct {
	Instruction byte
	Reason      string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("simulator: malformed frame for 0x%02X: %s", e.Instruction, e.Reason)
}

func (e *FrameError) Unwrap() error {
	return protocol.ErrBusAddress
}

// shape is the expected framing of one opcode.
type shape struct {
	transfer  bool
	address   protocol.BusWidth // zero: no address phase
	alternate int
	dummy     uint8
	data      int // exact payload length; -1 any non-empty payload
	dataWidth protocol.BusWidth
}

var shapes = map[byte]shape{
	protocol.CmdDeviceReset:         {},
	protocol.CmdWriteEnable:         {},
	protocol.CmdWriteDisable:        {},
	protocol.CmdJEDECID:             {transfer: true, dummy: protocol.DefaultDummyCycles, dataWidth: protocol.Single},
	protocol.CmdReadStatusRegister:  {transfer: true, alternate: 1, dataWidth: protocol.Single},
	protocol.CmdWriteStatusRegister: {data: 2, dataWidth: protocol.Single},
	protocol.CmdBlockErase:          {dummy: protocol.DefaultDummyCycles, data: 2, dataWidth: protocol.Single},
	protocol.CmdProgramExecute:      {dummy: protocol.DefaultDummyCycles, data: 2, dataWidth: protocol.Single},
	protocol.CmdPageDataRead:        {dummy: protocol.DefaultDummyCycles, data: 2, dataWidth: protocol.Single},
	protocol.CmdReadBBM:             {transfer: true, dummy: protocol.DefaultDummyCycles, dataWidth: protocol.Single},
}

func init() {
	for _, m := range []protocol.WriteMethod{
		protocol.SingleLoad, protocol.RandomSingleLoad, protocol.QuadLoad, protocol.RandomQuadLoad,
	} {
		shapes[byte(m)] = shape{address: m.AddressWidth(), dummy: m.DummyCycles(), data: -1, dataWidth: m.DataWidth()}
	}
	for _, m := range []protocol.ReadMethod{
		protocol.FastRead, protocol.FastReadDualOutput, protocol.FastReadQuadOutput,
		protocol.FastReadDualIO, protocol.FastReadQuadIO,
	} {
		shapes[byte(m)] = shape{transfer: true, address: m.AddressWidth(), dummy: m.DummyCycles(), dataWidth: m.DataWidth()}
	}
}

// checkFrame validates cmd against the framing table.
func checkFrame(cmd protocol.Command, transfer bool) error {
	fail := func(format string, args ...interface{}) error {
		return &FrameError{Instruction: cmd.Instruction, Reason: fmt.Sprintf(format, args...)}
	}

	s, ok := shapes[cmd.Instruction]
	if !ok {
		return fail("unknown opcode")
	}
	if s.transfer != transfer {
		if transfer {
			return fail("opcode does not return data")
		}
		return fail("opcode returns data")
	}
	if cmd.InstructionWidth != protocol.Single {
		return fail("instruction width %s", cmd.InstructionWidth)
	}

	switch {
	case s.address == 0 && cmd.Address != nil:
		return fail("unexpected address phase")
	case s.address != 0 && cmd.Address == nil:
		return fail("missing address phase")
	case s.address != 0:
		if cmd.Address.Size != protocol.AddressSize {
			return fail("address size %d", cmd.Address.Size)
		}
		if cmd.Address.Width != s.address {
			return fail("address width %s, want %s", cmd.Address.Width, s.address)
		}
		if cmd.Address.Value >= protocol.PageSizeWithECC {
			return fail("column %d out of range", cmd.Address.Value)
		}
	}

	if len(cmd.Alternate) != s.alternate {
		return fail("%d alternate bytes, want %d", len(cmd.Alternate), s.alternate)
	}
	if cmd.DummyCycles != s.dummy {
		return fail("%d dummy cycles, want %d", cmd.DummyCycles, s.dummy)
	}

	switch {
	case transfer && len(cmd.Data) > 0:
		return fail("transfer carries a payload")
	case s.data == -1 && len(cmd.Data) == 0:
		return fail("empty payload")
	case s.data >= 0 && !transfer && len(cmd.Data) != s.data:
		return fail("%d payload bytes, want %d", len(cmd.Data), s.data)
	}
	if (len(cmd.Data) > 0 || transfer) && cmd.DataWidth != s.dataWidth {
		return fail("data width %s, want %s", cmd.DataWidth, s.dataWidth)
	}
	return nil
}
