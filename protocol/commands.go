package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildDeviceResetCmd constructs a Device Reset command.
//
//	[FFh]
func BuildDeviceResetCmd() Command {
	return instruction(CmdDeviceReset)
}

// BuildJEDECIDCmd constructs a Read JEDEC ID command. The response is
// JEDECIDSize bytes.
//
//	[9Fh][dummy 8][MF(1)][ID(2)]
func BuildJEDECIDCmd() Command {
	cmd := instruction(CmdJEDECID)
	cmd.DummyCycles = DefaultDummyCycles
	cmd.DataWidth = Single
	return cmd
}

// BuildReadRegisterCmd constructs a Read Status Register command for the
// register at sub-address reg. The response is one byte.
//
//	[05h][SR address][SR value]
func BuildReadRegisterCmd(reg byte) (Command, error) {
	if err := checkRegister(reg); err != nil {
		return Command{}, err
	}
	cmd := instruction(CmdReadStatusRegister)
	cmd.Alternate = []byte{reg}
	cmd.AlternateWidth = Single
	cmd.DataWidth = Single
	return cmd, nil
}

// BuildWriteRegisterCmd constructs a Write Status Register command. The
// status register (0xC0) is read-only and is rejected.
//
//	[01h][SR address][SR value]
func BuildWriteRegisterCmd(reg, value byte) (Command, error) {
	if reg != RegProtection && reg != RegConfiguration {
		return Command{}, fmt.Errorf("register 0x%02X is not writable", reg)
	}
	cmd := instruction(CmdWriteStatusRegister)
	cmd.Data = []byte{reg, value}
	cmd.DataWidth = Single
	return cmd, nil
}

// BuildWriteEnableCmd constructs a Write Enable command.
//
//	[06h]
func BuildWriteEnableCmd() Command {
	return instruction(CmdWriteEnable)
}

// BuildWriteDisableCmd constructs a Write Disable command.
//
//	[04h]
func BuildWriteDisableCmd() Command {
	return instruction(CmdWriteDisable)
}

// BuildBlockEraseCmd constructs a 128KB Block Erase command. The device
// erases the block containing page; the low six page bits are ignored.
//
//	[D8h][dummy 8][PA15-8][PA7-0]
func BuildBlockEraseCmd(page uint16) Command {
	return pageAddressed(CmdBlockErase, page)
}

// BuildProgramExecuteCmd constructs a Program Execute command, committing
// the data buffer to page.
//
//	[10h][dummy 8][PA15-8][PA7-0]
func BuildProgramExecuteCmd(page uint16) Command {
	return pageAddressed(CmdProgramExecute, page)
}

// BuildPageDataReadCmd constructs a Page Data Read command, staging page
// into the data buffer.
//
//	[13h][dummy 8][PA15-8][PA7-0]
func BuildPageDataReadCmd(page uint16) Command {
	return pageAddressed(CmdPageDataRead, page)
}

// BuildLoadProgramDataCmd constructs a load command writing data into the
// data buffer starting at column.
//
//	[02h|84h|32h|34h][CA15-8][CA7-0][DATA...]
//
// The data must fit between column and the end of the ECC area.
func BuildLoadProgramDataCmd(method WriteMethod, column uint16, data []byte) (Command, error) {
	if !method.Valid() {
		return Command{}, fmt.Errorf("invalid write method 0x%02X", uint8(method))
	}
	if len(data) == 0 {
		return Command{}, fmt.Errorf("data cannot be empty")
	}
	if err := checkColumn(column, len(data)); err != nil {
		return Command{}, err
	}

	cmd := instruction(byte(method))
	cmd.Address = &Address{Value: uint32(column), Size: AddressSize, Width: method.AddressWidth()}
	cmd.DummyCycles = method.DummyCycles()
	cmd.Data = data
	cmd.DataWidth = method.DataWidth()
	return cmd, nil
}

// BuildFastReadCmd constructs a fast read of length bytes from the data
// buffer starting at column.
//
//	[0Bh|3Bh|6Bh|BBh|EBh][CA15-8][CA7-0][dummy 8|4][DATA...]
func BuildFastReadCmd(method ReadMethod, column uint16, length int) (Command, error) {
	if !method.Valid() {
		return Command{}, fmt.Errorf("invalid read method 0x%02X", uint8(method))
	}
	if length <= 0 {
		return Command{}, fmt.Errorf("read length must be positive, got %d", length)
	}
	if err := checkColumn(column, length); err != nil {
		return Command{}, err
	}

	cmd := instruction(byte(method))
	cmd.Address = &Address{Value: uint32(column), Size: AddressSize, Width: method.AddressWidth()}
	cmd.DummyCycles = method.DummyCycles()
	cmd.DataWidth = method.DataWidth()
	return cmd, nil
}

// BuildReadBBMCmd constructs a Read BBM LUT command. The response is
// BBMLUTSize bytes.
//
//	[A5h][dummy 8][LBA0(2)][PBA0(2)]...[LBA19(2)][PBA19(2)]
func BuildReadBBMCmd() Command {
	cmd := instruction(CmdReadBBM)
	cmd.DummyCycles = DefaultDummyCycles
	cmd.DataWidth = Single
	return cmd
}

func instruction(op byte) Command {
	return Command{Instruction: op, InstructionWidth: Single}
}

// pageAddressed frames the erase/execute/read commands, which clock the page
// address as data after eight dummy cycles.
func pageAddressed(op byte, page uint16) Command {
	cmd := instruction(op)
	cmd.DummyCycles = DefaultDummyCycles
	cmd.Data = make([]byte, 2)
	binary.BigEndian.PutUint16(cmd.Data, page)
	cmd.DataWidth = Single
	return cmd
}

func checkRegister(reg byte) error {
	switch reg {
	case RegProtection, RegConfiguration, RegStatus:
		return nil
	}
	return fmt.Errorf("unknown register 0x%02X", reg)
}

func checkColumn(column uint16, length int) error {
	if int(column)+length > PageSizeWithECC {
		return fmt.Errorf("column %d + length %d exceeds page size %d", column, length, PageSizeWithECC)
	}
	return nil
}
