package simulator

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-w25n/protocol"
)

func readStatus(t *testing.T, c *Chip) protocol.StatusRegister {
	t.Helper()
	cmd, err := protocol.BuildReadRegisterCmd(protocol.RegStatus)
	require.NoError(t, err)
	rx := make([]byte, 1)
	require.NoError(t, c.Transfer(cmd, rx))
	return protocol.DecodeStatusRegister(rx[0])
}

func load(t *testing.T, c *Chip, method protocol.WriteMethod, column uint16, data []byte) {
	t.Helper()
	cmd, err := protocol.BuildLoadProgramDataCmd(method, column, data)
	require.NoError(t, err)
	require.NoError(t, c.Write(cmd))
}

func readBuffer(t *testing.T, c *Chip, method protocol.ReadMethod, column uint16, n int) []byte {
	t.Helper()
	cmd, err := protocol.BuildFastReadCmd(method, column, n)
	require.NoError(t, err)
	rx := make([]byte, n)
	require.NoError(t, c.Transfer(cmd, rx))
	return rx
}

func TestChip_JEDECID(t *testing.T) {
	c := New()
	rx := make([]byte, protocol.JEDECIDSize)
	require.NoError(t, c.Transfer(protocol.BuildJEDECIDCmd(), rx))
	assert.Equal(t, []byte{0xEF, 0xAA, 0x21}, rx)
}

func TestChip_PowerUpRegisters(t *testing.T) {
	c := New()

	for _, tt := range []struct {
		reg  byte
		want byte
	}{
		{protocol.RegProtection, DefaultProtection},
		{protocol.RegConfiguration, DefaultConfiguration},
		{protocol.RegStatus, 0x00},
	} {
		cmd, err := protocol.BuildReadRegisterCmd(tt.reg)
		require.NoError(t, err)
		rx := make([]byte, 1)
		require.NoError(t, c.Transfer(cmd, rx))
		assert.Equal(t, tt.want, rx[0], "register 0x%02X", tt.reg)
	}
}

func TestChip_ProgramAndRead(t *testing.T) {
	c := New(WithUnprotected(), WithLatency(0))

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	load(t, c, protocol.SingleLoad, 0, []byte{0, 1, 2, 3, 42})
	require.NoError(t, c.Write(protocol.BuildProgramExecuteCmd(5)))

	status := readStatus(t, c)
	assert.False(t, status.WriteFailure)
	assert.False(t, status.WriteEnableLatch, "program execute clears WEL")

	require.NoError(t, c.Write(protocol.BuildPageDataReadCmd(5)))
	got := readBuffer(t, c, protocol.FastRead, 0, protocol.PageSizeWithECC)
	assert.Equal(t, []byte{0, 1, 2, 3, 42}, got[:5])
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, protocol.PageSizeWithECC-5), got[5:])
}

func TestChip_ReadMethodsAgree(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	c := New(WithContents(map[uint16][]byte{0: data}), WithLatency(0))
	require.NoError(t, c.Write(protocol.BuildPageDataReadCmd(0)))

	for _, m := range []protocol.ReadMethod{
		protocol.FastRead, protocol.FastReadDualOutput, protocol.FastReadQuadOutput,
		protocol.FastReadDualIO, protocol.FastReadQuadIO,
	} {
		t.Run(m.String(), func(t *testing.T) {
			assert.Equal(t, data, readBuffer(t, c, m, 0, len(data)))
			assert.Equal(t, data[2:], readBuffer(t, c, m, 2, 2))
		})
	}
}

func TestChip_ProgramOnlyClearsBits(t *testing.T) {
	c := New(WithUnprotected(), WithLatency(0), WithContents(map[uint16][]byte{1: {0xF0}}))

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	load(t, c, protocol.SingleLoad, 0, []byte{0x3C})
	require.NoError(t, c.Write(protocol.BuildProgramExecuteCmd(1)))

	assert.Equal(t, byte(0x30), c.Page(1)[0])
}

func TestChip_RandomLoadKeepsBuffer(t *testing.T) {
	c := New(WithUnprotected(), WithLatency(0))

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	load(t, c, protocol.QuadLoad, 0, []byte{1, 2, 3})
	load(t, c, protocol.RandomQuadLoad, 1, []byte{9})
	require.NoError(t, c.Write(protocol.BuildProgramExecuteCmd(0)))
	assert.Equal(t, []byte{1, 9, 3, 0xFF}, c.Page(0)[:4])

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	load(t, c, protocol.RandomSingleLoad, 2, []byte{7})
	load(t, c, protocol.SingleLoad, 1, []byte{5})
	require.NoError(t, c.Write(protocol.BuildProgramExecuteCmd(2)))
	assert.Equal(t, []byte{0xFF, 5, 0xFF}, c.Page(2)[:3], "plain load resets the buffer")
}

func TestChip_EraseBlock(t *testing.T) {
	c := New(WithUnprotected(), WithLatency(0), WithContents(map[uint16][]byte{
		63: {0x00},
		64: {0x00},
		65: {0x00},
	}))

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	require.NoError(t, c.Write(protocol.BuildBlockEraseCmd(70)))

	assert.Equal(t, byte(0x00), c.Page(63)[0], "previous block untouched")
	assert.Equal(t, byte(0xFF), c.Page(64)[0])
	assert.Equal(t, byte(0xFF), c.Page(65)[0])
}

func TestChip_RequiresWriteEnable(t *testing.T) {
	c := New(WithUnprotected(), WithLatency(0), WithContents(map[uint16][]byte{0: {0x00}}))

	require.NoError(t, c.Write(protocol.BuildBlockEraseCmd(0)))
	assert.Equal(t, byte(0x00), c.Page(0)[0])
	assert.Equal(t, 1, c.Ignored())

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	require.NoError(t, c.Write(protocol.BuildWriteDisableCmd()))
	require.NoError(t, c.Write(protocol.BuildBlockEraseCmd(0)))
	assert.Equal(t, byte(0x00), c.Page(0)[0])
	assert.Equal(t, 2, c.Ignored())
}

func TestChip_BusyCountdown(t *testing.T) {
	c := New(WithUnprotected(), WithLatency(2))

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	require.NoError(t, c.Write(protocol.BuildBlockEraseCmd(0)))

	// Commands other than register reads are ignored while busy
	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	assert.Equal(t, 1, c.Ignored())

	assert.True(t, readStatus(t, c).DeviceBusy)
	assert.True(t, readStatus(t, c).DeviceBusy)
	status := readStatus(t, c)
	assert.False(t, status.DeviceBusy)
	assert.False(t, status.WriteEnableLatch)
}

func TestChip_ResetWhileBusy(t *testing.T) {
	c := New()
	c.SetBusy(100)
	require.NoError(t, c.Write(protocol.BuildDeviceResetCmd()))
	assert.False(t, readStatus(t, c).DeviceBusy)
}

func TestChip_ProtectedArray(t *testing.T) {
	c := New(WithLatency(0))

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	require.NoError(t, c.Write(protocol.BuildBlockEraseCmd(0)))
	assert.True(t, readStatus(t, c).EraseFailure)

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	load(t, c, protocol.SingleLoad, 0, []byte{0})
	require.NoError(t, c.Write(protocol.BuildProgramExecuteCmd(0)))
	status := readStatus(t, c)
	assert.True(t, status.WriteFailure)
	assert.False(t, status.EraseFailure, "program clears E-FAIL")
	assert.Equal(t, byte(0xFF), c.Page(0)[0])
}

func TestChip_EraseKeepsProgramFailure(t *testing.T) {
	c := New(WithUnprotected(), WithLatency(0))
	c.FailProgram(0)

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	load(t, c, protocol.SingleLoad, 0, []byte{0})
	require.NoError(t, c.Write(protocol.BuildProgramExecuteCmd(0)))
	require.True(t, readStatus(t, c).WriteFailure)

	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	require.NoError(t, c.Write(protocol.BuildBlockEraseCmd(0)))
	status := readStatus(t, c)
	assert.False(t, status.EraseFailure)
	assert.True(t, status.WriteFailure, "only program execute or reset clears P-FAIL")
}

func TestChip_Protected(t *testing.T) {
	tests := []struct {
		name       string
		protection byte
		block      uint16
		want       bool
	}{
		{"none", 0x00, 0, false},
		{"top one block", 0x08, 1023, true},
		{"top one block excludes below", 0x08, 1022, false},
		{"bottom one block", 0x0C, 0, true},
		{"bottom one block excludes above", 0x0C, 1, false},
		{"top eight blocks", 0x20, 1016, true},
		{"all", 0x7C, 512, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.protection = tt.protection
			assert.Equal(t, tt.want, c.Protected(tt.block))
		})
	}
}

func TestChip_WriteRegister(t *testing.T) {
	c := New()

	cmd, err := protocol.BuildWriteRegisterCmd(protocol.RegConfiguration, 0xFF)
	require.NoError(t, err)
	require.NoError(t, c.Write(cmd))

	read, err := protocol.BuildReadRegisterCmd(protocol.RegConfiguration)
	require.NoError(t, err)
	rx := make([]byte, 1)
	require.NoError(t, c.Transfer(read, rx))
	assert.Equal(t, byte(0xF8), rx[0], "reserved bits read as zero")
}

func TestChip_ECCStatus(t *testing.T) {
	c := New(WithLatency(0))
	c.SetECCStatus(3, protocol.ECCCorrected)

	require.NoError(t, c.Write(protocol.BuildPageDataReadCmd(3)))
	assert.Equal(t, protocol.ECCCorrected, readStatus(t, c).ECCStatus)

	require.NoError(t, c.Write(protocol.BuildPageDataReadCmd(4)))
	assert.Equal(t, protocol.ECCSuccessful, readStatus(t, c).ECCStatus)
}

func TestChip_ContinuousRead(t *testing.T) {
	c := New(WithLatency(0), WithContents(map[uint16][]byte{
		7: {0xAA},
		8: {0xBB},
	}))

	cmd, err := protocol.BuildWriteRegisterCmd(protocol.RegConfiguration, protocol.ConfigurationECCE)
	require.NoError(t, err)
	require.NoError(t, c.Write(cmd))
	require.NoError(t, c.Write(protocol.BuildPageDataReadCmd(7)))

	got := readBuffer(t, c, protocol.FastRead, 10, protocol.PageSize+1)
	assert.Equal(t, byte(0xAA), got[0], "continuous read ignores the column")
	assert.Equal(t, byte(0xBB), got[protocol.PageSize])
}

func TestChip_BBMLookupTable(t *testing.T) {
	c := New()
	var lut protocol.BBMLookupTable
	lut[0] = &protocol.BBMLink{Logical: 0x8000 | 12, Physical: 1000}
	c.SetBBMLookupTable(lut)

	rx := make([]byte, protocol.BBMLUTSize)
	require.NoError(t, c.Transfer(protocol.BuildReadBBMCmd(), rx))
	assert.Equal(t, []byte{0x80, 0x0C, 0x03, 0xE8}, rx[:4])
	assert.False(t, readStatus(t, c).BBMLUTFull)

	for i := range lut {
		lut[i] = &protocol.BBMLink{Logical: uint16(i), Physical: uint16(i)}
	}
	c.SetBBMLookupTable(lut)
	assert.True(t, readStatus(t, c).BBMLUTFull)
}

func TestChip_FailNext(t *testing.T) {
	c := New()
	c.FailNext(protocol.ErrBusBusy)

	err := c.Write(protocol.BuildWriteEnableCmd())
	assert.ErrorIs(t, err, protocol.ErrBusBusy)
	assert.False(t, readStatus(t, c).WriteEnableLatch)
	assert.Equal(t, 2, len(c.Commands()))
}

func TestChip_MalformedFrames(t *testing.T) {
	good, err := protocol.BuildFastReadCmd(protocol.FastReadQuadIO, 0, 4)
	require.NoError(t, err)

	tests := []struct {
		name     string
		cmd      func() protocol.Command
		transfer bool
	}{
		{"unknown opcode", func() protocol.Command {
			return protocol.Command{Instruction: 0x99, InstructionWidth: protocol.Single}
		}, false},
		{"wrong direction", func() protocol.Command {
			return protocol.BuildJEDECIDCmd()
		}, false},
		{"wrong dummy cycles", func() protocol.Command {
			c := good
			c.DummyCycles = 8
			return c
		}, true},
		{"wrong address width", func() protocol.Command {
			c := good
			c.Address = &protocol.Address{Size: 2, Width: protocol.Single}
			return c
		}, true},
		{"missing page address", func() protocol.Command {
			c := protocol.BuildBlockEraseCmd(0)
			c.Data = nil
			return c
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			var err error
			if tt.transfer {
				err = c.Transfer(tt.cmd(), make([]byte, 4))
			} else {
				err = c.Write(tt.cmd())
			}
			var fe *FrameError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.ErrorIs(t, err, protocol.ErrBusAddress)
		})
	}
}

func TestChip_Count(t *testing.T) {
	c := New()
	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))
	require.NoError(t, c.Write(protocol.BuildWriteDisableCmd()))
	require.NoError(t, c.Write(protocol.BuildWriteEnableCmd()))

	assert.Equal(t, 2, c.Count(protocol.CmdWriteEnable))
	assert.Equal(t, 1, c.Count(protocol.CmdWriteDisable))
	assert.Equal(t, 0, c.Count(protocol.CmdBlockErase))
}
