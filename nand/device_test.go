package nand

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-w25n/protocol"
)

// MockTransport records commands and plays back scripted responses.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Write(cmd protocol.Command) error {
	return m.Called(cmd).Error(0)
}

func (m *MockTransport) Transfer(cmd protocol.Command, rx []byte) error {
	return m.Called(cmd, rx).Error(0)
}

// OnStatus scripts one status register read returning value.
func (m *MockTransport) OnStatus(value byte) *mock.Call {
	return m.On("Transfer", isRegisterRead(protocol.RegStatus), mock.Anything).
		Run(respond(value)).Return(nil).Once()
}

func isRegisterRead(reg byte) interface{} {
	return mock.MatchedBy(func(cmd protocol.Command) bool {
		return cmd.Instruction == protocol.CmdReadStatusRegister &&
			len(cmd.Alternate) == 1 && cmd.Alternate[0] == reg
	})
}

func isInstruction(op byte) interface{} {
	return mock.MatchedBy(func(cmd protocol.Command) bool {
		return cmd.Instruction == op
	})
}

func respond(data ...byte) func(mock.Arguments) {
	return func(args mock.Arguments) {
		copy(args.Get(1).([]byte), data)
	}
}

// MockLogger records messages by level.
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

// newWriteDevice returns a write-mode handle whose transition consumed one
// idle status read and one Write Enable.
func newWriteDevice(t *testing.T, m *MockTransport, opts ...Option) *WriteDevice {
	t.Helper()
	m.OnStatus(0x00)
	m.On("Write", isInstruction(protocol.CmdWriteEnable)).Return(nil).Once()

	w, err := New(m, opts...).IntoWriteMode()
	require.NoError(t, err)
	return w
}

func TestNew_NilTransport(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

func TestBusyGating(t *testing.T) {
	tests := []struct {
		name  string
		write bool
		call  func(r *ReadDevice, w *WriteDevice) error
	}{
		{"into write mode", false, func(r *ReadDevice, _ *WriteDevice) error {
			_, err := r.IntoWriteMode()
			return err
		}},
		{"page data read", false, func(r *ReadDevice, _ *WriteDevice) error {
			return r.ReadMemoryToDataBuffer(0)
		}},
		{"fast read", false, func(r *ReadDevice, _ *WriteDevice) error {
			return r.SingleReadDataBuffer(make([]byte, 16))
		}},
		{"read BBM LUT", false, func(r *ReadDevice, _ *WriteDevice) error {
			_, err := r.ReadBBMLookupTable()
			return err
		}},
		{"set ECC", false, func(r *ReadDevice, _ *WriteDevice) error {
			return r.SetECC(true)
		}},
		{"set write protection", false, func(r *ReadDevice, _ *WriteDevice) error {
			return r.SetWriteProtection(false, false, false, false, false)
		}},
		{"into read mode", true, func(_ *ReadDevice, w *WriteDevice) error {
			_, err := w.IntoReadMode()
			return err
		}},
		{"erase", true, func(_ *ReadDevice, w *WriteDevice) error {
			_, err := w.EraseBlock(0)
			return err
		}},
		{"load", true, func(_ *ReadDevice, w *WriteDevice) error {
			return w.SingleLoadToDataBuffer([]byte{1}, 0, true)
		}},
		{"program execute", true, func(_ *ReadDevice, w *WriteDevice) error {
			_, err := w.WriteDataBufferToMemory(0)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockTransport{}
			var r *ReadDevice
			var w *WriteDevice
			if tt.write {
				w = newWriteDevice(t, m)
			} else {
				r = New(m)
			}
			writes := len(m.Calls)

			m.OnStatus(protocol.StatusBusy)
			err := tt.call(r, w)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDeviceBusy)
			assert.True(t, IsCommandError(err))

			// Only the status read reached the bus
			require.Len(t, m.Calls, writes+1)
			assert.Equal(t, "Transfer", m.Calls[writes].Method)
			m.AssertExpectations(t)
		})
	}
}

func TestBusyGating_KeepsHandle(t *testing.T) {
	m := &MockTransport{}
	d := New(m)

	m.OnStatus(protocol.StatusBusy)
	_, err := d.IntoWriteMode()
	require.ErrorIs(t, err, ErrDeviceBusy)
	assert.False(t, d.Released())
	m.AssertNotCalled(t, "Write", mock.Anything)
}

func TestUngatedCommands(t *testing.T) {
	m := &MockTransport{}
	d := New(m)

	m.On("Write", isInstruction(protocol.CmdDeviceReset)).Return(nil).Once()
	m.On("Transfer", isInstruction(protocol.CmdJEDECID), mock.Anything).
		Run(respond(0xEF, 0xAA, 0x21)).Return(nil).Once()
	m.On("Transfer", isRegisterRead(protocol.RegProtection), mock.Anything).
		Run(respond(0x7C)).Return(nil).Once()

	require.NoError(t, d.ResetDevice())

	id, err := d.JEDECID()
	require.NoError(t, err)
	assert.True(t, id.IsW25N01GV())

	prot, err := d.ReadProtectionRegister()
	require.NoError(t, err)
	assert.True(t, prot.BP3)
	assert.True(t, prot.TB)
	assert.False(t, prot.SRP0)

	m.AssertExpectations(t)
	m.AssertNumberOfCalls(t, "Transfer", 2)
}

func TestModeTransitions(t *testing.T) {
	m := &MockTransport{}
	w := newWriteDevice(t, m)

	m.OnStatus(0x00)
	m.On("Write", isInstruction(protocol.CmdWriteDisable)).Return(nil).Once()

	r, err := w.IntoReadMode()
	require.NoError(t, err)
	assert.True(t, w.Released())
	assert.False(t, r.Released())
	m.AssertExpectations(t)
}

func TestReleasedHandle(t *testing.T) {
	m := &MockTransport{}
	m.OnStatus(0x00)
	m.On("Write", isInstruction(protocol.CmdWriteEnable)).Return(nil).Once()

	d := New(m)
	w, err := d.IntoWriteMode()
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.True(t, d.Released())
	calls := len(m.Calls)

	_, err = d.ReadStatusRegister()
	assert.ErrorIs(t, err, ErrHandleReleased)

	_, err = d.IntoWriteMode()
	assert.ErrorIs(t, err, ErrHandleReleased)

	err = d.ResetDevice()
	assert.ErrorIs(t, err, ErrHandleReleased)

	_, err = d.JEDECID()
	assert.ErrorIs(t, err, ErrHandleReleased)

	err = d.WaitWhileBusy()
	assert.ErrorIs(t, err, ErrHandleReleased)

	assert.Len(t, m.Calls, calls, "released handle must not reach the bus")
	assert.Nil(t, d.Release())
}

func TestRelease(t *testing.T) {
	m := &MockTransport{}
	d := New(m)

	assert.Same(t, m, d.Release())
	assert.True(t, d.Released())

	err := d.ReadMemoryToDataBuffer(0)
	assert.ErrorIs(t, err, ErrHandleReleased)
	assert.Empty(t, m.Calls)
}

func TestTransportErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"busy", protocol.ErrBusBusy, ErrTransportBusy},
		{"wrapped busy", fmt.Errorf("spi: %w", protocol.ErrBusBusy), ErrTransportBusy},
		{"address", fmt.Errorf("controller: %w", protocol.ErrBusAddress), ErrTransportAddress},
		{"other", errors.New("cable unplugged"), ErrTransportUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockTransport{}
			m.On("Write", mock.Anything).Return(tt.err).Once()

			err := New(m).ResetDevice()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err, "cause stays reachable")

			var ce *CommandError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "device reset", ce.Op)
		})
	}
}

func TestTransitionFailureKeepsHandle(t *testing.T) {
	m := &MockTransport{}
	m.OnStatus(0x00)
	m.On("Write", isInstruction(protocol.CmdWriteEnable)).Return(protocol.ErrBusBusy).Once()

	d := New(m)
	w, err := d.IntoWriteMode()
	assert.Nil(t, w)
	assert.ErrorIs(t, err, ErrTransportBusy)
	assert.False(t, d.Released())
}

func TestWaitWhileBusy(t *testing.T) {
	t.Run("idle reads status once", func(t *testing.T) {
		m := &MockTransport{}
		m.OnStatus(0x00)

		require.NoError(t, New(m).WaitWhileBusy())
		m.AssertNumberOfCalls(t, "Transfer", 1)
	})

	t.Run("polls until idle", func(t *testing.T) {
		m := &MockTransport{}
		m.OnStatus(protocol.StatusBusy)
		m.OnStatus(protocol.StatusBusy | protocol.StatusWriteEnableLatch)
		m.OnStatus(0x00)

		require.NoError(t, New(m).WaitWhileBusy())
		m.AssertNumberOfCalls(t, "Transfer", 3)
	})

	t.Run("status failure ends the wait", func(t *testing.T) {
		m := &MockTransport{}
		m.OnStatus(protocol.StatusBusy)
		m.On("Transfer", mock.Anything, mock.Anything).Return(errors.New("bus fault")).Once()

		err := New(m).WaitWhileBusy()
		assert.ErrorIs(t, err, ErrTransportUnknown)
		m.AssertNumberOfCalls(t, "Transfer", 2)
	})
}

func TestCheckBusy(t *testing.T) {
	m := &MockTransport{}
	m.OnStatus(protocol.StatusBusy | protocol.StatusECC0)
	m.OnStatus(protocol.StatusWriteEnableLatch)

	d := New(m)
	busy, err := d.CheckBusy()
	require.NoError(t, err)
	assert.True(t, busy)

	busy, err = d.CheckBusy()
	require.NoError(t, err)
	assert.False(t, busy)
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		name   string
		column uint16
		length int
	}{
		{"oversized", 0, protocol.PageSizeWithECC + 1},
		{"past end", 2100, 13},
		{"empty", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockTransport{}
			d := New(m)

			err := d.ReadDataBufferAt(make([]byte, tt.length), tt.column, protocol.FastRead)
			var pe *PageBoundsError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.column, pe.Column)
			assert.Empty(t, m.Calls)
		})
	}

	t.Run("load", func(t *testing.T) {
		m := &MockTransport{}
		w := newWriteDevice(t, m)
		calls := len(m.Calls)

		err := w.SingleLoadToDataBuffer(make([]byte, 100), 2100, false)
		var pe *PageBoundsError
		require.ErrorAs(t, err, &pe)
		assert.Len(t, m.Calls, calls)
	})
}

func TestEraseBlock_Failure(t *testing.T) {
	m := &MockTransport{}
	w := newWriteDevice(t, m)

	m.OnStatus(0x00)
	m.On("Write", isInstruction(protocol.CmdBlockErase)).Return(nil).Once()
	m.OnStatus(protocol.StatusEraseFailure | protocol.StatusBusy)

	r, err := w.EraseBlock(64)
	require.NotNil(t, r, "a failed erase still returns to read mode")
	assert.False(t, r.Released())
	assert.True(t, w.Released())
	assert.ErrorIs(t, err, ErrWriteFailure)

	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	require.NotNil(t, ce.Status)
	assert.True(t, ce.Status.EraseFailure)
	assert.False(t, ce.Status.WriteFailure)
	m.AssertExpectations(t)
}

func TestEraseBlock_IgnoresProgramFailure(t *testing.T) {
	m := &MockTransport{}
	w := newWriteDevice(t, m)

	// P-FAIL left over from an earlier program execute
	m.OnStatus(0x00)
	m.On("Write", isInstruction(protocol.CmdBlockErase)).Return(nil).Once()
	m.OnStatus(protocol.StatusProgramFailure)

	r, err := w.EraseBlock(0)
	require.NoError(t, err)
	assert.NotNil(t, r)
	m.AssertExpectations(t)
}

func TestWriteDataBufferToMemory(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &MockTransport{}
		w := newWriteDevice(t, m)

		m.OnStatus(0x00)
		m.On("Write", mock.MatchedBy(func(cmd protocol.Command) bool {
			return cmd.Instruction == protocol.CmdProgramExecute &&
				assert.ObjectsAreEqual([]byte{0x01, 0x02}, cmd.Data)
		})).Return(nil).Once()
		m.OnStatus(protocol.StatusBusy)

		r, err := w.WriteDataBufferToMemory(0x0102)
		require.NoError(t, err)
		assert.NotNil(t, r)
		m.AssertExpectations(t)
	})

	t.Run("program failure", func(t *testing.T) {
		m := &MockTransport{}
		w := newWriteDevice(t, m)

		m.OnStatus(0x00)
		m.On("Write", isInstruction(protocol.CmdProgramExecute)).Return(nil).Once()
		m.OnStatus(protocol.StatusProgramFailure)

		r, err := w.WriteDataBufferToMemory(0)
		require.NotNil(t, r)
		assert.ErrorIs(t, err, ErrWriteFailure)
	})

	t.Run("transport failure keeps write mode", func(t *testing.T) {
		m := &MockTransport{}
		w := newWriteDevice(t, m)

		m.OnStatus(0x00)
		m.On("Write", isInstruction(protocol.CmdProgramExecute)).Return(protocol.ErrBusBusy).Once()

		r, err := w.WriteDataBufferToMemory(0)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrTransportBusy)
		assert.False(t, w.Released())
	})
}

func TestLoadToDataBuffer_Framing(t *testing.T) {
	tests := []struct {
		method protocol.WriteMethod
		width  protocol.BusWidth
	}{
		{protocol.SingleLoad, protocol.Single},
		{protocol.RandomSingleLoad, protocol.Single},
		{protocol.QuadLoad, protocol.Quad},
		{protocol.RandomQuadLoad, protocol.Quad},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			m := &MockTransport{}
			w := newWriteDevice(t, m)

			m.OnStatus(0x00)
			m.On("Write", mock.MatchedBy(func(cmd protocol.Command) bool {
				return cmd.Instruction == byte(tt.method) &&
					cmd.Address != nil && cmd.Address.Value == 0x0800 &&
					cmd.DataWidth == tt.width
			})).Return(nil).Once()

			require.NoError(t, w.LoadToDataBuffer([]byte{1, 2, 3}, 0x0800, tt.method))
			m.AssertExpectations(t)
		})
	}
}

func TestSetWriteProtection(t *testing.T) {
	m := &MockTransport{}
	m.OnStatus(0x00)
	m.On("Transfer", isRegisterRead(protocol.RegProtection), mock.Anything).
		Run(respond(0xFF)).Return(nil).Once()
	m.OnStatus(0x00)
	m.On("Write", mock.MatchedBy(func(cmd protocol.Command) bool {
		return cmd.Instruction == protocol.CmdWriteStatusRegister &&
			assert.ObjectsAreEqual([]byte{protocol.RegProtection, 0x83}, cmd.Data)
	})).Return(nil).Once()

	// SRP0, WP-E and SRP1 survive; TB and BP3-0 are cleared
	require.NoError(t, New(m).SetWriteProtection(false, false, false, false, false))
	m.AssertExpectations(t)
}

func TestConfigurationUpdates(t *testing.T) {
	tests := []struct {
		name string
		call func(d *ReadDevice) error
		want byte
	}{
		{"continuous read", func(d *ReadDevice) error { return d.SetContinuousReadMode(true) }, 0x10},
		{"buffer read", func(d *ReadDevice) error { return d.SetContinuousReadMode(false) }, 0x18},
		{"ECC off", func(d *ReadDevice) error { return d.SetECC(false) }, 0x08},
		{"ECC on", func(d *ReadDevice) error { return d.SetECC(true) }, 0x18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockTransport{}
			m.OnStatus(0x00)
			m.On("Transfer", isRegisterRead(protocol.RegConfiguration), mock.Anything).
				Run(respond(0x18)).Return(nil).Once()
			m.OnStatus(0x00)
			m.On("Write", mock.MatchedBy(func(cmd protocol.Command) bool {
				return assert.ObjectsAreEqual([]byte{protocol.RegConfiguration, tt.want}, cmd.Data)
			})).Return(nil).Once()

			require.NoError(t, tt.call(New(m)))
			m.AssertExpectations(t)
		})
	}
}

func TestReadBBMLookupTable(t *testing.T) {
	raw := make([]byte, protocol.BBMLUTSize)
	copy(raw[8:], []byte{0x80, 0x05, 0x03, 0xFF})

	m := &MockTransport{}
	m.OnStatus(0x00)
	m.On("Transfer", isInstruction(protocol.CmdReadBBM), mock.Anything).
		Run(respond(raw...)).Return(nil).Once()

	lut, err := New(m).ReadBBMLookupTable()
	require.NoError(t, err)

	links := lut.Links()
	require.Len(t, links, 1)
	require.NotNil(t, lut[2])
	assert.True(t, links[0].Enabled())
	assert.Equal(t, uint16(5), links[0].LogicalBlock())
	assert.Equal(t, uint16(1023), links[0].PhysicalBlock())
}

func TestLogging(t *testing.T) {
	m := &MockTransport{}
	logger := &MockLogger{}
	d := New(m, WithLogger(logger))

	m.OnStatus(protocol.StatusBusy)
	_, err := d.IntoWriteMode()
	require.ErrorIs(t, err, ErrDeviceBusy)
	assert.Contains(t, logger.debugMsgs, "command rejected")

	m.On("Write", mock.Anything).Return(errors.New("boom")).Once()
	require.Error(t, d.ResetDevice())
	assert.Contains(t, logger.errorMsgs, "transport write failed")
}
