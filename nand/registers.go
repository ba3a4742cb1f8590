package nand

import "github.com/moffa90/go-w25n/protocol"

// ReadStatusRegister reads and decodes status register 3 (0xC0). Register
// reads are not busy-gated; the device answers them while busy.
func (h *handle) ReadStatusRegister() (protocol.StatusRegister, error) {
	b, err := h.readRegister("read status register", protocol.RegStatus)
	if err != nil {
		return protocol.StatusRegister{}, err
	}
	return protocol.DecodeStatusRegister(b), nil
}

// ReadProtectionRegister reads and decodes status register 1 (0xA0).
func (h *handle) ReadProtectionRegister() (protocol.ProtectionRegister, error) {
	b, err := h.readRegister("read protection register", protocol.RegProtection)
	if err != nil {
		return protocol.ProtectionRegister{}, err
	}
	return protocol.DecodeProtectionRegister(b), nil
}

// ReadConfigurationRegister reads and decodes status register 2 (0xB0).
func (h *handle) ReadConfigurationRegister() (protocol.ConfigurationRegister, error) {
	b, err := h.readRegister("read configuration register", protocol.RegConfiguration)
	if err != nil {
		return protocol.ConfigurationRegister{}, err
	}
	return protocol.DecodeConfigurationRegister(b), nil
}

// WriteProtectionRegister writes status register 1.
func (h *handle) WriteProtectionRegister(reg protocol.ProtectionRegister) error {
	return h.writeRegister("write protection register", protocol.RegProtection, reg.Byte())
}

// WriteConfigurationRegister writes status register 2.
func (h *handle) WriteConfigurationRegister(reg protocol.ConfigurationRegister) error {
	return h.writeRegister("write configuration register", protocol.RegConfiguration, reg.Byte())
}

// SetWriteProtection updates the block protect bits, keeping SRP0, SRP1
// and WPE as they are. All false unprotects the whole array.
func (h *handle) SetWriteProtection(tb, bp3, bp2, bp1, bp0 bool) error {
	if err := h.gate("set write protection"); err != nil {
		return err
	}

	reg, err := h.ReadProtectionRegister()
	if err != nil {
		return err
	}
	reg.TB = tb
	reg.BP3 = bp3
	reg.BP2 = bp2
	reg.BP1 = bp1
	reg.BP0 = bp0

	return h.WriteProtectionRegister(reg)
}

// SetContinuousReadMode selects continuous read (BUF=0) or buffer read
// (BUF=1). The data buffer read methods expect buffer read mode.
func (h *handle) SetContinuousReadMode(continuous bool) error {
	return h.updateConfiguration("set continuous read mode", func(reg *protocol.ConfigurationRegister) {
		reg.BUF = !continuous
	})
}

// SetECC enables or disables on-chip ECC.
func (h *handle) SetECC(enabled bool) error {
	return h.updateConfiguration("set ECC", func(reg *protocol.ConfigurationRegister) {
		reg.ECCE = enabled
	})
}

func (h *handle) updateConfiguration(op string, update func(*protocol.ConfigurationRegister)) error {
	if err := h.gate(op); err != nil {
		return err
	}

	reg, err := h.ReadConfigurationRegister()
	if err != nil {
		return err
	}
	update(&reg)

	return h.WriteConfigurationRegister(reg)
}

func (h *handle) readRegister(op string, reg byte) (byte, error) {
	cmd, err := protocol.BuildReadRegisterCmd(reg)
	if err != nil {
		return 0, err
	}

	rx := make([]byte, 1)
	if err := h.transfer(op, cmd, rx); err != nil {
		return 0, err
	}
	return protocol.ParseRegisterResponse(rx)
}

func (h *handle) writeRegister(op string, reg, value byte) error {
	cmd, err := protocol.BuildWriteRegisterCmd(reg, value)
	if err != nil {
		return err
	}
	if err := h.gate(op); err != nil {
		return err
	}
	return h.write(op, cmd)
}
