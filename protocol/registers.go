package protocol

import "fmt"

// ECCStatus reports the outcome of on-chip ECC for the last read.
type ECCStatus uint8

const (
	// ECCSuccessful means the data was output with no correction
	ECCSuccessful ECCStatus = iota

	// ECCCorrected means one or more pages needed correction and were fixed
	ECCCorrected

	// ECCSinglePageError means a single page had more errors than ECC can fix
	ECCSinglePageError

	// ECCMultiPageError means several pages (continuous read) were uncorrectable
	ECCMultiPageError
)

// ECCStatusFromBits decodes the ECC-0 and ECC-1 status bits.
func ECCStatusFromBits(ecc0, ecc1 bool) ECCStatus {
	switch {
	case ecc1 && ecc0:
		return ECCMultiPageError
	case ecc1:
		return ECCSinglePageError
	case ecc0:
		return ECCCorrected
	default:
		return ECCSuccessful
	}
}

// Ok reports whether the read data can be trusted.
func (s ECCStatus) Ok() bool {
	return s == ECCSuccessful || s == ECCCorrected
}

func (s ECCStatus) String() string {
	switch s {
	case ECCSuccessful:
		return "successful"
	case ECCCorrected:
		return "corrected"
	case ECCSinglePageError:
		return "single page uncorrectable"
	case ECCMultiPageError:
		return "multi page uncorrectable"
	default:
		return fmt.Sprintf("ECCStatus(%d)", uint8(s))
	}
}

// Status register (0xC0) bits.
const (
	StatusBBMLUTFull       = 0x40
	StatusECC1             = 0x20
	StatusECC0             = 0x10
	StatusProgramFailure   = 0x08
	StatusEraseFailure     = 0x04
	StatusWriteEnableLatch = 0x02
	StatusBusy             = 0x01
)

// Protection register (0xA0) bits.
const (
	ProtectionSRP0 = 0x80
	ProtectionBP3  = 0x40
	ProtectionBP2  = 0x20
	ProtectionBP1  = 0x10
	ProtectionBP0  = 0x08
	ProtectionTB   = 0x04
	ProtectionWPE  = 0x02
	ProtectionSRP1 = 0x01
)

// Configuration register (0xB0) bits.
const (
	ConfigurationOTPL = 0x80
	ConfigurationOTPE = 0x40
	ConfigurationSR1L = 0x20
	ConfigurationECCE = 0x10
	ConfigurationBUF  = 0x08
)

// StatusRegister is a decoded snapshot of status register 3.
type StatusRegister struct {
	// BBMLUTFull is set once every BBM LUT slot is in use
	BBMLUTFull bool

	// ECCStatus is the ECC result of the last read
	ECCStatus ECCStatus

	// WriteFailure is set when a program execute failed
	WriteFailure bool

	// EraseFailure is set when a block erase failed
	EraseFailure bool

	// WriteEnableLatch is set while writes are enabled
	WriteEnableLatch bool

	// DeviceBusy is set while an operation is in progress. The device ignores
	// most commands until it clears.
	DeviceBusy bool
}

// DecodeStatusRegister decodes the raw status register byte.
func DecodeStatusRegister(b byte) StatusRegister {
	return StatusRegister{
		BBMLUTFull:       b&StatusBBMLUTFull != 0,
		ECCStatus:        ECCStatusFromBits(b&StatusECC0 != 0, b&StatusECC1 != 0),
		WriteFailure:     b&StatusProgramFailure != 0,
		EraseFailure:     b&StatusEraseFailure != 0,
		WriteEnableLatch: b&StatusWriteEnableLatch != 0,
		DeviceBusy:       b&StatusBusy != 0,
	}
}

// ProtectionRegister is status register 1.
type ProtectionRegister struct {
	SRP0 bool
	BP3  bool
	BP2  bool
	BP1  bool
	BP0  bool
	TB   bool
	WPE  bool
	SRP1 bool
}

// DecodeProtectionRegister decodes the raw protection register byte.
func DecodeProtectionRegister(b byte) ProtectionRegister {
	return ProtectionRegister{
		SRP0: b&ProtectionSRP0 != 0,
		BP3:  b&ProtectionBP3 != 0,
		BP2:  b&ProtectionBP2 != 0,
		BP1:  b&ProtectionBP1 != 0,
		BP0:  b&ProtectionBP0 != 0,
		TB:   b&ProtectionTB != 0,
		WPE:  b&ProtectionWPE != 0,
		SRP1: b&ProtectionSRP1 != 0,
	}
}

// Byte encodes the register.
func (r ProtectionRegister) Byte() byte {
	var b byte
	b |= bit(r.SRP0, ProtectionSRP0)
	b |= bit(r.BP3, ProtectionBP3)
	b |= bit(r.BP2, ProtectionBP2)
	b |= bit(r.BP1, ProtectionBP1)
	b |= bit(r.BP0, ProtectionBP0)
	b |= bit(r.TB, ProtectionTB)
	b |= bit(r.WPE, ProtectionWPE)
	b |= bit(r.SRP1, ProtectionSRP1)
	return b
}

// ConfigurationRegister is status register 2. Bits 2..0 are reserved.
type ConfigurationRegister struct {
	// OTPL locks the OTP area
	OTPL bool

	// OTPE enters OTP access mode
	OTPE bool

	// SR1L locks the protection register
	SR1L bool

	// ECCE enables on-chip ECC
	ECCE bool

	// BUF selects buffer read mode; clear for continuous read
	BUF bool
}

// DecodeConfigurationRegister decodes the raw configuration register byte.
func DecodeConfigurationRegister(b byte) ConfigurationRegister {
	return ConfigurationRegister{
		OTPL: b&ConfigurationOTPL != 0,
		OTPE: b&ConfigurationOTPE != 0,
		SR1L: b&ConfigurationSR1L != 0,
		ECCE: b&ConfigurationECCE != 0,
		BUF:  b&ConfigurationBUF != 0,
	}
}

// Byte encodes the register. Reserved bits are written as zero.
func (r ConfigurationRegister) Byte() byte {
	var b byte
	b |= bit(r.OTPL, ConfigurationOTPL)
	b |= bit(r.OTPE, ConfigurationOTPE)
	b |= bit(r.SR1L, ConfigurationSR1L)
	b |= bit(r.ECCE, ConfigurationECCE)
	b |= bit(r.BUF, ConfigurationBUF)
	return b
}

func bit(set bool, mask byte) byte {
	if set {
		return mask
	}
	return 0
}
