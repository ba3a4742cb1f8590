package protocol

import "fmt"

// BusWidth is the number of data lines a command phase is clocked on.
type BusWidth uint8

const (
	// Single uses IO0 only (standard SPI)
	Single BusWidth = 1

	// Dual uses IO0 and IO1
	Dual BusWidth = 2

	// Quad uses IO0 through IO3
	Quad BusWidth = 4
)

func (w BusWidth) String() string {
	switch w {
	case Single:
		return "single"
	case Dual:
		return "dual"
	case Quad:
		return "quad"
	default:
		return fmt.Sprintf("BusWidth(%d)", uint8(w))
	}
}

// Address is the optional address phase of a command.
type Address struct {
	// Value is the address, clocked most significant byte first
	Value uint32

	// Size is the address length in bytes
	Size int

	// Width is the bus width of the address phase
	Width BusWidth
}

// Bytes returns the address phase as Size bytes, most significant first.
func (a Address) Bytes() []byte {
	out := make([]byte, a.Size)
	v := a.Value
	for i := a.Size - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// Command describes one framed instruction. Phases are clocked in order:
// instruction, address, alternate bytes, dummy cycles, data.
//
// A Command is handed to a transport either as a write (Data is sent) or as a
// transfer (DataWidth is used to receive into the caller's buffer).
type Command struct {
	// Instruction is the opcode
	Instruction byte

	// InstructionWidth is the bus width of the opcode phase
	InstructionWidth BusWidth

	// Address is nil for commands without an address phase
	Address *Address

	// Alternate holds the alternate bytes (register sub-address), if any
	Alternate []byte

	// AlternateWidth is the bus width of the alternate bytes
	AlternateWidth BusWidth

	// DummyCycles is the number of idle clocks before the data phase
	DummyCycles uint8

	// Data is the payload sent after the dummy cycles (writes only)
	Data []byte

	// DataWidth is the bus width of the data phase
	DataWidth BusWidth
}

// MaxWidth reports the widest bus width used by any phase of the command.
func (c Command) MaxWidth() BusWidth {
	w := c.InstructionWidth
	if c.Address != nil && c.Address.Width > w {
		w = c.Address.Width
	}
	if len(c.Alternate) > 0 && c.AlternateWidth > w {
		w = c.AlternateWidth
	}
	if c.DataWidth > w {
		w = c.DataWidth
	}
	return w
}

func (c Command) String() string {
	s := fmt.Sprintf("cmd 0x%02X", c.Instruction)
	if c.Address != nil {
		s += fmt.Sprintf(" addr=0x%0*X/%s", c.Address.Size*2, c.Address.Value, c.Address.Width)
	}
	if len(c.Alternate) > 0 {
		s += fmt.Sprintf(" alt=% X", c.Alternate)
	}
	if c.DummyCycles > 0 {
		s += fmt.Sprintf(" dummy=%d", c.DummyCycles)
	}
	if len(c.Data) > 0 {
		s += fmt.Sprintf(" data=%dB/%s", len(c.Data), c.DataWidth)
	}
	return s
}

// JEDECID is the three-byte manufacturer and device identification.
type JEDECID [JEDECIDSize]byte

// Manufacturer returns the JEDEC manufacturer byte.
func (id JEDECID) Manufacturer() byte { return id[0] }

// Device returns the 16-bit device ID.
func (id JEDECID) Device() uint16 { return uint16(id[1])<<8 | uint16(id[2]) }

// IsW25N01GV reports whether the ID matches a Winbond W25N01GV.
func (id JEDECID) IsW25N01GV() bool {
	return id == JEDECID{ManufacturerWinbond, DeviceIDHigh, DeviceIDLow}
}

func (id JEDECID) String() string {
	return fmt.Sprintf("%02X %02X %02X", id[0], id[1], id[2])
}

// BBMLink is one logical to physical block link of the bad block LUT.
type BBMLink struct {
	// Logical is the raw LBA field. Bit 15 is the enable flag, bit 14 the
	// invalid flag, bits 9..0 the logical block number.
	Logical uint16

	// Physical is the replacement physical block address
	Physical uint16
}

const (
	bbmEnableBit  = 0x8000
	bbmInvalidBit = 0x4000
	bbmBlockMask  = 0x03FF
)

// LogicalBlock returns the logical block number with the flag bits masked.
func (l BBMLink) LogicalBlock() uint16 { return l.Logical & bbmBlockMask }

// PhysicalBlock returns the physical block number.
func (l BBMLink) PhysicalBlock() uint16 { return l.Physical & bbmBlockMask }

// Enabled reports whether the link is active.
func (l BBMLink) Enabled() bool { return l.Logical&bbmEnableBit != 0 }

// Invalid reports whether the device marked the link invalid.
func (l BBMLink) Invalid() bool { return l.Logical&bbmInvalidBit != 0 }

// BBMLookupTable is the decoded LUT in device slot order. Empty slots are nil.
type BBMLookupTable [MaxBBMLUTEntries]*BBMLink

// Links returns the non-empty slots in slot order.
func (t BBMLookupTable) Links() []BBMLink {
	var out []BBMLink
	for _, l := range t {
		if l != nil {
			out = append(out, *l)
		}
	}
	return out
}
