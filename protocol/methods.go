package protocol

import "fmt"

// ReadMethod selects the fast read variant used to drain the data buffer.
// The value is the opcode.
type ReadMethod uint8

const (
	FastRead           ReadMethod = CmdFastRead
	FastReadDualOutput ReadMethod = CmdFastReadDualOutput
	FastReadQuadOutput ReadMethod = CmdFastReadQuadOutput
	FastReadDualIO     ReadMethod = CmdFastReadDualIO
	FastReadQuadIO     ReadMethod = CmdFastReadQuadIO
)

// Valid reports whether m is one of the defined read methods.
func (m ReadMethod) Valid() bool {
	switch m {
	case FastRead, FastReadDualOutput, FastReadQuadOutput, FastReadDualIO, FastReadQuadIO:
		return true
	}
	return false
}

// DummyCycles returns the idle clocks between address and data.
func (m ReadMethod) DummyCycles() uint8 {
	switch m {
	case FastReadDualIO, FastReadQuadIO:
		return IODummyCycles
	default:
		return DefaultDummyCycles
	}
}

// AddressWidth returns the bus width of the column address phase.
func (m ReadMethod) AddressWidth() BusWidth {
	switch m {
	case FastReadDualIO:
		return Dual
	case FastReadQuadIO:
		return Quad
	default:
		return Single
	}
}

// DataWidth returns the bus width of the data phase.
func (m ReadMethod) DataWidth() BusWidth {
	switch m {
	case FastReadDualOutput, FastReadDualIO:
		return Dual
	case FastReadQuadOutput, FastReadQuadIO:
		return Quad
	default:
		return Single
	}
}

func (m ReadMethod) String() string {
	switch m {
	case FastRead:
		return "fast read"
	case FastReadDualOutput:
		return "fast read dual output"
	case FastReadQuadOutput:
		return "fast read quad output"
	case FastReadDualIO:
		return "fast read dual I/O"
	case FastReadQuadIO:
		return "fast read quad I/O"
	default:
		return fmt.Sprintf("ReadMethod(0x%02X)", uint8(m))
	}
}

// WriteMethod selects the load program data variant. The value is the opcode.
type WriteMethod uint8

const (
	// SingleLoad resets the data buffer to 0xFF before loading
	SingleLoad WriteMethod = CmdLoadProgramData

	// RandomSingleLoad keeps bytes outside the loaded range
	RandomSingleLoad WriteMethod = CmdRandomLoadProgramData

	// QuadLoad is SingleLoad with quad data
	QuadLoad WriteMethod = CmdQuadLoadProgramData

	// RandomQuadLoad is RandomSingleLoad with quad data
	RandomQuadLoad WriteMethod = CmdQuadRandomLoadProgramData
)

// WriteMethodFor returns the load variant for the given data width. clear
// selects the variants that reset unwritten bytes to the erased value.
func WriteMethodFor(width BusWidth, clear bool) WriteMethod {
	if width == Quad {
		if clear {
			return QuadLoad
		}
		return RandomQuadLoad
	}
	if clear {
		return SingleLoad
	}
	return RandomSingleLoad
}

// Valid reports whether m is one of the defined write methods.
func (m WriteMethod) Valid() bool {
	switch m {
	case SingleLoad, RandomSingleLoad, QuadLoad, RandomQuadLoad:
		return true
	}
	return false
}

// ClearsBuffer reports whether the load resets the whole buffer first.
func (m WriteMethod) ClearsBuffer() bool {
	return m == SingleLoad || m == QuadLoad
}

// DummyCycles returns the idle clocks before data. Loads have none.
func (m WriteMethod) DummyCycles() uint8 { return 0 }

// AddressWidth returns the bus width of the column address phase.
func (m WriteMethod) AddressWidth() BusWidth { return Single }

// DataWidth returns the bus width of the data phase.
func (m WriteMethod) DataWidth() BusWidth {
	switch m {
	case QuadLoad, RandomQuadLoad:
		return Quad
	default:
		return Single
	}
}

func (m WriteMethod) String() string {
	switch m {
	case SingleLoad:
		return "load"
	case RandomSingleLoad:
		return "random load"
	case QuadLoad:
		return "quad load"
	case RandomQuadLoad:
		return "quad random load"
	default:
		return fmt.Sprintf("WriteMethod(0x%02X)", uint8(m))
	}
}
