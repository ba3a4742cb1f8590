package protocol

// Chip identifies the device this package frames commands for.
const Chip = "W25N01GV"

// JEDEC identification returned by the Read JEDEC ID command.
const (
	// ManufacturerWinbond is the JEDEC manufacturer ID (0xEF)
	ManufacturerWinbond = 0xEF

	// DeviceIDHigh and DeviceIDLow form the W25N01GV device ID (0xAA21)
	DeviceIDHigh = 0xAA
	DeviceIDLow  = 0x21

	// JEDECIDSize is the length of the JEDEC ID response in bytes
	JEDECIDSize = 3
)

// Memory geometry.
const (
	// PageSize is the number of data bytes in a page
	PageSize = 2048

	// PageSizeWithECC is the full page including the spare/ECC area
	PageSizeWithECC = 2112

	// PagesPerBlock is the number of pages in one erase block
	PagesPerBlock = 64

	// BlockSize is the size of one erase block in data bytes (128KB)
	BlockSize = PageSize * PagesPerBlock

	// PageCount is the number of addressable pages (16-bit page address)
	PageCount = 65536

	// BlockCount is the number of erase blocks
	BlockCount = PageCount / PagesPerBlock

	// ErasedValue is the value every byte reads back as after an erase
	ErasedValue = 0xFF
)

// Bad block management look-up table.
const (
	// MaxBBMLUTEntries is the number of link slots in the BBM LUT
	MaxBBMLUTEntries = 20

	// BBMLUTEntrySize is the size of one LUT slot: LBA(2) + PBA(2)
	BBMLUTEntrySize = 4

	// BBMLUTSize is the size of the Read BBM LUT response
	BBMLUTSize = MaxBBMLUTEntries * BBMLUTEntrySize
)

// Instruction opcodes per W25N01GV datasheet section 8.1.
const (
	// CmdDeviceReset terminates any operation and resets the device (0xFF)
	CmdDeviceReset = 0xFF

	// CmdJEDECID reads the manufacturer and device ID (0x9F)
	CmdJEDECID = 0x9F

	// CmdReadStatusRegister reads the register selected by the alternate byte (0x05)
	CmdReadStatusRegister = 0x05

	// CmdWriteStatusRegister writes the register selected by the first data byte (0x01)
	CmdWriteStatusRegister = 0x01

	// CmdWriteEnable sets the write enable latch (0x06)
	CmdWriteEnable = 0x06

	// CmdWriteDisable clears the write enable latch (0x04)
	CmdWriteDisable = 0x04

	// CmdBlockErase erases the 128KB block containing the addressed page (0xD8)
	CmdBlockErase = 0xD8

	// CmdLoadProgramData loads the data buffer, resetting unwritten bytes to 0xFF (0x02)
	CmdLoadProgramData = 0x02

	// CmdRandomLoadProgramData loads the data buffer, keeping unwritten bytes (0x84)
	CmdRandomLoadProgramData = 0x84

	// CmdQuadLoadProgramData is CmdLoadProgramData with quad data (0x32)
	CmdQuadLoadProgramData = 0x32

	// CmdQuadRandomLoadProgramData is CmdRandomLoadProgramData with quad data (0x34)
	CmdQuadRandomLoadProgramData = 0x34

	// CmdReadBBM reads the bad block management look-up table (0xA5)
	CmdReadBBM = 0xA5

	// CmdProgramExecute commits the data buffer to the addressed page (0x10)
	CmdProgramExecute = 0x10

	// CmdPageDataRead transfers the addressed page into the data buffer (0x13)
	CmdPageDataRead = 0x13

	// CmdFastRead reads the data buffer on a single line (0x0B)
	CmdFastRead = 0x0B

	// CmdFastReadDualOutput reads the data buffer on two lines (0x3B)
	CmdFastReadDualOutput = 0x3B

	// CmdFastReadQuadOutput reads the data buffer on four lines (0x6B)
	CmdFastReadQuadOutput = 0x6B

	// CmdFastReadDualIO reads with address and data on two lines (0xBB)
	CmdFastReadDualIO = 0xBB

	// CmdFastReadQuadIO reads with address and data on four lines (0xEB)
	CmdFastReadQuadIO = 0xEB
)

// Status register sub-addresses, sent as the alternate byte of
// CmdReadStatusRegister or the first data byte of CmdWriteStatusRegister.
const (
	// RegProtection is status register 1, block protection (0xA0)
	RegProtection = 0xA0

	// RegConfiguration is status register 2, configuration (0xB0)
	RegConfiguration = 0xB0

	// RegStatus is status register 3, read-only status (0xC0)
	RegStatus = 0xC0
)

// Dummy cycle counts.
const (
	// DefaultDummyCycles is used by JEDEC ID, BBM LUT, erase, program execute,
	// page data read and the output-only fast reads
	DefaultDummyCycles = 8

	// IODummyCycles is used by the dual and quad I/O fast reads, whose address
	// phase already runs on the wider bus
	IODummyCycles = 4
)

// AddressSize is the byte length of column addresses.
const AddressSize = 2
