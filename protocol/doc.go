// Package protocol implements the W25N01GV serial NAND command set.
//
// This package builds command descriptors and decodes register and table
// responses according to the Winbond W25N01GV datasheet. It performs no I/O;
// a transport clocks the descriptors onto the bus.
//
// # Command Descriptors
//
// Every instruction is described by a Command whose phases are clocked in
// order, each on its own bus width:
//
//	[INSTRUCTION][ADDRESS...][ALTERNATE...][DUMMY CYCLES][DATA...]
//
// Use the Build* functions to create descriptors:
//
//	cmd := protocol.BuildPageDataReadCmd(page)
//	cmd, err := protocol.BuildFastReadCmd(protocol.FastReadQuadIO, 0, protocol.PageSizeWithECC)
//	// ... etc
//
// Page addresses (erase, program execute, page data read) are sent as two
// data bytes after eight dummy cycles. Column addresses (loads, fast reads)
// are a two-byte address phase. Both are most significant byte first.
//
// # Registers
//
// The chip has three status registers reached through Read Status Register
// (05h) and Write Status Register (01h) with a sub-address:
//
//	0xA0  protection     SRP0 BP3 BP2 BP1 BP0 TB WPE SRP1
//	0xB0  configuration  OTP-L OTP-E SR1-L ECC-E BUF - - -
//	0xC0  status         - LUT-F ECC-1 ECC-0 P-FAIL E-FAIL WEL BUSY
//
// Decode* and Byte convert between raw bytes and register structs.
//
// # Bad Block Management
//
// ParseBBMLookupTable decodes the 20-slot logical to physical block link
// table returned by Read BBM LUT (A5h).
//
// # Reference
//
// W25N01GVxxIG/IT 3V 1G-bit Serial SLC NAND Flash Memory datasheet, Winbond.
package protocol
