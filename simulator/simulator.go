package simulator

import (
	"bytes"
	"fmt"

	"github.com/moffa90/go-w25n/protocol"
)

// Power-up register values of a W25N01GVxxIG.
const (
	DefaultProtection    = 0x7C // BP3-0 and TB set: whole array protected
	DefaultConfiguration = 0x18 // ECC-E and BUF set
)

// Chip simulates a W25N01GV behind a Transport. It decodes command
// descriptors, checks their framing against the datasheet, and models the
// data buffer, array, registers, write enable latch and busy time.
//
// While busy, the chip ignores everything except Device Reset, JEDEC ID
// and register reads, as the real device does. Ignored commands are counted.
type Chip struct {
	pages  map[uint16][]byte
	buffer []byte
	staged uint16

	protection    byte
	configuration byte
	status        byte

	busyPolls int
	latency   int

	lut protocol.BBMLookupTable

	failErase   map[uint16]bool
	failProgram map[uint16]bool
	eccStatus   map[uint16]protocol.ECCStatus
	failNext    error

	commands []protocol.Command
	ignored  int
}

// New returns a chip in its power-up state: array erased, array protected,
// ECC on, buffer read mode.
func New(opts ...Option) *Chip {
	c := &Chip{
		pages:         make(map[uint16][]byte),
		buffer:        erased(protocol.PageSizeWithECC),
		protection:    DefaultProtection,
		configuration: DefaultConfiguration,
		latency:       2,
		failErase:     make(map[uint16]bool),
		failProgram:   make(map[uint16]bool),
		eccStatus:     make(map[uint16]protocol.ECCStatus),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Write implements nand.Transport.
func (c *Chip) Write(cmd protocol.Command) error {
	if err := c.begin(cmd); err != nil {
		return err
	}
	if err := checkFrame(cmd, false); err != nil {
		return err
	}

	switch cmd.Instruction {
	case protocol.CmdDeviceReset:
		c.reset()
		return nil
	}

	if c.busyPolls > 0 {
		c.ignored++
		return nil
	}

	switch cmd.Instruction {
	case protocol.CmdWriteEnable:
		c.status |= protocol.StatusWriteEnableLatch
	case protocol.CmdWriteDisable:
		c.status &^= protocol.StatusWriteEnableLatch
	case protocol.CmdWriteStatusRegister:
		c.writeRegister(cmd.Data[0], cmd.Data[1])
	case protocol.CmdBlockErase:
		c.erase(pageOf(cmd))
	case protocol.CmdLoadProgramData, protocol.CmdQuadLoadProgramData,
		protocol.CmdRandomLoadProgramData, protocol.CmdQuadRandomLoadProgramData:
		c.load(uint16(cmd.Address.Value), cmd.Data, protocol.WriteMethod(cmd.Instruction).ClearsBuffer())
	case protocol.CmdProgramExecute:
		c.program(pageOf(cmd))
	case protocol.CmdPageDataRead:
		c.pageDataRead(pageOf(cmd))
	default:
		return fmt.Errorf("simulator: unsupported write instruction 0x%02X: %w", cmd.Instruction, protocol.ErrBusAddress)
	}
	return nil
}

// Transfer implements nand.Transport.
func (c *Chip) Transfer(cmd protocol.Command, rx []byte) error {
	if err := c.begin(cmd); err != nil {
		return err
	}
	if err := checkFrame(cmd, true); err != nil {
		return err
	}

	switch cmd.Instruction {
	case protocol.CmdJEDECID:
		copy(rx, []byte{protocol.ManufacturerWinbond, protocol.DeviceIDHigh, protocol.DeviceIDLow})
		return nil
	case protocol.CmdReadStatusRegister:
		if len(rx) > 0 {
			rx[0] = c.readRegister(cmd.Alternate[0])
		}
		return nil
	}

	if c.busyPolls > 0 {
		// An ignored read leaves the data lines floating high
		c.ignored++
		fill(rx, 0xFF)
		return nil
	}

	switch cmd.Instruction {
	case protocol.CmdReadBBM:
		copy(rx, protocol.EncodeBBMLookupTable(c.lut))
	case protocol.CmdFastRead, protocol.CmdFastReadDualOutput, protocol.CmdFastReadQuadOutput,
		protocol.CmdFastReadDualIO, protocol.CmdFastReadQuadIO:
		c.fastRead(uint16(cmd.Address.Value), rx)
	default:
		return fmt.Errorf("simulator: unsupported transfer instruction 0x%02X: %w", cmd.Instruction, protocol.ErrBusAddress)
	}
	return nil
}

// Commands returns every command received, in order.
func (c *Chip) Commands() []protocol.Command {
	return c.commands
}

// Count returns how many commands with the given opcode were received.
func (c *Chip) Count(op byte) int {
	n := 0
	for _, cmd := range c.commands {
		if cmd.Instruction == op {
			n++
		}
	}
	return n
}

// Ignored returns how many commands arrived while the chip was busy.
func (c *Chip) Ignored() int {
	return c.ignored
}

// Page returns a copy of the stored page including the ECC area.
func (c *Chip) Page(page uint16) []byte {
	if p, ok := c.pages[page]; ok {
		return bytes.Clone(p)
	}
	return erased(protocol.PageSizeWithECC)
}

// SetBusy makes the chip report busy for the next polls status reads.
func (c *Chip) SetBusy(polls int) {
	c.busyPolls = polls
	c.syncBusy()
}

// SetBBMLookupTable replaces the bad block LUT.
func (c *Chip) SetBBMLookupTable(lut protocol.BBMLookupTable) {
	c.lut = lut
	full := true
	for _, l := range lut {
		if l == nil {
			full = false
			break
		}
	}
	c.setStatus(protocol.StatusBBMLUTFull, full)
}

// FailErase makes every erase of block report E-FAIL.
func (c *Chip) FailErase(block uint16) {
	c.failErase[block] = true
}

// FailProgram makes every program execute to page report P-FAIL.
func (c *Chip) FailProgram(page uint16) {
	c.failProgram[page] = true
}

// SetECCStatus sets the ECC result reported after page is staged.
func (c *Chip) SetECCStatus(page uint16, status protocol.ECCStatus) {
	c.eccStatus[page] = status
}

// FailNext makes the next Write or Transfer return err without effect.
func (c *Chip) FailNext(err error) {
	c.failNext = err
}

// Protected reports whether block lies in the range set by TB and BP3-0.
//
// The simulator models the range as 2^(BP-1) blocks, counted from the top
// of the array or from the bottom when TB is set.
func (c *Chip) Protected(block uint16) bool {
	bp := int(c.protection>>3) & 0x0F
	if bp == 0 {
		return false
	}
	n := 1 << (bp - 1)
	if n >= protocol.BlockCount {
		return true
	}
	if c.protection&protocol.ProtectionTB != 0 {
		return int(block) < n
	}
	return int(block) >= protocol.BlockCount-n
}

func (c *Chip) begin(cmd protocol.Command) error {
	c.commands = append(c.commands, cmd)
	if err := c.failNext; err != nil {
		c.failNext = nil
		return err
	}
	return nil
}

func (c *Chip) reset() {
	c.busyPolls = 0
	c.status &^= protocol.StatusWriteEnableLatch | protocol.StatusEraseFailure | protocol.StatusProgramFailure
	c.syncBusy()
}

func (c *Chip) readRegister(reg byte) byte {
	switch reg {
	case protocol.RegProtection:
		return c.protection
	case protocol.RegConfiguration:
		return c.configuration
	default:
		v := c.status
		if c.busyPolls > 0 {
			c.busyPolls--
			c.syncBusy()
		}
		return v
	}
}

func (c *Chip) writeRegister(reg, value byte) {
	switch reg {
	case protocol.RegProtection:
		c.protection = value
	case protocol.RegConfiguration:
		// Reserved bits read back as zero
		c.configuration = value & 0xF8
	}
}

func (c *Chip) erase(page uint16) {
	if !c.writeEnabled() {
		c.ignored++
		return
	}
	block := protocol.BlockOf(page)
	// P-FAIL is left for the next program execute to clear
	c.status &^= protocol.StatusWriteEnableLatch | protocol.StatusEraseFailure
	c.busy()

	if c.failErase[block] || c.Protected(block) {
		c.status |= protocol.StatusEraseFailure
		return
	}
	first := protocol.FirstPageOf(block)
	for i := uint16(0); i < protocol.PagesPerBlock; i++ {
		delete(c.pages, first+i)
	}
}

func (c *Chip) load(column uint16, data []byte, clear bool) {
	if !c.writeEnabled() {
		c.ignored++
		return
	}
	if clear {
		fill(c.buffer, protocol.ErasedValue)
	}
	copy(c.buffer[column:], data)
}

func (c *Chip) program(page uint16) {
	if !c.writeEnabled() {
		c.ignored++
		return
	}
	c.status &^= protocol.StatusWriteEnableLatch | protocol.StatusEraseFailure | protocol.StatusProgramFailure
	c.busy()

	if c.failProgram[page] || c.Protected(protocol.BlockOf(page)) {
		c.status |= protocol.StatusProgramFailure
		return
	}
	p, ok := c.pages[page]
	if !ok {
		p = erased(protocol.PageSizeWithECC)
		c.pages[page] = p
	}
	// Programming can only clear bits
	for i := range p {
		p[i] &= c.buffer[i]
	}
}

func (c *Chip) pageDataRead(page uint16) {
	c.staged = page
	copy(c.buffer, c.Page(page))
	c.busy()

	ecc := c.eccStatus[page]
	if c.configuration&protocol.ConfigurationECCE == 0 {
		ecc = protocol.ECCSuccessful
	}
	c.status &^= protocol.StatusECC0 | protocol.StatusECC1
	switch ecc {
	case protocol.ECCCorrected:
		c.status |= protocol.StatusECC0
	case protocol.ECCSinglePageError:
		c.status |= protocol.StatusECC1
	case protocol.ECCMultiPageError:
		c.status |= protocol.StatusECC0 | protocol.StatusECC1
	}
}

func (c *Chip) fastRead(column uint16, rx []byte) {
	if c.configuration&protocol.ConfigurationBUF != 0 {
		n := copy(rx, c.buffer[column:])
		fill(rx[n:], 0xFF)
		return
	}

	// Continuous read ignores the column and streams the data area of the
	// staged page and the pages after it
	page := c.staged
	for len(rx) > 0 {
		n := copy(rx, c.Page(page)[:protocol.PageSize])
		rx = rx[n:]
		page++
	}
}

func (c *Chip) writeEnabled() bool {
	return c.status&protocol.StatusWriteEnableLatch != 0
}

func (c *Chip) busy() {
	c.busyPolls = c.latency
	c.syncBusy()
}

func (c *Chip) syncBusy() {
	c.setStatus(protocol.StatusBusy, c.busyPolls > 0)
}

func (c *Chip) setStatus(mask byte, set bool) {
	if set {
		c.status |= mask
	} else {
		c.status &^= mask
	}
}

func pageOf(cmd protocol.Command) uint16 {
	page, _ := protocol.ParsePageAddress(cmd.Data)
	return page
}

func erased(n int) []byte {
	return bytes.Repeat([]byte{protocol.ErasedValue}, n)
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
