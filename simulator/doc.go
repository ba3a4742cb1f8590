// Package simulator provides an in-memory W25N01GV that implements
// nand.Transport.
//
// The chip checks the framing of every command (phase widths, dummy
// cycles, payload sizes) and answers like the real part: erases and
// program executes need the write enable latch, programming only clears
// bits, and long operations stay busy for a configurable number of status
// reads. Faults can be injected per block, per page or for the next call.
//
// Example:
//
//	chip := simulator.New(simulator.WithUnprotected())
//	dev := nand.New(chip)
//	id, err := dev.JEDECID() // EF AA 21
package simulator
