// Package programmer provides a high-level API for writing, reading and
// validating the array of a W25N01GV serial NAND flash.
//
// # Overview
//
// This package drives a nand.ReadDevice through complete sequences:
//   - Checking the JEDEC ID
//   - Clearing block protection and selecting buffer read mode
//   - Erasing the blocks an image covers
//   - Programming pages and reading them back
//   - Dumping pages to an io.Writer
//
// # Basic Usage
//
//	t, err := spidev.Open("/dev/spidev0.0", spidev.WithMaxWidth(protocol.Quad))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Close()
//
//	img, err := image.Parse("rootfs.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	prog := programmer.New(nand.New(t),
//	    programmer.WithWriteMethod(protocol.QuadLoad),
//	    programmer.WithReadMethod(protocol.FastReadQuadIO),
//	)
//	if err := prog.Program(context.Background(), img, 0); err != nil {
//	    log.Fatal(err)
//	}
//
// # Device Handles
//
// Erase and program move the device through write mode, which replaces the
// read-mode handle. Programmer keeps track of the current handle; use
// Device to get it after an operation. If a failed operation also fails to
// return the device to read mode, the handle is lost and every later call
// returns ErrNoDevice.
//
// # Bad Blocks
//
// With WithSkipBadBlocks(true), blocks whose first page carries a factory
// bad block marker are skipped and the image continues in the next good
// block. The markers are read before erasing, since an erase clears them.
//
// # Error Handling
//
// The package provides structured error types:
//   - DeviceMismatchError: JEDEC ID is not a W25N01GV
//   - PageOutOfRangeError: Operation runs past the last page
//   - VerificationError: Read-back differs from the programmed data
//   - ECCError: On-chip ECC could not correct a page
//   - nand.CommandError: Device or transport failure (see nand.ErrWriteFailure)
package programmer
