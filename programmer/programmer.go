package programmer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moffa90/go-w25n/image"
	"github.com/moffa90/go-w25n/nand"
	"github.com/moffa90/go-w25n/protocol"
)

// ErrNoDevice is returned once the programmer has lost its device handle
// because it could not return the device to read mode after a failure.
var ErrNoDevice = errors.New("programmer has no device handle")

// w25n01gv is the expected JEDEC ID.
var w25n01gv = protocol.JEDECID{protocol.ManufacturerWinbond, protocol.DeviceIDHigh, protocol.DeviceIDLow}

// Programmer orchestrates image programming, read-out and validation on a
// W25N01GV. It owns the device handle passed to New and moves it through
// write mode as needed.
//
// Programmer is not safe for concurrent use.
type Programmer struct {
	dev    *nand.ReadDevice
	config Config
}

// New creates a new Programmer that takes over dev.
//
// Example:
//
//	t, _ := spidev.Open("/dev/spidev0.0")
//	prog := programmer.New(nand.New(t),
//	    programmer.WithProgressCallback(progressFunc),
//	    programmer.WithVerifyAfterProgram(true),
//	)
func New(dev *nand.ReadDevice, opts ...Option) *Programmer {
	if dev == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Programmer{
		dev:    dev,
		config: cfg,
	}
}

// Device returns the current read-mode handle. It changes every time an
// operation passes through write mode, and is nil after ErrNoDevice.
func (p *Programmer) Device() *nand.ReadDevice {
	return p.dev
}

// Identify reads the JEDEC ID and checks that the device is a W25N01GV.
func (p *Programmer) Identify(ctx context.Context) (protocol.JEDECID, error) {
	if err := ctx.Err(); err != nil {
		return protocol.JEDECID{}, fmt.Errorf("cancelled: %w", err)
	}
	dev, err := p.device()
	if err != nil {
		return protocol.JEDECID{}, err
	}

	id, err := dev.JEDECID()
	if err != nil {
		return id, fmt.Errorf("read JEDEC ID: %w", err)
	}
	if !id.IsW25N01GV() {
		return id, &DeviceMismatchError{Expected: w25n01gv, Actual: id}
	}
	return id, nil
}

// Program writes img to the array starting at startPage:
//  1. Check the JEDEC ID
//  2. Clear block protection and select buffer read mode
//  3. Map the covered blocks, skipping marked bad blocks if enabled
//  4. Erase the covered blocks
//  5. Program every non-erased page, reading it back if enabled
//
// The operation can be cancelled via context between pages.
//
// Example:
//
//	img, _ := image.Parse("rootfs.bin")
//	err := prog.Program(context.Background(), img, 0)
func (p *Programmer) Program(ctx context.Context, img *image.Image, startPage uint16) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}
	if err := checkRange(int(startPage), img.Span()); err != nil {
		return err
	}

	startTime := time.Now()

	// Phase 1: Identify
	p.reportProgress(Progress{
		Phase:      PhaseIdentifying,
		Percentage: 0,
		TotalPages: len(img.Pages),
	})

	id, err := p.Identify(ctx)
	if err != nil {
		return err
	}
	p.logDebug("device identified", "jedec_id", id.String())

	// Phase 2: Prepare
	if err := p.prepare(true); err != nil {
		return err
	}

	// Phase 3: Map blocks
	blocks, err := p.mapBlocks(ctx, img.Blocks(startPage))
	if err != nil {
		return err
	}

	// Phase 4: Erase
	eraseShare := 0.0
	if p.config.EraseBeforeProgram {
		eraseShare = 10
		for i, b := range blocks {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("cancelled: %w", err)
			}
			if err := p.eraseBlock(b.physical); err != nil {
				return fmt.Errorf("erase block %d: %w", b.physical, err)
			}

			p.reportProgress(Progress{
				Phase:       PhaseErasing,
				CurrentPage: i + 1,
				TotalPages:  len(blocks),
				Percentage:  eraseShare * float64(i+1) / float64(len(blocks)),
				ElapsedTime: time.Since(startTime),
			})
		}
	}

	// Phase 5: Program pages
	bytesWritten := 0
	for i, pg := range img.Pages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		page := translate(blocks, int(startPage)+int(pg.Index))
		if err := p.programPage(page, pg.Data); err != nil {
			return fmt.Errorf("program page %d (image page %d): %w", page, pg.Index, err)
		}

		if p.config.VerifyAfterProgram {
			if err := p.verifyPage(page, pg.Data); err != nil {
				return fmt.Errorf("verify page %d (image page %d): %w", page, pg.Index, err)
			}
		}

		bytesWritten += len(pg.Data)

		percentage := eraseShare + (float64(i+1)/float64(len(img.Pages)))*(100-eraseShare)
		p.reportProgress(Progress{
			Phase:        PhaseProgramming,
			CurrentPage:  i + 1,
			TotalPages:   len(img.Pages),
			Percentage:   percentage,
			BytesWritten: bytesWritten,
			ElapsedTime:  time.Since(startTime),
		})
	}

	// Complete
	p.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentPage:  len(img.Pages),
		TotalPages:   len(img.Pages),
		Percentage:   100,
		BytesWritten: bytesWritten,
		ElapsedTime:  time.Since(startTime),
	})

	p.logInfo("programming complete",
		"pages", len(img.Pages),
		"blocks", len(blocks),
		"bytes", bytesWritten,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// EraseBlock erases one block and waits for the erase to finish.
func (p *Programmer) EraseBlock(ctx context.Context, block uint16) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}
	if int(block) >= protocol.BlockCount {
		return &PageOutOfRangeError{Page: int(block) * protocol.PagesPerBlock, Count: protocol.PagesPerBlock}
	}
	if err := p.prepare(true); err != nil {
		return err
	}
	if err := p.eraseBlock(block); err != nil {
		return fmt.Errorf("erase block %d: %w", block, err)
	}
	return nil
}

// prepare waits for the device and selects buffer read mode, clearing the
// block protect bits first when writing and the option is set.
func (p *Programmer) prepare(write bool) error {
	dev, err := p.device()
	if err != nil {
		return err
	}
	if err := dev.WaitWhileBusy(); err != nil {
		return fmt.Errorf("wait for device: %w", err)
	}
	if write && p.config.Unprotect {
		if err := dev.SetWriteProtection(false, false, false, false, false); err != nil {
			return fmt.Errorf("clear write protection: %w", err)
		}
	}
	if err := dev.SetContinuousReadMode(false); err != nil {
		return fmt.Errorf("select buffer read mode: %w", err)
	}
	return nil
}

// eraseBlock erases block and waits for completion.
func (p *Programmer) eraseBlock(block uint16) error {
	p.logDebug("erasing block", "block", block)

	err := p.inWriteMode(func(w *nand.WriteDevice) (*nand.ReadDevice, error) {
		return w.EraseBlock(protocol.FirstPageOf(block))
	})
	if werr := p.wait(); err == nil {
		err = werr
	}
	return err
}

// programPage loads data and commits it to page, waiting for completion.
func (p *Programmer) programPage(page uint16, data []byte) error {
	err := p.inWriteMode(func(w *nand.WriteDevice) (*nand.ReadDevice, error) {
		if err := w.LoadToDataBuffer(data, 0, p.config.WriteMethod); err != nil {
			return nil, err
		}
		return w.WriteDataBufferToMemory(page)
	})
	if werr := p.wait(); err == nil {
		err = werr
	}
	return err
}

// verifyPage stages page and compares it with data.
func (p *Programmer) verifyPage(page uint16, data []byte) error {
	buf := make([]byte, len(data))
	if err := p.readPage(page, buf, true); err != nil {
		return err
	}

	for i := range data {
		if buf[i] != data[i] {
			p.logError("verification mismatch", "page", page, "offset", i,
				"expected", data[i], "actual", buf[i])
			return &VerificationError{Page: page, Offset: i, Expected: data[i], Actual: buf[i]}
		}
	}
	return nil
}

// readPage stages page and reads len(buf) bytes from column 0. With
// checkECC set an uncorrectable page fails with *ECCError.
func (p *Programmer) readPage(page uint16, buf []byte, checkECC bool) error {
	return p.readPageAt(page, 0, buf, checkECC)
}

func (p *Programmer) readPageAt(page, column uint16, buf []byte, checkECC bool) error {
	dev, err := p.device()
	if err != nil {
		return err
	}
	if err := dev.ReadMemoryToDataBuffer(page); err != nil {
		return err
	}
	if err := dev.WaitWhileBusy(); err != nil {
		return err
	}

	if checkECC {
		status, err := dev.ReadStatusRegister()
		if err != nil {
			return err
		}
		if !status.ECCStatus.Ok() {
			p.logError("uncorrectable page", "page", page, "ecc", status.ECCStatus.String())
			return &ECCError{Page: page, Status: status.ECCStatus}
		}
		if status.ECCStatus == protocol.ECCCorrected {
			p.logDebug("ECC corrected page", "page", page)
		}
	}

	return dev.ReadDataBufferAt(buf, column, p.config.ReadMethod)
}

// inWriteMode runs op on a write-mode handle. op returns the read-mode
// handle it ended on, or nil if it failed while still in write mode, in
// which case the device is returned to read mode with Write Disable.
func (p *Programmer) inWriteMode(op func(*nand.WriteDevice) (*nand.ReadDevice, error)) error {
	dev, err := p.device()
	if err != nil {
		return err
	}

	w, err := dev.IntoWriteMode()
	if err != nil {
		return err
	}

	rd, err := op(w)
	if rd != nil {
		p.dev = rd
		return err
	}

	werr := w.WaitWhileBusy()
	if werr != nil {
		p.logError("wait before read mode failed", "error", werr)
		werr = fmt.Errorf("wait before read mode: %w", werr)
	}
	rd, rerr := w.IntoReadMode()
	if rerr != nil {
		p.dev = nil
		p.logError("device handle lost", "error", rerr)
		return errors.Join(err, werr, fmt.Errorf("return to read mode: %w", rerr), ErrNoDevice)
	}
	p.dev = rd
	return errors.Join(err, werr)
}

// wait polls the current handle until the device is idle.
func (p *Programmer) wait() error {
	dev, err := p.device()
	if err != nil {
		return err
	}
	return dev.WaitWhileBusy()
}

func (p *Programmer) device() (*nand.ReadDevice, error) {
	if p.dev == nil {
		return nil, ErrNoDevice
	}
	return p.dev, nil
}

func checkRange(page, count int) error {
	if page < 0 || count < 0 || page+count > protocol.PageCount {
		return &PageOutOfRangeError{Page: page, Count: count}
	}
	return nil
}

// reportProgress calls the progress callback if configured.
func (p *Programmer) reportProgress(progress Progress) {
	if p.config.ProgressCallback != nil {
		p.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (p *Programmer) logDebug(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (p *Programmer) logInfo(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (p *Programmer) logError(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Error(msg, keysAndValues...)
	}
}
