package programmer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-w25n/protocol"
)

// Dump reads count pages starting at startPage and writes their data areas
// to w. Pages ECC cannot correct abort the dump with *ECCError.
func (p *Programmer) Dump(ctx context.Context, startPage uint16, count int, w io.Writer) error {
	if w == nil {
		return fmt.Errorf("writer cannot be nil")
	}
	if err := checkRange(int(startPage), count); err != nil {
		return err
	}
	if err := p.prepare(false); err != nil {
		return err
	}

	startTime := time.Now()
	buf := make([]byte, protocol.PageSize)
	read := 0

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		page := startPage + uint16(i)
		if err := p.readPage(page, buf, true); err != nil {
			return fmt.Errorf("read page %d: %w", page, err)
		}
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write page %d: %w", page, err)
		}
		read += len(buf)

		p.reportProgress(Progress{
			Phase:        PhaseReading,
			CurrentPage:  i + 1,
			TotalPages:   count,
			Percentage:   float64(i+1) / float64(count) * 100,
			BytesWritten: read,
			ElapsedTime:  time.Since(startTime),
		})
	}

	p.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentPage:  count,
		TotalPages:   count,
		Percentage:   100,
		BytesWritten: read,
		ElapsedTime:  time.Since(startTime),
	})
	p.logDebug("dump complete", "start_page", startPage, "pages", count)

	return nil
}

// ValidationPattern returns the test pattern Validate writes to the page at
// index within its block: byte i holds (i + index) mod 256.
func ValidationPattern(index int) []byte {
	data := make([]byte, protocol.PageSize)
	for i := range data {
		data[i] = byte(i + index)
	}
	return data
}

// Validate exercises block end to end: it erases the block, then programs
// every page with ValidationPattern and reads it back. The block's previous
// contents are lost.
func (p *Programmer) Validate(ctx context.Context, block uint16) error {
	if int(block) >= protocol.BlockCount {
		return &PageOutOfRangeError{Page: int(block) * protocol.PagesPerBlock, Count: protocol.PagesPerBlock}
	}

	startTime := time.Now()

	if _, err := p.Identify(ctx); err != nil {
		return err
	}
	if err := p.prepare(true); err != nil {
		return err
	}
	if err := p.eraseBlock(block); err != nil {
		return fmt.Errorf("erase block %d: %w", block, err)
	}

	first := protocol.FirstPageOf(block)
	for i := 0; i < protocol.PagesPerBlock; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		page := first + uint16(i)
		data := ValidationPattern(i)
		if err := p.programPage(page, data); err != nil {
			return fmt.Errorf("program page %d: %w", page, err)
		}
		if err := p.verifyPage(page, data); err != nil {
			return fmt.Errorf("verify page %d: %w", page, err)
		}

		p.reportProgress(Progress{
			Phase:        PhaseValidating,
			CurrentPage:  i + 1,
			TotalPages:   protocol.PagesPerBlock,
			Percentage:   float64(i+1) / protocol.PagesPerBlock * 100,
			BytesWritten: (i + 1) * protocol.PageSize,
			ElapsedTime:  time.Since(startTime),
		})
	}

	p.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentPage:  protocol.PagesPerBlock,
		TotalPages:   protocol.PagesPerBlock,
		Percentage:   100,
		BytesWritten: protocol.BlockSize,
		ElapsedTime:  time.Since(startTime),
	})
	p.logInfo("block validated", "block", block, "elapsed", time.Since(startTime).String())

	return nil
}
