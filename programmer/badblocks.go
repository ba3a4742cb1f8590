package programmer

import (
	"context"
	"fmt"

	"github.com/moffa90/go-w25n/protocol"
)

// blockMapping pairs a block the image covers with the block it is written to.
type blockMapping struct {
	logical  uint16
	physical uint16
}

// IsBadBlock reports whether block carries a factory bad block marker: a
// non-0xFF first spare byte in the block's first page.
func (p *Programmer) IsBadBlock(block uint16) (bool, error) {
	if int(block) >= protocol.BlockCount {
		return false, &PageOutOfRangeError{Page: int(block) * protocol.PagesPerBlock, Count: protocol.PagesPerBlock}
	}

	marker := make([]byte, 1)
	if err := p.readPageAt(protocol.FirstPageOf(block), protocol.PageSize, marker, false); err != nil {
		return false, fmt.Errorf("read bad block marker of block %d: %w", block, err)
	}
	return marker[0] != protocol.ErasedValue, nil
}

// mapBlocks assigns a physical block to every logical block. Without
// SkipBadBlocks the mapping is the identity; with it, marked blocks are
// passed over and the image shifts to the next good block.
func (p *Programmer) mapBlocks(ctx context.Context, logical []uint16) ([]blockMapping, error) {
	blocks := make([]blockMapping, 0, len(logical))
	if !p.config.SkipBadBlocks {
		for _, b := range logical {
			blocks = append(blocks, blockMapping{logical: b, physical: b})
		}
		return blocks, nil
	}
	if len(logical) == 0 {
		return blocks, nil
	}

	next := int(logical[0])
	for _, b := range logical {
		for {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("cancelled: %w", err)
			}
			if next >= protocol.BlockCount {
				return nil, &PageOutOfRangeError{
					Page:  int(logical[0]) * protocol.PagesPerBlock,
					Count: (next - int(logical[0]) + 1) * protocol.PagesPerBlock,
				}
			}

			bad, err := p.IsBadBlock(uint16(next))
			if err != nil {
				return nil, err
			}
			if !bad {
				break
			}
			p.logInfo("skipping bad block", "block", next)
			next++
		}

		blocks = append(blocks, blockMapping{logical: b, physical: uint16(next)})
		next++
	}
	return blocks, nil
}

// translate maps an absolute logical page to its physical page.
func translate(blocks []blockMapping, page int) uint16 {
	block := uint16(page / protocol.PagesPerBlock)
	offset := uint16(page % protocol.PagesPerBlock)
	for _, b := range blocks {
		if b.logical == block {
			return b.physical*protocol.PagesPerBlock + offset
		}
	}
	return uint16(page)
}
