package image

import (
	"github.com/moffa90/go-w25n/protocol"
)

// Image represents a raw flash image split into pages.
type Image struct {
	// Size is the length of the source data in bytes
	Size int64

	// Pages contains the pages holding data, in ascending order. Pages that
	// are entirely 0xFF are left out since an erased page already holds them.
	Pages []*Page
}

// Page represents one page of an image.
type Page struct {
	// Index is the page number relative to the start of the image
	Index uint16

	// Data is exactly protocol.PageSize bytes. The last page of an image is
	// padded with 0xFF.
	Data []byte
}

// Span returns the number of pages from the start of the image to its end,
// including erased pages that were left out.
func (img *Image) Span() int {
	return int((img.Size + protocol.PageSize - 1) / protocol.PageSize)
}

// Blocks returns the erase blocks the image covers when written at
// startPage, in ascending order.
func (img *Image) Blocks(startPage uint16) []uint16 {
	if img.Span() == 0 {
		return nil
	}
	first := protocol.BlockOf(startPage)
	last := protocol.BlockOf(startPage + uint16(img.Span()-1))

	blocks := make([]uint16, 0, last-first+1)
	for b := first; b <= last; b++ {
		blocks = append(blocks, b)
	}
	return blocks
}
