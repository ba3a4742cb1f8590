package image

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/moffa90/go-w25n/protocol"
)

// MaxSize is the largest image that fits the main array.
const MaxSize = int64(protocol.PageCount) * protocol.PageSize

// Parse reads a raw image from the given file path.
//
// Example:
//
//	img, err := image.Parse("rootfs.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d bytes, %d pages to program\n", img.Size, len(img.Pages))
func Parse(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader reads a raw image from r until EOF.
func ParseReader(r io.Reader) (*Image, error) {
	img := &Image{}

	for index := 0; ; index++ {
		buf := make([]byte, protocol.PageSize)
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			if index >= protocol.PageCount {
				return nil, fmt.Errorf("image too large: exceeds %d bytes", MaxSize)
			}
			img.Size += int64(n)
			copy(buf[n:], bytes.Repeat([]byte{protocol.ErasedValue}, protocol.PageSize-n))

			if !protocol.IsErased(buf) {
				img.Pages = append(img.Pages, &Page{Index: uint16(index), Data: buf})
			}
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", index, err)
		}
	}

	if img.Size == 0 {
		return nil, fmt.Errorf("empty image")
	}
	return img, nil
}
