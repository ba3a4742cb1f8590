// Package image loads raw images for the W25N01GV main array.
//
// # Image Format
//
// An image is a flat binary laid out page after page, 2048 data bytes per
// page, with no spare area:
//
//	[page 0 (2048)][page 1 (2048)]...[page N (<= 2048)]
//
// A short last page is padded with 0xFF. Pages that are entirely 0xFF are
// dropped, since programming them would not change an erased page.
//
// # Usage
//
//	img, err := image.Parse("rootfs.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, p := range img.Pages {
//	    fmt.Printf("page %d\n", p.Index)
//	}
//
// # Error Handling
//
// Parse returns an error for empty input, for input larger than the
// 128MB main array, and for read failures, naming the page that failed.
package image
