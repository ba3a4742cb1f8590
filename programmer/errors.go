package programmer

import (
	"fmt"

	"github.com/moffa90/go-w25n/protocol"
)

// DeviceMismatchError indicates that the device is not a W25N01GV.
type DeviceMismatchError struct {
	Expected protocol.JEDECID
	Actual   protocol.JEDECID
}

func (e *DeviceMismatchError) Error() string {
	return fmt.Sprintf("device mismatch: expected JEDEC ID %s, device has %s",
		e.Expected, e.Actual)
}

// PageOutOfRangeError indicates that an operation would run past the last
// page of the array.
type PageOutOfRangeError struct {
	Page  int
	Count int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("pages %d-%d are out of range: valid range is 0-%d",
		e.Page, e.Page+e.Count-1, protocol.PageCount-1)
}

// VerificationError indicates that a page read back differs from what was
// programmed.
type VerificationError struct {
	Page     uint16
	Offset   int
	Expected byte
	Actual   byte
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed for page %d at offset %d: expected 0x%02X, got 0x%02X",
		e.Page, e.Offset, e.Expected, e.Actual)
}

// ECCError indicates that on-chip ECC could not correct a staged page.
type ECCError struct {
	Page   uint16
	Status protocol.ECCStatus
}

func (e *ECCError) Error() string {
	return fmt.Sprintf("ECC failure on page %d: %s", e.Page, e.Status)
}
