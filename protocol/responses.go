package protocol

import (
	"encoding/binary"
	"fmt"
)

// ParseJEDECID parses the Read JEDEC ID response.
//
// Data format (3 bytes):
//
//	[MF][ID15-8][ID7-0]
func ParseJEDECID(data []byte) (JEDECID, error) {
	var id JEDECID
	if len(data) != JEDECIDSize {
		return id, fmt.Errorf("invalid data length for JEDEC ID response: got %d bytes, expected %d", len(data), JEDECIDSize)
	}
	copy(id[:], data)
	return id, nil
}

// ParseRegisterResponse returns the single register byte of a Read Status
// Register response.
func ParseRegisterResponse(data []byte) (byte, error) {
	if len(data) != 1 {
		return 0, fmt.Errorf("invalid data length for register response: got %d bytes, expected 1", len(data))
	}
	return data[0], nil
}

// ParseBBMLookupTable decodes the Read BBM LUT response into links in slot
// order. A slot whose LBA and PBA are both zero is empty.
//
// Data format (BBMLUTSize bytes), each field most significant byte first:
//
//	[LBA0(2)][PBA0(2)][LBA1(2)][PBA1(2)]...[LBA19(2)][PBA19(2)]
func ParseBBMLookupTable(data []byte) (BBMLookupTable, error) {
	var table BBMLookupTable
	if len(data) != BBMLUTSize {
		return table, fmt.Errorf("invalid data length for BBM LUT response: got %d bytes, expected %d", len(data), BBMLUTSize)
	}

	for i := range table {
		slot := data[i*BBMLUTEntrySize : (i+1)*BBMLUTEntrySize]
		lba := binary.BigEndian.Uint16(slot[0:2])
		pba := binary.BigEndian.Uint16(slot[2:4])
		if lba == 0 && pba == 0 {
			continue
		}
		table[i] = &BBMLink{Logical: lba, Physical: pba}
	}

	return table, nil
}

// EncodeBBMLookupTable is the inverse of ParseBBMLookupTable.
func EncodeBBMLookupTable(table BBMLookupTable) []byte {
	out := make([]byte, BBMLUTSize)
	for i, l := range table {
		if l == nil {
			continue
		}
		binary.BigEndian.PutUint16(out[i*BBMLUTEntrySize:], l.Logical)
		binary.BigEndian.PutUint16(out[i*BBMLUTEntrySize+2:], l.Physical)
	}
	return out
}

// ParsePageAddress decodes the two-byte page address carried as data by
// the erase, program execute and page data read commands.
func ParsePageAddress(data []byte) (uint16, error) {
	if len(data) != 2 {
		return 0, fmt.Errorf("invalid page address length: got %d bytes, expected 2", len(data))
	}
	return binary.BigEndian.Uint16(data), nil
}

// BlockOf returns the erase block containing page.
func BlockOf(page uint16) uint16 {
	return page / PagesPerBlock
}

// FirstPageOf returns the first page of block.
func FirstPageOf(block uint16) uint16 {
	return block * PagesPerBlock
}

// IsErased reports whether every byte of data holds the erased value.
func IsErased(data []byte) bool {
	for _, b := range data {
		if b != ErasedValue {
			return false
		}
	}
	return true
}
