//go:build linux

package spidev

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/moffa90/go-w25n/protocol"
)

// See Linux "include/uapi/linux/spi/spidev.h" and
// "Documentation/spi/spidev.rst"

const (
	iocWrBitsPerWord = 0x40016b03
	iocWrMaxSpeedHz  = 0x40046b04
	iocRdMode32      = 0x80046b05
	iocWrMode32      = 0x40046b05
)

// iocTransfer is struct spi_ioc_transfer.
type iocTransfer struct {
	TxBuf          uint64
	RxBuf          uint64
	Length         uint32
	SpeedHz        uint32
	DelayUsecs     uint16
	BitsPerWord    uint8
	CSChange       uint8
	TxNBits        uint8
	RxNBits        uint8
	WordDelayUsecs uint8
	Pad            uint8
}

// iocMessage is the SPI_IOC_MESSAGE(n) ioctl number.
func iocMessage(n int) uint32 {
	const (
		sizeBits  = 14
		sizeShift = 16
	)
	size := uint32(n * binary.Size(iocTransfer{}))
	if n < 0 || size > (1<<sizeBits) {
		return iocMessage(0)
	}
	return 0x40006b00 | (size << sizeShift)
}

// Device is a W25N01GV transport on a Linux spidev node.
type Device struct {
	f      *os.File
	config Config
}

// Open opens dev (such as "/dev/spidev0.0") and applies the mode, word
// size and clock. Remember to call Close.
func Open(dev string, opts ...Option) (*Device, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	f, err := os.OpenFile(dev, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	d := &Device{f: f, config: cfg}

	if err := d.setup(); err != nil {
		f.Close()
		return nil, fmt.Errorf("spidev: configure %s: %w", dev, err)
	}
	return d, nil
}

func (d *Device) setup() error {
	mode := d.config.Mode | widthMode(d.config.MaxWidth)
	if err := d.ioctl(iocWrMode32, unsafe.Pointer(&mode)); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	bpw := uint8(8)
	if err := d.ioctl(iocWrBitsPerWord, unsafe.Pointer(&bpw)); err != nil {
		return fmt.Errorf("set bits per word: %w", err)
	}
	if hz := d.config.SpeedHz; hz > 0 {
		if err := d.ioctl(iocWrMaxSpeedHz, unsafe.Pointer(&hz)); err != nil {
			return fmt.Errorf("set speed: %w", err)
		}
	}
	return nil
}

// Mode reads back the mode word the driver accepted.
func (d *Device) Mode() (Mode, error) {
	var m Mode
	err := d.ioctl(iocRdMode32, unsafe.Pointer(&m))
	return m, err
}

// Close closes the spidev node.
func (d *Device) Close() error {
	return d.f.Close()
}

// Write sends cmd including its data phase.
func (d *Device) Write(cmd protocol.Command) error {
	transfers, err := Frame(cmd, nil, d.config.MaxWidth, d.config.SpeedHz)
	if err != nil {
		return err
	}
	return d.message(transfers)
}

// Transfer sends cmd and receives len(rx) bytes in its data phase.
func (d *Device) Transfer(cmd protocol.Command, rx []byte) error {
	if rx == nil {
		rx = []byte{}
	}
	transfers, err := Frame(cmd, rx, d.config.MaxWidth, d.config.SpeedHz)
	if err != nil {
		return err
	}
	return d.message(transfers)
}

// message runs the segments as one chip-select cycle.
func (d *Device) message(transfers []Transfer) error {
	// Copy data into unmanaged buffer because the garbage collector may move
	// pointers at any time.
	bufSize := 0
	for _, t := range transfers {
		bufSize += len(t.Tx) + len(t.Rx)
	}
	if bufSize == 0 {
		return nil
	}
	buf, err := unix.Mmap(-1, 0, bufSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return err
	}
	defer unix.Munmap(buf)

	it := make([]iocTransfer, 0, len(transfers))
	offset := 0
	for _, t := range transfers {
		x := iocTransfer{
			SpeedHz:     t.SpeedHz,
			BitsPerWord: 8,
			TxNBits:     t.TxNBits,
			RxNBits:     t.RxNBits,
		}
		if len(t.Tx) > 0 {
			copy(buf[offset:], t.Tx)
			x.TxBuf = uint64(uintptr(unsafe.Pointer(&buf[offset])))
			x.Length = uint32(len(t.Tx))
			offset += len(t.Tx)
		}
		if len(t.Rx) > 0 {
			x.RxBuf = uint64(uintptr(unsafe.Pointer(&buf[offset])))
			x.Length = uint32(len(t.Rx))
			offset += len(t.Rx)
		}
		it = append(it, x)
	}

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(),
		uintptr(iocMessage(len(it))),
		uintptr(unsafe.Pointer(&it[0]))); errno != 0 {
		return classify(errno)
	}

	// Copy out rx.
	offset = 0
	for _, t := range transfers {
		offset += len(t.Tx)
		copy(t.Rx, buf[offset:offset+len(t.Rx)])
		offset += len(t.Rx)
	}
	return nil
}

func (d *Device) ioctl(req uintptr, arg unsafe.Pointer) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), req, uintptr(arg)); errno != 0 {
		return errno
	}
	return nil
}

// classify maps ioctl failures onto the bus error kinds.
func classify(errno unix.Errno) error {
	switch {
	case errors.Is(errno, unix.EBUSY), errors.Is(errno, unix.EAGAIN):
		return fmt.Errorf("spidev: %w: %w", protocol.ErrBusBusy, errno)
	case errors.Is(errno, unix.EINVAL):
		return fmt.Errorf("spidev: %w: %w", protocol.ErrBusAddress, errno)
	default:
		return fmt.Errorf("spidev: %w", errno)
	}
}
