// Package spidev implements nand.Transport on the Linux spidev interface.
//
// Each command is sent as one SPI_IOC_MESSAGE, so chip select stays
// asserted from opcode to last data byte. Dual and quad phases set the
// per-segment tx_nbits/rx_nbits fields; enable them with WithMaxWidth
// once the controller and wiring support them.
//
//	t, err := spidev.Open("/dev/spidev0.0",
//	    spidev.WithSpeed(50_000_000),
//	    spidev.WithMaxWidth(protocol.Quad))
//	if err != nil {
//	    return err
//	}
//	defer t.Close()
//	dev := nand.New(t)
package spidev
