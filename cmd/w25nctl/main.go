// w25nctl reads, writes and inspects a W25N01GV serial NAND flash over
// Linux spidev, a periph.io SPI port, or a built-in simulator.
//
// Usage:
//
//	w25nctl id
//	w25nctl --width quad program --in rootfs.bin --page 0
//	w25nctl dump --page 0 --count 64 --out block0.bin
//	w25nctl --config w25n.yaml status
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "w25nctl",
		Short:        "W25N01GV serial NAND flash utility",
		Long:         "Identify, erase, program, dump and protect a W25N01GV serial NAND flash",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.config, "config", "", "YAML config file")
	pf.StringVar(&a.flags.driver, "driver", driverSpidev, "transport driver: spidev|periph|sim")
	pf.StringVar(&a.flags.device, "device", "/dev/spidev0.0", "spidev node or periph port name")
	pf.Uint32Var(&a.flags.speedHz, "speed", 10_000_000, "SPI clock in Hz")
	pf.StringVar(&a.flags.width, "width", "single", "widest bus phase: single|dual|quad")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "log level: debug|info|warn|error")

	root.AddCommand(
		newIDCmd(a),
		newStatusCmd(a),
		newBBMCmd(a),
		newEraseCmd(a),
		newDumpCmd(a),
		newProgramCmd(a),
		newProtectCmd(a),
		newValidateCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}
