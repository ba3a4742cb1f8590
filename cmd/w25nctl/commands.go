package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-w25n/image"
	"github.com/moffa90/go-w25n/nand"
	"github.com/moffa90/go-w25n/programmer"
	"github.com/moffa90/go-w25n/protocol"
)

func newIDCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Read the JEDEC ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, err := a.open()
			if err != nil {
				return err
			}
			id, err := dev.JEDECID()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "JEDEC ID: %s\n", id)
			if id.IsW25N01GV() {
				fmt.Fprintf(out, "Device:   %s\n", protocol.Chip)
			} else {
				fmt.Fprintln(out, "Device:   unknown")
			}
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the protection, configuration and status registers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, err := a.open()
			if err != nil {
				return err
			}
			prot, err := dev.ReadProtectionRegister()
			if err != nil {
				return err
			}
			cfg, err := dev.ReadConfigurationRegister()
			if err != nil {
				return err
			}
			st, err := dev.ReadStatusRegister()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Protection:    0x%02X  SRP0=%t BP=%t%t%t%t TB=%t WP-E=%t SRP1=%t\n",
				prot.Byte(), prot.SRP0, prot.BP3, prot.BP2, prot.BP1, prot.BP0, prot.TB, prot.WPE, prot.SRP1)
			fmt.Fprintf(out, "Configuration: 0x%02X  OTP-L=%t OTP-E=%t SR1-L=%t ECC-E=%t BUF=%t\n",
				cfg.Byte(), cfg.OTPL, cfg.OTPE, cfg.SR1L, cfg.ECCE, cfg.BUF)
			fmt.Fprintf(out, "Status:        BUSY=%t WEL=%t E-FAIL=%t P-FAIL=%t ECC=%s LUT-F=%t\n",
				st.DeviceBusy, st.WriteEnableLatch, st.EraseFailure, st.WriteFailure, st.ECCStatus, st.BBMLUTFull)
			return nil
		},
	}
}

func newBBMCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bbm",
		Short: "Dump the bad block management look-up table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, err := a.open()
			if err != nil {
				return err
			}
			lut, err := dev.ReadBBMLookupTable()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			n := 0
			for i, l := range lut {
				if l == nil {
					continue
				}
				n++
				fmt.Fprintf(out, "%2d: LBA %4d -> PBA %4d  enabled=%t invalid=%t\n",
					i, l.LogicalBlock(), l.PhysicalBlock(), l.Enabled(), l.Invalid())
			}
			if n == 0 {
				fmt.Fprintln(out, "BBM LUT is empty")
			}
			return nil
		},
	}
}

func newEraseCmd(a *app) *cobra.Command {
	var page uint16

	cmd := &cobra.Command{
		Use:   "erase",
		Short: "Erase the 128KB block containing a page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, err := a.open()
			if err != nil {
				return err
			}
			block := protocol.BlockOf(page)
			if err := a.programmer(dev).EraseBlock(cmd.Context(), block); err != nil {
				return err
			}

			first := protocol.FirstPageOf(block)
			fmt.Fprintf(cmd.OutOrStdout(), "Erased block %d (pages %d-%d)\n",
				block, first, int(first)+protocol.PagesPerBlock-1)
			return nil
		},
	}
	cmd.Flags().Uint16Var(&page, "page", 0, "any page in the block to erase")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func newDumpCmd(a *app) *cobra.Command {
	var (
		page  uint16
		count int
		out   string
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Read pages to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			dev, err := a.open()
			if err != nil {
				return err
			}
			if err := a.programmer(dev).Dump(cmd.Context(), page, count, w); err != nil {
				return err
			}

			if out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Read %d pages (%d bytes) from page %d to %s\n",
					count, count*protocol.PageSize, page, out)
			}
			return nil
		},
	}
	cmd.Flags().Uint16Var(&page, "page", 0, "first page")
	cmd.Flags().IntVar(&count, "count", 1, "number of pages")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	return cmd
}

func newProgramCmd(a *app) *cobra.Command {
	var (
		in       string
		page     uint16
		quad     bool
		noVerify bool
		noErase  bool
		skipBad  bool
	)

	cmd := &cobra.Command{
		Use:   "program",
		Short: "Erase and program a raw image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			img, err := image.Parse(in)
			if err != nil {
				return err
			}

			opts := []programmer.Option{
				programmer.WithProgressCallback(progressPrinter(cmd.ErrOrStderr())),
				programmer.WithEraseBeforeProgram(!noErase),
			}
			if quad {
				opts = append(opts,
					programmer.WithWriteMethod(protocol.QuadLoad),
					programmer.WithReadMethod(protocol.FastReadQuadIO),
				)
			}
			if noVerify {
				opts = append(opts, programmer.WithVerifyAfterProgram(false))
			}
			if cmd.Flags().Changed("skip-bad-blocks") {
				opts = append(opts, programmer.WithSkipBadBlocks(skipBad))
			}

			dev, err := a.open()
			if err != nil {
				return err
			}
			if err := a.programmer(dev, opts...).Program(cmd.Context(), img, page); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Programmed %d pages from %s at page %d\n",
				len(img.Pages), in, page)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "raw image file")
	cmd.Flags().Uint16Var(&page, "page", 0, "first page to program")
	cmd.Flags().BoolVar(&quad, "quad", false, "load and read back on four lines (needs quad wiring)")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip read-back after each page")
	cmd.Flags().BoolVar(&noErase, "no-erase", false, "program without erasing the covered blocks")
	cmd.Flags().BoolVar(&skipBad, "skip-bad-blocks", false, "move data off blocks with a bad block marker")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newProtectCmd(a *app) *cobra.Command {
	var none, all bool

	cmd := &cobra.Command{
		Use:   "protect",
		Short: "Set or clear array write protection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, err := a.open()
			if err != nil {
				return err
			}
			if err := dev.SetWriteProtection(false, all, all, all, all); err != nil {
				return err
			}
			prot, err := dev.ReadProtectionRegister()
			if err != nil {
				return err
			}

			state := "none"
			if all {
				state = "whole array"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Protection: %s (register 0x%02X)\n", state, prot.Byte())
			return nil
		},
	}
	cmd.Flags().BoolVar(&none, "none", false, "clear every block protect bit")
	cmd.Flags().BoolVar(&all, "all", false, "protect the whole array")
	cmd.MarkFlagsMutuallyExclusive("none", "all")
	cmd.MarkFlagsOneRequired("none", "all")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var block uint16

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Write and read back a test pattern on one block (destroys its contents)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, err := a.open()
			if err != nil {
				return err
			}
			prog := a.programmer(dev, programmer.WithProgressCallback(progressPrinter(cmd.ErrOrStderr())))
			if err := prog.Validate(cmd.Context(), block); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Block %d OK\n", block)
			return nil
		},
	}
	cmd.Flags().Uint16Var(&block, "block", 0, "block to test")
	return cmd
}

// programmer builds a Programmer from the config; opts are applied last.
func (a *app) programmer(dev *nand.ReadDevice, opts ...programmer.Option) *programmer.Programmer {
	width, _ := a.config.BusWidth()
	wm, rm := methodsFor(width)

	base := []programmer.Option{
		programmer.WithLogger(nand.NewSlogLogger(a.logger)),
		programmer.WithWriteMethod(wm),
		programmer.WithReadMethod(rm),
		programmer.WithVerifyAfterProgram(a.config.Verify),
		programmer.WithSkipBadBlocks(a.config.SkipBadBlocks),
	}
	return programmer.New(dev, append(base, opts...)...)
}

func progressPrinter(w io.Writer) programmer.ProgressCallback {
	return func(p programmer.Progress) {
		fmt.Fprintf(w, "\r%-12s %5.1f%%  %d/%d", p.Phase, p.Percentage, p.CurrentPage, p.TotalPages)
		if p.Phase == programmer.PhaseComplete {
			fmt.Fprintln(w)
		}
	}
}
