package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func bankFlag(cmd *cobra.Command) {
	cmd.Flags().Int("bank", 0, "bank index")
}

func bankIndex(cmd *cobra.Command) int {
	i, _ := cmd.Flags().GetInt("bank")
	return i
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe the simulated part and print its resolved geometry",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDriver()
		if err != nil {
			return err
		}
		bk, err := bankOrError(d, bankIndex(cmd))
		if err != nil {
			return err
		}
		geo := bk.Geometry()
		fmt.Printf("%s\n", bk.Info())
		fmt.Printf("page_size=%d first_bank_sectors=%d hole_sectors=%d size_bytes=%d sectors=%d\n",
			geo.PageSize, geo.FirstBankSectors, geo.HoleSectors, geo.SizeBytes, len(bk.Sectors()))
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the bank's part/revision string",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDriver()
		if err != nil {
			return err
		}
		bk, err := bankOrError(d, bankIndex(cmd))
		if err != nil {
			return err
		}
		fmt.Println(bk.Info())
		return nil
	},
}

var eraseCmd = &cobra.Command{
	Use:   "erase <first> <last>",
	Short: "Erase sectors [first,last] inclusive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		first, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid first sector: %w", err)
		}
		last, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid last sector: %w", err)
		}
		d, err := buildDriver()
		if err != nil {
			return err
		}
		bk, err := bankOrError(d, bankIndex(cmd))
		if err != nil {
			return err
		}
		return bk.Erase(cmdContext(), uint32(first), uint32(last))
	},
}

var massEraseCmd = &cobra.Command{
	Use:   "mass-erase",
	Short: "Erase the entire bank (and its pair, if dual-bank)",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDriver()
		if err != nil {
			return err
		}
		bk, err := bankOrError(d, bankIndex(cmd))
		if err != nil {
			return err
		}
		return bk.MassErase(cmdContext())
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <offset-hex> <file>",
	Short: "Write a binary file into the bank at offset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := strconv.ParseUint(args[0], 16, 32)
		if err != nil {
			return fmt.Errorf("invalid offset: %w", err)
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[1], err)
		}
		d, err := buildDriver()
		if err != nil {
			return err
		}
		bk, err := bankOrError(d, bankIndex(cmd))
		if err != nil {
			return err
		}
		return bk.Write(cmdContext(), uint32(offset), data)
	},
}

var readCmd = &cobra.Command{
	Use:   "read <offset-hex> <count>",
	Short: "Read count bytes from offset and print them as hex",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := strconv.ParseUint(args[0], 16, 32)
		if err != nil {
			return fmt.Errorf("invalid offset: %w", err)
		}
		count, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid count: %w", err)
		}
		d, err := buildDriver()
		if err != nil {
			return err
		}
		bk, err := bankOrError(d, bankIndex(cmd))
		if err != nil {
			return err
		}
		out, err := bk.Read(cmdContext(), uint32(offset), count)
		if err != nil {
			return err
		}
		fmt.Println(hex.EncodeToString(out))
		return nil
	},
}

var protectCmd = &cobra.Command{
	Use:   "protect <first> <last>",
	Short: "Write-protect (or, with --clear, unprotect) sectors [first,last]",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		first, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid first sector: %w", err)
		}
		last, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid last sector: %w", err)
		}
		clear, _ := cmd.Flags().GetBool("clear")
		d, err := buildDriver()
		if err != nil {
			return err
		}
		bk, err := bankOrError(d, bankIndex(cmd))
		if err != nil {
			return err
		}
		return bk.Protect(cmdContext(), !clear, uint32(first), uint32(last))
	},
}

var protectCheckCmd = &cobra.Command{
	Use:   "protect-check",
	Short: "Re-derive each sector's protected flag from the WRP registers",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDriver()
		if err != nil {
			return err
		}
		bk, err := bankOrError(d, bankIndex(cmd))
		if err != nil {
			return err
		}
		if err := bk.ProtectCheck(cmdContext()); err != nil {
			return err
		}
		for i, s := range bk.Sectors() {
			if s.IsProtected {
				fmt.Printf("sector %d: protected\n", i)
			}
		}
		return nil
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Enable readout protection (RDP=0)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, "lock")
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Disable readout protection and clear write-protect zones (RDP=0xAA)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, "unlock")
	},
}

var watchdogCmd = &cobra.Command{
	Use:   "watchdog <setting> <enable|disable>",
	Short: "Toggle an option-byte watchdog bit",
	Long: `<setting> is one of:
  window-soft           window watchdog software selection
  independent-standby   independent watchdog in Standby mode
  independent-stop      independent watchdog in Stop mode
  independent-soft      independent watchdog software selection`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := map[string]string{
			"window-soft":         "window_watchdog_soft_selection",
			"independent-standby": "independent_watchdog_standby",
			"independent-stop":    "independent_watchdog_stop",
			"independent-soft":    "independent_watchdog_soft_selection",
		}
		cmdName, ok := names[args[0]]
		if !ok {
			return fmt.Errorf("unknown watchdog setting %q", args[0])
		}
		d, err := buildDriver()
		if err != nil {
			return err
		}
		table := d.CommandTable()
		return table[cmdName](cmdContext(), []string{strconv.Itoa(bankIndex(cmd)), args[1]})
	},
}

// dispatch runs one of the Driver.CommandTable entries that take just a
// <bank> argument.
func dispatch(cmd *cobra.Command, name string) error {
	d, err := buildDriver()
	if err != nil {
		return err
	}
	table := d.CommandTable()
	return table[name](cmdContext(), []string{strconv.Itoa(bankIndex(cmd))})
}

func init() {
	for _, c := range []*cobra.Command{
		probeCmd, infoCmd, eraseCmd, massEraseCmd, writeCmd, readCmd,
		protectCmd, protectCheckCmd, lockCmd, unlockCmd, watchdogCmd,
	} {
		bankFlag(c)
	}
	protectCmd.Flags().Bool("clear", false, "clear protection instead of setting it")
}
