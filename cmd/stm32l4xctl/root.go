package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// config mirrors FoenixMgrGo's cmd.cfg pattern: a package-level struct
// populated from flags/env/config file through viper, read by every
// subcommand instead of each one re-parsing os.Args.
type config struct {
	DeviceID  string // hex device ID-code, e.g. "10001461"
	FlashKB   int
	NumBanks  int
	CtrlBase  uint32
	FlashBase uint32
}

var cfg config

var rootCmd = &cobra.Command{
	Use:   "stm32l4xctl",
	Short: "Exercise the STM32L4 flash bank driver against a simulated target",
	Long: `stm32l4xctl drives the stm32l4x package's Driver against an
in-memory target (internal/simtarget) standing in for a real debug
link, so the command surface can be tried out without hardware.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./stm32l4xctl.yaml)")
	rootCmd.PersistentFlags().String("device-id", "10001461", "simulated raw ID-code (hex, no 0x prefix)")
	rootCmd.PersistentFlags().Int("flash-kb", 1024, "simulated flash size in KB")
	rootCmd.PersistentFlags().Int("banks", 1, "number of flash banks to construct")

	viper.BindPFlag("device_id", rootCmd.PersistentFlags().Lookup("device-id"))
	viper.BindPFlag("flash_kb", rootCmd.PersistentFlags().Lookup("flash-kb"))
	viper.BindPFlag("banks", rootCmd.PersistentFlags().Lookup("banks"))

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(eraseCmd)
	rootCmd.AddCommand(massEraseCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(protectCmd)
	rootCmd.AddCommand(protectCheckCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(watchdogCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("stm32l4xctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("STM32L4XCTL")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig() // absence of a config file is not an error

	cfg = config{
		DeviceID:  strings.TrimPrefix(viper.GetString("device_id"), "0x"),
		FlashKB:   viper.GetInt("flash_kb"),
		NumBanks:  viper.GetInt("banks"),
		CtrlBase:  0x40022000,
		FlashBase: 0x08000000,
	}
}

func parseDeviceID() (uint32, error) {
	v, err := strconv.ParseUint(cfg.DeviceID, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid device-id %q: %w", cfg.DeviceID, err)
	}
	return uint32(v), nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
