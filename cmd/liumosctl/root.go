package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "liumosctl",
	Short: "Operator tooling for liumOS PMEM images",
	Long: `liumosctl inspects and manipulates a liumOS persistent-memory image
offline: dumping the descriptor page and its records, replaying the kernel's
boot-time recovery walk, listing recovered processes, and injecting a
simulated crash mid-checkpoint for testing.`,
	Version: "0.1.0-dev",
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.liumosctl.yaml)")
	rootCmd.PersistentFlags().Uint64("page-size", 4096, "allocator page size in bytes")
	_ = viper.BindPFlag("page_size", rootCmd.PersistentFlags().Lookup("page-size"))

	rootCmd.AddCommand(dumpCmd, recoverCmd, simCrashCmd, listProcessesCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".liumosctl")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("LIUMOSCTL")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil && viper.ConfigFileUsed() != "" {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}
