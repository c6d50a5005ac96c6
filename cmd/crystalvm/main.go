package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genc-murat/crystalvm/internal/config"
	"github.com/genc-murat/crystalvm/internal/log"
)

var (
	cfgPath  string
	logLevel string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "crystalvm",
	Short: "Universal Machine emulator",
	Long: `crystalvm executes UM-32 Universal Machine programs: 32-bit words,
eight registers, segmented memory with identifier reuse.

Programs are flat files of big-endian 32-bit instruction words.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		log.Configure(log.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "crystalvm:", err)
		os.Exit(1)
	}
}
