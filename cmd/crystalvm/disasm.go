package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/genc-murat/crystalvm/internal/decode"
	"github.com/genc-murat/crystalvm/internal/loader"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [program]",
	Short: "Print a listing of a machine program",
	Long: `Decode every word of a program and print one line per instruction
with its offset, raw encoding and mnemonic. Words that do not decode
to a valid opcode are shown as DATA.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		program, err := loader.Load(path)
		if err != nil {
			return err
		}
		return decode.Program(program, os.Stdout)
	},
}
