package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genc-murat/crystalvm/internal/snapshot"
)

var inspectQuery string

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot>",
	Short: "Query a machine snapshot",
	Long: `Read a snapshot file and print the value at a JSON path, e.g.

  crystalvm inspect machine.json --query registers.3
  crystalvm inspect machine.json --query segments.0.#
  crystalvm inspect machine.json --query alloc_stats.pool_hits

Without --query the whole snapshot JSON is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if inspectQuery == "" {
			st, err := snapshot.Open(args[0])
			if err != nil {
				return err
			}
			data, err := st.Encode()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		}

		res, err := snapshot.QueryFile(args[0], inspectQuery)
		if err != nil {
			return err
		}
		fmt.Println(res.String())
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectQuery, "query", "q", "", "JSON path to extract")
}
