// Package main is the bnd CLI: a thin cobra wrapper around bnd.Run,
// shaped after saferwall/pe's own cmd/pedumper.go (spec.md §6.3).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/youyuanwu/bnd/bnd"
)

func main() {
	var output string

	rootCmd := &cobra.Command{
		Use:   "bnd [config]",
		Short: "Generates ECMA-335 .winmd metadata from C headers",
		Long:  "bnd reads a bnd.yaml configuration, extracts the headers it names, and emits a .winmd metadata assembly a downstream bindings generator can consume.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := "bnd.yaml"
			if len(args) == 1 {
				configPath = args[0]
			}

			// bnd.Options.Index is left unset here: this module ships no
			// concrete C front-end binding, only the cfront.Index contract
			// and a fake used by tests. A real build wires a libclang
			// binding in before calling bnd.Run.
			outPath, err := bnd.Run(configPath, output, bnd.Options{})
			if err != nil {
				return err
			}
			fmt.Println(outPath)
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&output, "output", "o", "", "override the configured output file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
