// shbindis - PICA200 shader binary disassembler
// Prints the program listing and entry-point tables of a DVLB file
package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/gogpu/shbin"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "shbindis [flags] <file.shbin>",
		Short: "Disassemble a PICA200 shader binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := shbin.Decode(data)
			if err != nil {
				return err
			}
			if dump {
				cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
				cfg.Fdump(cmd.OutOrStdout(), c)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), shbin.Listing(c))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the decoded container structure")
	return cmd
}
