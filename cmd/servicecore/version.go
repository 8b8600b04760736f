package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/servicecore/version"
)

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.Short())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version")
	return cmd
}
