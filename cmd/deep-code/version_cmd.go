package main

import (
	"github.com/spf13/cobra"

	"github.com/deepesdl/deep-code/internal/output"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version information",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			output.FromContext(cmd.Context()).Println(versionString())
		},
	}
}
