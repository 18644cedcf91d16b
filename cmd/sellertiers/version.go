package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tierworks/sellertiers/internal/shared/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "sellertiers %s (commit %s)\n", info.Version, info.Commit)
		},
	}
}
