package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tierworks/sellertiers/internal/interfaces/cli/migrate"
	"github.com/tierworks/sellertiers/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sellertiers",
		Short: "Seller tier packages, payments and entitlements",
		Long:  `sellertiers sells listing packages to marketplace sellers, verifies their payments and answers entitlement checks.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		newVersionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
