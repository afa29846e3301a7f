package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stylora-app/stylora/internal/interfaces/cli/migrate"
	"github.com/stylora-app/stylora/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stylora",
		Short: "Stylora - subscription billing and entitlement service",
		Long:  `Stylora reconciles subscription purchases from payment providers, tracks metered feature usage, and answers entitlement checks for the rest of the platform.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
