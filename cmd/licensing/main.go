package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/licensing/internal/interfaces/cli/cron"
	"github.com/orris-inc/licensing/internal/interfaces/cli/migrate"
	"github.com/orris-inc/licensing/internal/interfaces/cli/seed"
	"github.com/orris-inc/licensing/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "licensing",
		Short:        "Licensing - licence allocation and distribution service",
		Long:         `Licensing allocates licence pools to organisations, lets distributors hand them out to learners and enrols those learners on a schedule.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		cron.NewCommand(),
		seed.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
