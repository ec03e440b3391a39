package cron

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orris-inc/licensing/internal/infrastructure/database"
	"github.com/orris-inc/licensing/internal/interfaces/cli"
	httpRouter "github.com/orris-inc/licensing/internal/interfaces/http"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

var opts cli.Options

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cron",
		Short: "Run one reconciliation pass",
		Long: `Import staged rosters and enrol the licences of new distributions, then exit.
A run already in progress elsewhere makes this a no-op.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&opts.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, err := cli.Bootstrap(&opts)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	container, err := httpRouter.NewContainer(database.Get(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire services: %w", err)
	}
	// the dispatcher delivers notifications raised by the run; Shutdown drains it
	if err := container.Start(false); err != nil {
		container.Shutdown()
		return err
	}
	defer container.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container.Scheduler().RunReconciliation(ctx, container.Reconciliation())
	return nil
}
