package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orris-inc/licensing/internal/infrastructure/database"
	"github.com/orris-inc/licensing/internal/infrastructure/migration"
	"github.com/orris-inc/licensing/internal/interfaces/cli"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

var (
	opts       cli.Options
	name       string
	scriptsDir string
	steps      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, and creating new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations. SQLite and development databases follow the models; others run the SQL scripts.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of SQL migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the applied and pending SQL migrations.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create a new SQL migration file with the specified name.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.Flags().StringVar(&scriptsDir, "dir", "./internal/infrastructure/migration/scripts", "Directory of the SQL scripts")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, log, err := cli.Bootstrap(&opts)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	log.Infow("running up migrations", "environment", opts.Env, "driver", cfg.Database.Driver)

	manager := migration.NewManager(cfg.Database.Driver, opts.Env, log)
	if err := manager.Migrate(database.Get()); err != nil {
		log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	cfg, log, err := cli.Bootstrap(&opts)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	if cfg.Database.Driver == database.DriverSQLite {
		return fmt.Errorf("down migration is only supported for %s", database.DriverMySQL)
	}

	log.Infow("running down migrations", "environment", opts.Env, "steps", steps)

	if err := migration.NewGooseStrategy(log).MigrateDown(database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := cli.Bootstrap(&opts)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	if cfg.Database.Driver == database.DriverSQLite {
		fmt.Printf("\nMigration Status:\n  Environment: %s\n  Driver:      sqlite (schema follows the models)\n", opts.Env)
		return nil
	}

	strategy := migration.NewGooseStrategy(log)
	versions, err := strategy.Versions()
	if err != nil {
		return err
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Environment:     %s\n", opts.Env)
	if len(versions) > 0 {
		fmt.Printf("  Latest Script:   %d\n", versions[len(versions)-1])
	}

	if err := strategy.Status(database.Get()); err != nil {
		log.Errorw("failed to get detailed status", "error", err)
		return fmt.Errorf("failed to get detailed status: %w", err)
	}
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger()
	log.Infow("creating new migration", "name", name)

	if err := migration.Create(scriptsDir, name, log); err != nil {
		log.Errorw("failed to create migration", "error", err)
		return err
	}

	fmt.Printf("Migration '%s' created in %s\n", name, scriptsDir)
	return nil
}
