package seed

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/orris-inc/licensing/internal/infrastructure/auth"
	"github.com/orris-inc/licensing/internal/infrastructure/database"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/seeds"
	"github.com/orris-inc/licensing/internal/interfaces/cli"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

var (
	opts     cli.Options
	filePath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load courses, programs, organisations and users from a yaml file",
		Long: `Load platform fixtures from a yaml file. Existing items (same kind and name)
and users (same username) are left untouched.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&opts.Env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Seed file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	file, err := seeds.ParseCatalog(data)
	if err != nil {
		return err
	}

	cfg, log, err := cli.Bootstrap(&opts)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.Password.BcryptCost)
	result, err := seeds.NewSeeder(database.Get(), hasher, log).Seed(file)
	if err != nil {
		log.Errorw("seed failed", "file", filePath, "error", err)
		return err
	}

	fmt.Printf("Seeded %d catalog items and %d users (%d already present)\n",
		result.ItemsCreated, result.UsersCreated, result.UsersSkipped)

	usernames := make([]string, 0, len(result.Generated))
	for username := range result.Generated {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)
	for _, username := range usernames {
		fmt.Printf("  generated password for %s: %s\n", username, result.Generated[username])
	}
	return nil
}
