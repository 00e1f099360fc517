package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ops-dashboard/internal/migrations"
	"ops-dashboard/internal/repository"
	"ops-dashboard/internal/seed"
	"ops-dashboard/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect the Postgres schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{migrations.CommandUp, migrations.CommandDown, migrations.CommandStatus},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		command := migrations.CommandUp
		if len(args) == 1 {
			command = args[0]
		}
		if err := migrations.Run(cmd.Context(), cfg.PostgresDSN(), command); err != nil {
			return fmt.Errorf("migrate %s: %w", command, err)
		}
		log.Info("migrations done", zap.String("command", command))
		return nil
	},
}

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample dataset into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		fixtures, err := loadFixtures(seedFile)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pgPool, err := initPostgres(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer pgPool.Close()
		redisClient, err := initRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		// Seeding goes through the service so the data version moves and
		// running dashboards reload. Events are not published.
		dashboard := service.NewDashboardService(
			repository.NewPostgresRepository(pgPool, log),
			repository.NewRedisRepository(redisClient, cfg.CacheTTL),
			nil, nil, cfg.NatsSubject, log)

		loaded, err := seed.Load(ctx, dashboard, fixtures, log)
		if err != nil {
			return err
		}
		if loaded {
			log.Info("seed data loaded",
				zap.Int("engineers", len(fixtures.Engineers)),
				zap.Int("projects", len(fixtures.Projects)))
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML fixture file (defaults to the built-in sample data)")
}

func loadFixtures(path string) (*seed.Fixtures, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return seed.Parse(data)
}
