package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"

	"interviews/backend/internal/config"
	"interviews/backend/internal/store/postgres"
	"interviews/backend/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back, or inspect the embedded SQL migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	direction := "up"
	if len(args) == 1 {
		direction = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		return err
	}
	defer postgres.Close(db)

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	switch direction {
	case "status":
		ms, err := migrator.MigrationsWithStatus(ctx)
		if err != nil {
			return err
		}
		log.Info("migration status",
			slog.Int("applied", len(ms.Applied())),
			slog.Int("pending", len(ms.Unapplied())),
			slog.String("last_group", ms.LastGroup().String()),
		)
		for _, m := range ms.Unapplied() {
			fmt.Fprintln(cmd.OutOrStdout(), "pending:", m.Name)
		}
		return nil
	}

	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}
	defer func() {
		if err := migrator.Unlock(context.Background()); err != nil {
			log.Warn("unlock migrations failed", slog.Any("err", err))
		}
	}()

	var group *migrate.MigrationGroup
	if direction == "down" {
		group, err = migrator.Rollback(ctx)
	} else {
		group, err = migrator.Migrate(ctx)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	if group.IsZero() {
		log.Info("nothing to do", slog.String("direction", direction))
		return nil
	}
	log.Info("migrations applied", slog.String("direction", direction), slog.String("group", group.String()))
	return nil
}
