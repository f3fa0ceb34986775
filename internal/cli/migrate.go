package cli

import (
	"context"
	"database/sql"
	"fmt"

	"survey-service/internal/config"
	pgmigrations "survey-service/internal/infra/postgres/migrations"
	"survey-service/internal/log"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, rollback)
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration group instead")
	return cmd
}

func runMigrations(ctx context.Context, configPath string, rollback bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg, rollback)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, rollback bool) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	if rollback {
		group, err := migrator.Rollback(ctx)
		if err != nil {
			return err
		}
		log.Infof("rolled back %s", group)
		return nil
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations to apply")
		return nil
	}
	log.Infof("migrations applied: %s", group)
	return nil
}
