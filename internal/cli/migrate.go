package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"gitquiz-service/internal/catalog"
	"gitquiz-service/internal/config"
	pgstore "gitquiz-service/internal/infra/postgres"
	pgmigrations "gitquiz-service/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies database migrations and seeds the default catalog.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return runMigrationsWithConfig(ctx, cfg)
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
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

	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}

	if err := seedCatalog(ctx, db); err != nil {
		return err
	}
	log.Printf("migrations applied")
	return nil
}

// seedCatalog inserts the built-in catalog if no catalog row exists yet; an
// operator-managed catalog is never overwritten.
func seedCatalog(ctx context.Context, db *bun.DB) error {
	data, err := json.Marshal(catalog.Default())
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO catalogs (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO NOTHING`,
		pgstore.DefaultCatalogID, string(data))
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}
