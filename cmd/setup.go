package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/cinehint/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the session database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Database
	r.logger.Info("initializing database", "path", cfg.Path)

	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if !cmd.Bool("status") {
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	applied, total, err := shared.MigrationStatus(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", cfg.Path)
	return r.writePlain("✓ Database %s: %d/%d migrations applied\n", cfg.Path, applied, total)
}

// SetupConfig writes the embedded example config so it can be edited.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		r.logger.Info("config file already exists", "path", path)
		return r.writePlain("Config already exists at %s\n", path)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	if _, err := shared.LoadConfig(path); err != nil {
		return fmt.Errorf("created config does not parse: %w", err)
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set google.client_id in %s (or %s in .env)\n", path, shared.EnvGoogleClientID)
	r.writePlain("2. Run 'cinehint setup database' and then 'cinehint auth login'\n")
	return nil
}
