// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/go-newsletter/internal/config"
	"codeberg.org/oliverandrich/go-newsletter/internal/database"
	"github.com/urfave/cli/v3"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: withDatabase(database.RunMigrations),
			},
			{
				Name:   "down",
				Usage:  "Roll back the most recent migration",
				Action: withDatabase(database.MigrateDown),
			},
			{
				Name:   "reset",
				Usage:  "Roll back every migration",
				Action: withDatabase(database.MigrateReset),
			},
		},
	}
}

// withDatabase opens the configured database and runs fn against it.
func withDatabase(fn func(*sql.DB, database.Dialect) error) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		cfg := config.NewFromCLI(cmd)
		if cfg.Database.URL == "" {
			return fmt.Errorf("%w: DATABASE_URL", config.ErrConfigMissing)
		}

		db, err := database.Open(cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = db.Close() }()

		if err := fn(db.DB, database.DialectFor(cfg.Database.URL)); err != nil {
			return err
		}
		slog.Info("migrations done", "command", cmd.Name)
		return nil
	}
}
