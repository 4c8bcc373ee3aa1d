package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"schemaflow/internal/config"
	"schemaflow/internal/toolchain"
)

// SetupOptions overrides the [database] table from the command line.
type SetupOptions struct {
	Migrator   string
	Migrations string
}

// SetupDB creates the configured database and applies its migrations.
func SetupDB(ctx context.Context, cfg *config.Config, opts SetupOptions, r toolchain.Runner, logger zerolog.Logger) error {
	db, err := cfg.RequireDatabase()
	if err != nil {
		return err
	}
	migrator := *db.Migrator
	if opts.Migrator != "" {
		migrator = opts.Migrator
	}
	if opts.Migrations != "" {
		db.Migrations = &opts.Migrations
	}

	m, err := toolchain.NewMigrator(migrator, r, logger)
	if err != nil {
		return err
	}
	logger.Debug().Str("migrator", migrator).Msg("migrator selected")
	return m.Setup(ctx, db)
}
