package toolchain

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"schemaflow/internal/config"
	"schemaflow/internal/errs"
)

// SqlxInstallHint is shown when the sqlx CLI is not installed.
const SqlxInstallHint = "Please install the sqlx CLI. https://github.com/launchbadge/sqlx/tree/master/sqlx-cli"

// Migrator creates the configured database and applies its migrations.
type Migrator interface {
	Setup(ctx context.Context, db *config.DatabaseConfig) error
}

// NewMigrator returns the migrator selected by name ("sqlx" or "goose").
func NewMigrator(name string, r Runner, logger zerolog.Logger) (Migrator, error) {
	switch name {
	case "", "sqlx":
		return &SqlxMigrator{Runner: r, Logger: logger}, nil
	case "goose":
		return &GooseMigrator{Logger: logger}, nil
	default:
		return nil, &errs.ConfigError{Field: "database.migrator", Msg: fmt.Sprintf("unknown migrator %q", name)}
	}
}

// SqlxMigrator shells out to `sqlx database setup`.
type SqlxMigrator struct {
	Runner Runner
	Logger zerolog.Logger
}

func (m *SqlxMigrator) Setup(ctx context.Context, db *config.DatabaseConfig) error {
	ok, err := Probe(ctx, m.Runner, Command{Name: "sqlx", Args: []string{"--version"}})
	if err != nil {
		return err
	}
	if !ok {
		return &errs.ToolNotFoundError{Tool: "sqlx", Hint: SqlxInstallHint}
	}

	u := db.URL()
	m.Logger.Info().Str("url", u.Redacted()).Msg("setting up database")
	args := []string{"--database-url=" + u.String(), "database", "setup"}
	if db.Migrations != nil && *db.Migrations != "" {
		args = append(args, "--source", *db.Migrations)
	}
	return m.Runner.Run(ctx, Command{Name: "sqlx", Args: args})
}

// GooseMigrator creates the database over lib/pq and applies migrations
// in-process with goose, for machines without the sqlx CLI.
type GooseMigrator struct {
	Logger zerolog.Logger
	// Maintenance is the database connected to while creating the target; defaults to "postgres".
	Maintenance string
}

func (m *GooseMigrator) Setup(ctx context.Context, db *config.DatabaseConfig) error {
	if db.Migrations == nil || *db.Migrations == "" {
		return &errs.ConfigError{Field: "database.migrations", Msg: "required by the goose migrator"}
	}
	dir := *db.Migrations
	if info, err := os.Stat(dir); err != nil {
		return errs.IO("stat", dir, err)
	} else if !info.IsDir() {
		return errs.IO("stat", dir, fmt.Errorf("not a directory"))
	}

	maintenance := m.Maintenance
	if maintenance == "" {
		maintenance = "postgres"
	}
	m.Logger.Info().Str("url", db.URL().Redacted()).Msg("setting up database")

	if err := m.create(ctx, db, maintenance); err != nil {
		return err
	}

	conn, err := sql.Open("postgres", db.URL().String())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	goose.SetLogger(gooseLogger{m.Logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, conn, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (m *GooseMigrator) create(ctx context.Context, db *config.DatabaseConfig, maintenance string) error {
	server, err := sql.Open("postgres", db.ServerURL(maintenance).String())
	if err != nil {
		return fmt.Errorf("open server: %w", err)
	}
	defer server.Close()

	var exists bool
	row := server.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", db.Name)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("check database %s: %w", db.Name, err)
	}
	if exists {
		m.Logger.Info().Str("database", db.Name).Msg("database already exists")
		return nil
	}
	if _, err := server.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(db.Name)); err != nil {
		return fmt.Errorf("create database %s: %w", db.Name, err)
	}
	m.Logger.Info().Str("database", db.Name).Msg("database created")
	return nil
}

// gooseLogger routes goose's progress output through zerolog.
type gooseLogger struct {
	logger zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info().Msg(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

// Fatalf is part of goose.Logger; it logs without exiting so the error
// returned by goose reaches the caller.
func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error().Msg(strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}
