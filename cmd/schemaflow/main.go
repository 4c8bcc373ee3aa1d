// Package main provides the schemaflow CLI. It regenerates network schema
// bindings with an external compiler, maintains the index files that
// re-export them with stable numeric ids, and provisions the application
// database.
//
// Commands:
//   - update   : clean, compile and index every configured schema target
//   - index    : (re)write the index files of an already generated tree
//   - tree     : print a generated tree with the ids it would receive
//   - watch    : rerun update whenever a schema source changes
//   - setup-db : create the database and apply migrations
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"schemaflow/internal/meta"
	"schemaflow/internal/toolchain"
)

type Command struct {
	Version   kong.VersionFlag `help:"Print version and exit."`
	Config    string           `help:"Configuration file (TOML or YAML). Searched for as config.toml when omitted." short:"c" type:"path"`
	LogLevel  string           `help:"Log level." enum:"debug,info,warn,error" default:"info"`
	LogFormat string           `help:"Log output format." enum:"console,json" default:"console"`

	Update  UpdateCommand  `cmd:"update" help:"Clean, compile and index every configured schema target."`
	Index   IndexCommand   `cmd:"index" help:"Write the index files of a generated schema tree."`
	Tree    TreeCommand    `cmd:"tree" help:"Print a generated schema tree with its ids."`
	Watch   WatchCommand   `cmd:"watch" help:"Rerun update when schema sources change."`
	SetupDB SetupDBCommand `cmd:"setup-db" name:"setup-db" help:"Create the database and apply migrations."`
}

func main() {
	command := new(Command)
	kctx := kong.Parse(
		command,
		kong.Name("schemaflow"),
		kong.Description("Schema bindings, index files and database setup"),
		kong.UsageOnError(),
		kong.Vars{"version": meta.Detect().String()},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	logger := newLogger(os.Stderr, command.LogLevel, command.LogFormat)

	err := kctx.Run(&App{
		ctx:        ctx,
		Logger:     logger,
		ConfigPath: command.Config,
		Stdout:     os.Stdout,
		Runner:     &toolchain.ExecRunner{Logger: logger},
	})
	stop()
	if err != nil {
		logger.Error().Err(err).Msg(kctx.Command() + " failed")
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if format == "json" {
		return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}
