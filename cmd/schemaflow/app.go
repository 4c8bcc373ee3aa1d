package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"schemaflow/internal/config"
	"schemaflow/internal/toolchain"
)

// App carries what every command needs; kong binds it into Run.
type App struct {
	ctx        context.Context
	Logger     zerolog.Logger
	ConfigPath string
	Stdout     io.Writer
	Runner     toolchain.Runner
}

func (a *App) Context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// Config loads the configuration file, or the defaults when there is none.
func (a *App) Config() (*config.Config, error) {
	cfg, err := config.Resolve(a.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		a.Logger.Debug().Str("path", cfg.Path).Msg("configuration loaded")
	}
	return cfg, nil
}

func (a *App) Compiler(schema *config.SchemaConfig) *toolchain.Compiler {
	return &toolchain.Compiler{
		Name:    *schema.Compiler,
		Install: *schema.Install,
		Runner:  a.Runner,
		Logger:  a.Logger,
	}
}
