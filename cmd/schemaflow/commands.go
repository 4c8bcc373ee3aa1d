package main

import (
	"context"
	"fmt"
	"time"

	"schemaflow/internal/index"
	"schemaflow/internal/pipeline"
	"schemaflow/internal/treeview"
	"schemaflow/internal/validate"
	"schemaflow/internal/walkwalk"
)

type UpdateCommand struct{}

func (r *UpdateCommand) Run(app *App) error {
	cfg, err := app.Config()
	if err != nil {
		return err
	}
	return pipeline.Update(app.Context(), cfg.Schema, app.Compiler(cfg.Schema), app.Logger)
}

type IndexCommand struct {
	Dir      string   `arg:"" help:"Root of the generated schema tree."`
	Renderer string   `help:"Index syntax." enum:"ts,json" default:"ts"`
	Ext      string   `help:"Extension of generated files (defaults to the renderer's)."`
	Name     string   `help:"Index file base name." default:"index"`
	Exclude  []string `help:"Base-name prefixes to ignore." sep:","`
	Check    bool     `help:"Do not write; print diffs and fail when an index is out of date."`
	Follow   bool     `help:"Follow symlinked directories." name:"follow-symlinks"`
}

func (r *IndexCommand) Run(app *App) error {
	opts := pipeline.IndexOptions{
		Renderer: r.Renderer,
		Ext:      r.Ext,
		Name:     r.Name,
		Exclude:  r.Exclude,

		FollowSymlinks: r.Follow,
	}
	if r.Check {
		return pipeline.Check(r.Dir, opts, app.Stdout)
	}
	_, err := pipeline.Index(app.Context(), r.Dir, opts, app.Logger)
	return err
}

type TreeCommand struct {
	Dir  string `arg:"" help:"Root of the generated schema tree."`
	Ext  string `help:"Extension of generated files." default:".ts"`
	Name string `help:"Index file base name, skipped while scanning." default:"index"`
}

func (r *TreeCommand) Run(app *App) error {
	root, err := walkwalk.ScanTree(r.Dir, walkwalk.Options{Ext: r.Ext, Skip: []string{r.Name + r.Ext}})
	if err != nil {
		return err
	}
	arts := index.Build(root)
	if err := validate.Artifacts(arts); err != nil {
		return fmt.Errorf("tree %s: %w", r.Dir, err)
	}
	return treeview.Print(app.Stdout, root, arts)
}

type WatchCommand struct {
	Debounce time.Duration `help:"Quiet period before rebuilding." default:"300ms"`
}

func (r *WatchCommand) Run(app *App) error {
	cfg, err := app.Config()
	if err != nil {
		return err
	}
	compiler := app.Compiler(cfg.Schema)
	update := func(ctx context.Context) error {
		return pipeline.Update(ctx, cfg.Schema, compiler, app.Logger)
	}

	// * initial build, failures here are fatal
	if err := update(app.Context()); err != nil {
		return fmt.Errorf("initial update: %w", err)
	}

	w := &pipeline.Watcher{
		Targets:  cfg.Schema.Targets,
		Debounce: r.Debounce,
		Logger:   app.Logger,
		OnChange: update,
	}
	return w.Run(app.Context())
}

type SetupDBCommand struct {
	Migrator   string `help:"Migration backend: sqlx (CLI) or goose (in-process). Overrides the config."`
	Migrations string `help:"Migrations directory. Overrides the config." type:"path"`
}

func (r *SetupDBCommand) Run(app *App) error {
	cfg, err := app.Config()
	if err != nil {
		return err
	}
	return pipeline.SetupDB(app.Context(), cfg, pipeline.SetupOptions{
		Migrator:   r.Migrator,
		Migrations: r.Migrations,
	}, app.Runner, app.Logger)
}
