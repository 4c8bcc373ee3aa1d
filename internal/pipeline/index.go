// Package pipeline wires scanning, building, rendering and the external
// tools into the workflows exposed by the CLI.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"

	"schemaflow/internal/diff"
	"schemaflow/internal/errs"
	"schemaflow/internal/index"
	"schemaflow/internal/output"
	"schemaflow/internal/render"
	"schemaflow/internal/validate"
	"schemaflow/internal/walkwalk"
)

// IndexOptions selects how a generated tree is indexed.
type IndexOptions struct {
	Renderer string   // "ts" or "json"; "" means "ts"
	Ext      string   // extension of generated files, e.g. ".ts"; "" means the renderer's
	Name     string   // artifact base name; "" means "index"
	Exclude  []string // base-name prefixes ignored while scanning

	// FollowSymlinks descends into symlinked directories of the generated tree.
	FollowSymlinks bool
}

func (o IndexOptions) withDefaults() IndexOptions {
	if o.Renderer == "" {
		o.Renderer = "ts"
	}
	if o.Name == "" {
		o.Name = "index"
	}
	return o
}

// Planned is one rendered artifact that has not been written yet.
type Planned struct {
	Path string // filesystem path of the artifact
	Rel  string // slash-separated path relative to the indexed root
	Data []byte
}

// Plan scans dir, builds and validates its artifacts and renders them
// without touching the filesystem. The scanned tree is returned as well.
func Plan(dir string, opts IndexOptions) ([]Planned, *walkwalk.Dir, error) {
	opts = opts.withDefaults()
	r, err := render.For(opts.Renderer)
	if err != nil {
		return nil, nil, &errs.ConfigError{Field: "renderer", Err: err}
	}
	ext := opts.Ext
	if ext == "" {
		ext = r.Ext()
	}

	tree, err := walkwalk.ScanTree(dir, walkwalk.Options{
		Ext:            ext,
		Skip:           []string{opts.Name + ext, opts.Name + r.Ext()},
		Exclude:        opts.Exclude,
		FollowSymlinks: opts.FollowSymlinks,
	})
	if err != nil {
		return nil, nil, err
	}

	arts := index.Build(tree)
	if err := validate.Artifacts(arts); err != nil {
		return nil, nil, fmt.Errorf("index %s: %w", dir, err)
	}

	planned := make([]Planned, 0, len(arts))
	for _, a := range arts {
		data, err := r.Render(a)
		if err != nil {
			return nil, nil, fmt.Errorf("render %s: %w", a.Rel, err)
		}
		file := opts.Name + r.Ext()
		planned = append(planned, Planned{
			Path: filepath.Join(a.Dir, file),
			Rel:  path.Join(a.Rel, file),
			Data: data,
		})
	}
	return planned, tree, nil
}

// Index writes one artifact into every directory of dir. Artifacts whose
// content is already up to date are left alone. It returns the number of
// artifacts written.
func Index(ctx context.Context, dir string, opts IndexOptions, logger zerolog.Logger) (int, error) {
	planned, tree, err := Plan(dir, opts)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, p := range planned {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		same, err := output.Unchanged(p.Path, p.Data)
		if err != nil {
			return written, err
		}
		if same {
			logger.Debug().Str("file", p.Rel).Msg("index up to date")
			continue
		}
		if err := output.WriteFile(p.Path, p.Data); err != nil {
			return written, err
		}
		logger.Debug().Str("file", p.Rel).Msg("index written")
		written++
	}

	dirs := 0
	_ = tree.Walk(func(*walkwalk.Dir) error {
		dirs++
		return nil
	})
	logger.Info().
		Str("dir", dir).
		Int("directories", dirs).
		Int("files", tree.Count()).
		Int("written", written).
		Msg("updated schema index")
	return written, nil
}

// Check compares every artifact on disk with a fresh render. Unified diffs
// of stale artifacts are written to w and an *errs.StaleError lists them.
func Check(dir string, opts IndexOptions, w io.Writer) error {
	planned, _, err := Plan(dir, opts)
	if err != nil {
		return err
	}

	var stale []string
	for _, p := range planned {
		cur, err := os.ReadFile(p.Path)
		exists := err == nil
		if err != nil && !os.IsNotExist(err) {
			return errs.IO("read", p.Path, err)
		}
		if d := diff.Unified(p.Rel, cur, p.Data, exists, diff.Options{}); d != "" {
			stale = append(stale, p.Rel)
			if _, err := io.WriteString(w, d); err != nil {
				return err
			}
		}
	}
	if len(stale) > 0 {
		return &errs.StaleError{Paths: stale}
	}
	return nil
}
