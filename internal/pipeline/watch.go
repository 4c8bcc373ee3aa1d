package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"schemaflow/internal/config"
)

// DefaultDebounce groups bursts of editor writes into a single rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reruns OnChange whenever a schema source below one of the target
// inputs changes.
type Watcher struct {
	Targets  []*config.Target
	Debounce time.Duration
	Logger   zerolog.Logger
	OnChange func(ctx context.Context) error
}

// Run watches until ctx is cancelled. Failures of OnChange are logged and
// watching continues; only watcher setup errors are returned.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, t := range w.Targets {
		if err := addRecursive(watcher, t.Input); err != nil {
			return err
		}
		w.Logger.Info().Str("dir", t.Input).Msg("watching schema sources")
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	// nil until a relevant change arrives; a nil channel never fires
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						w.Logger.Error().Err(err).Str("dir", event.Name).Msg("watch new directory failed")
					}
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			w.Logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("schema source changed")
			fire = time.After(debounce)

		case <-fire:
			fire = nil
			start := time.Now()
			if err := w.OnChange(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.Logger.Error().Err(err).Msg("rebuild failed")
				continue
			}
			w.Logger.Info().Dur("took", time.Since(start)).Msg("rebuild finished")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error().Err(err).Msg("file watcher error")
		}
	}
}

// relevant reports whether event touches a schema source of any target.
// Generated files and index artifacts never trigger a rebuild, since the
// rebuild itself writes them.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	ext := filepath.Ext(base)
	for _, t := range w.Targets {
		if !within(t.Input, event.Name) {
			continue
		}
		if src := *t.SourceExtension; src != "" {
			if strings.EqualFold(ext, src) {
				return true
			}
			continue
		}
		if strings.EqualFold(ext, *t.Extension) || strings.EqualFold(ext, ".json") {
			continue
		}
		return true
	}
	return false
}

func within(dir, name string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absName, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absName)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
