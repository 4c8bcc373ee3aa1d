package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bsthun/gut"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"schemaflow/internal/config"
	"schemaflow/internal/errs"
	"schemaflow/internal/toolchain"
)

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("// generated\n"), 0o644))
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestIndexNestedTree(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.ts", "sub/b.ts")

	n, err := Index(context.Background(), root, IndexOptions{}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Equal(t, `export { B } from "./b";
export const enum Id {
    B = 0,
}
`, read(t, filepath.Join(root, "sub", "index.ts")))

	require.Equal(t, `import * as Sub from "./sub";
export * as Sub from "./sub";
export { A } from "./a";
export const enum Id {
    A = 1,
}
export const ID_MAX = 2;
export const Name = Object.freeze({
    [Sub.Id.B]: "B",
    [Id.A]: "A",
});
export type Name = typeof Name;
`, read(t, filepath.Join(root, "index.ts")))
}

func TestIndexIdempotent(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "create.ts", "initial.ts", "action/move.ts", "action/player_stop.ts")

	_, err := Index(context.Background(), root, IndexOptions{}, zerolog.Nop())
	require.NoError(t, err)
	first := read(t, filepath.Join(root, "index.ts"))
	firstChild := read(t, filepath.Join(root, "action", "index.ts"))

	n, err := Index(context.Background(), root, IndexOptions{}, zerolog.Nop())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, first, read(t, filepath.Join(root, "index.ts")))
	require.Equal(t, firstChild, read(t, filepath.Join(root, "action", "index.ts")))
	require.NotContains(t, first, "Index")
	require.Contains(t, firstChild, "PlayerStop = 1,")
}

func TestIndexEmptyTree(t *testing.T) {
	root := t.TempDir()
	_, err := Index(context.Background(), root, IndexOptions{}, zerolog.Nop())
	require.NoError(t, err)

	out := read(t, filepath.Join(root, "index.ts"))
	require.Contains(t, out, "export const enum Id {\n}\n")
	require.Contains(t, out, "export const ID_MAX = 0;")
	require.Contains(t, out, "export const Name = Object.freeze({\n});")
}

func TestIndexJSONRenderer(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.ts", "index.ts")

	_, err := Index(context.Background(), root, IndexOptions{Renderer: "json", Ext: ".ts"}, zerolog.Nop())
	require.NoError(t, err)
	out := read(t, filepath.Join(root, "index.json"))
	require.Contains(t, out, `"idMax": 1`)
	require.Contains(t, out, `"qualified": "Id.A"`)
}

func TestIndexMissingDir(t *testing.T) {
	_, err := Index(context.Background(), filepath.Join(t.TempDir(), "missing"), IndexOptions{}, zerolog.Nop())
	var ioErr *errs.IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestIndexCollision(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "player_move.ts", "player-move.ts")
	_, err := Index(context.Background(), root, IndexOptions{}, zerolog.Nop())
	require.ErrorContains(t, err, "PlayerMove")
	_, statErr := os.Stat(filepath.Join(root, "index.ts"))
	require.True(t, os.IsNotExist(statErr), "nothing is written when validation fails")
}

func TestCheck(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.ts")

	var out bytes.Buffer
	err := Check(root, IndexOptions{}, &out)
	var stale *errs.StaleError
	require.ErrorAs(t, err, &stale)
	require.Equal(t, []string{"index.ts"}, stale.Paths)
	require.Contains(t, out.String(), "--- /dev/null")

	_, err = Index(context.Background(), root, IndexOptions{}, zerolog.Nop())
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, Check(root, IndexOptions{}, &out))
	require.Empty(t, out.String())

	touch(t, root, "b.ts")
	err = Check(root, IndexOptions{}, &out)
	require.ErrorAs(t, err, &stale)
	require.Contains(t, out.String(), `+export { B } from "./b";`)
}

// fakeCompiler mirrors every source file of input as a .ts file in output.
type fakeCompiler struct {
	ensureErr error
	calls     []string
}

func (f *fakeCompiler) Ensure(context.Context) error {
	f.calls = append(f.calls, "ensure")
	return f.ensureErr
}

func (f *fakeCompiler) Compile(_ context.Context, language, input, output string) error {
	f.calls = append(f.calls, "compile "+language)
	return filepath.WalkDir(input, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".pkt" {
			return err
		}
		rel, err := filepath.Rel(input, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(output, strings.TrimSuffix(rel, ".pkt")+".ts")
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, []byte("export class X {}\n"), 0o644)
	})
}

func schemaTarget(dir string) *config.SchemaConfig {
	return &config.SchemaConfig{
		Compiler: gut.Ptr("packetc"),
		Targets: []*config.Target{{
			Language:        "ts",
			Input:           dir,
			Output:          dir,
			Renderer:        gut.Ptr("ts"),
			Extension:       gut.Ptr(".ts"),
			SourceExtension: gut.Ptr(".pkt"),
			Index:           gut.Ptr("index"),
		}},
	}
}

func TestUpdate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "create.pkt", "action/move.pkt", "removed.ts")

	fc := &fakeCompiler{}
	require.NoError(t, Update(context.Background(), schemaTarget(dir), fc, zerolog.Nop()))
	require.Equal(t, []string{"ensure", "compile ts"}, fc.calls)

	_, err := os.Stat(filepath.Join(dir, "removed.ts"))
	require.True(t, os.IsNotExist(err), "old generated files are deleted")
	_, err = os.Stat(filepath.Join(dir, "create.pkt"))
	require.NoError(t, err, "sources are kept")

	root := read(t, filepath.Join(dir, "index.ts"))
	require.Contains(t, root, "export const ID_MAX = 2;")
	require.Contains(t, root, "[Action.Id.Move]: \"Move\",")
	require.NotContains(t, root, "Removed")
}

func TestUpdateStopsWhenCompilerMissing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "old.ts")

	fc := &fakeCompiler{ensureErr: &errs.ToolNotFoundError{Tool: "packetc"}}
	err := Update(context.Background(), schemaTarget(dir), fc, zerolog.Nop())
	var notFound *errs.ToolNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []string{"ensure"}, fc.calls)
	_, err = os.Stat(filepath.Join(dir, "old.ts"))
	require.NoError(t, err, "nothing is cleaned before the compiler is available")
}

type recordRunner struct {
	calls []toolchain.Command
}

func (r *recordRunner) Run(_ context.Context, c toolchain.Command) error {
	r.calls = append(r.calls, c)
	if c.Name != "sqlx" {
		return &errs.ToolNotFoundError{Tool: c.Name, Err: exec.ErrNotFound}
	}
	return nil
}

func TestSetupDB(t *testing.T) {
	cfg := &config.Config{Database: &config.DatabaseConfig{
		User: "postgres", Secret: gut.Ptr("pw"), Host: "db", Port: 5432, Name: "game",
		Scheme: gut.Ptr("postgresql"), Migrator: gut.Ptr("sqlx"), Migrations: gut.Ptr(""),
	}}
	r := &recordRunner{}
	require.NoError(t, SetupDB(context.Background(), cfg, SetupOptions{Migrations: "migrations"}, r, zerolog.Nop()))
	require.Len(t, r.calls, 2)
	require.Equal(t, "sqlx --database-url=postgresql://postgres:pw@db:5432/game database setup --source migrations", r.calls[1].String())
}

func TestSetupDBMissingTable(t *testing.T) {
	err := SetupDB(context.Background(), config.Default(), SetupOptions{}, &recordRunner{}, zerolog.Nop())
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "database", cfgErr.Field)
}

func TestWatchRebuildsOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "nested/keep.pkt")

	var runs atomic.Int32
	w := &Watcher{
		Targets:  schemaTarget(dir).Targets,
		Debounce: 20 * time.Millisecond,
		Logger:   zerolog.Nop(),
		OnChange: func(context.Context) error {
			runs.Add(1)
			return errors.New("compile failed")
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// generated output alone never triggers a rebuild
	time.Sleep(50 * time.Millisecond)
	touch(t, dir, "nested/out.ts")
	time.Sleep(100 * time.Millisecond)
	require.Zero(t, runs.Load())

	require.Eventually(t, func() bool {
		touch(t, dir, "nested/keep.pkt")
		return runs.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchRelevant(t *testing.T) {
	dir := t.TempDir()
	tgt := schemaTarget(dir).Targets[0]
	tgt.SourceExtension = gut.Ptr("")
	w := &Watcher{Targets: []*config.Target{tgt}}

	require.True(t, w.relevant(fsEvent(filepath.Join(dir, "move.pkt"))))
	require.False(t, w.relevant(fsEvent(filepath.Join(dir, "move.ts"))))
	require.False(t, w.relevant(fsEvent(filepath.Join(dir, "index.json"))))
	require.False(t, w.relevant(fsEvent(filepath.Join(dir, ".move.pkt.swp"))))
	require.False(t, w.relevant(fsEvent(filepath.Join(filepath.Dir(dir), "elsewhere.pkt"))))
}

func fsEvent(name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: fsnotify.Write}
}
