// Package walkwalk provides a deterministic, filterable directory scanner
// that turns a tree of generated schema bindings into an in-memory tree of
// namespaces and files.
package walkwalk

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"schemaflow/internal/errs"
	"schemaflow/internal/sortutil"
)

// Dir is one directory of the scanned tree. Dirs and Files are sorted
// lexicographically; Files holds base names with the extension removed.
type Dir struct {
	Name  string // base name of the directory
	Rel   string // root-relative path with forward slashes ("" for the root)
	Abs   string // absolute filesystem path
	Dirs  []*Dir
	Files []string
}

// Options selects which entries of the tree take part in the scan.
type Options struct {
	// Ext is the generated file extension including the dot (e.g. ".ts").
	// Matching is case-insensitive. Empty means every regular file.
	Ext string
	// Skip lists exact file names to ignore, typically the index artifact itself.
	Skip []string
	// Exclude holds base-name prefixes of files and directories to ignore.
	Exclude []string
	// FollowSymlinks descends into symlinked directories and reads symlinked files.
	FollowSymlinks bool
}

type walkState struct {
	opt  Options
	root string
	skip map[string]struct{}
}

// ScanTree reads root recursively and returns its directory tree.
// A missing or unreadable directory aborts the scan with an errs.IOError.
func ScanTree(root string, opt Options) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errs.IO("resolve", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errs.IO("stat", abs, err)
	}
	if !info.IsDir() {
		return nil, errs.IO("scan", abs, fmt.Errorf("not a directory"))
	}
	ws := &walkState{opt: opt, root: abs, skip: make(map[string]struct{}, len(opt.Skip))}
	for _, s := range opt.Skip {
		if s != "" {
			ws.skip[s] = struct{}{}
		}
	}
	return ws.scan(abs)
}

func (ws *walkState) scan(path string) (*Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errs.IO("read dir", path, err)
	}
	d := &Dir{Name: filepath.Base(path), Rel: ws.relative(path), Abs: path}

	var dirNames, fileNames []string
	for _, e := range entries {
		name := e.Name()
		if hasExcludedPrefix(name, ws.opt.Exclude) {
			continue
		}
		isDir, isFile, err := ws.classify(path, e)
		if err != nil {
			return nil, err
		}
		switch {
		case isDir:
			dirNames = append(dirNames, name)
		case isFile && ws.matches(name):
			fileNames = append(fileNames, strings.TrimSuffix(name, filepath.Ext(name)))
		}
	}

	for _, name := range sortutil.StablePathSort(dirNames) {
		child, err := ws.scan(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		d.Dirs = append(d.Dirs, child)
	}
	d.Files = sortutil.StablePathSort(fileNames)
	return d, nil
}

// classify resolves an entry to directory or regular file, honoring FollowSymlinks.
func (ws *walkState) classify(parent string, e fs.DirEntry) (isDir, isFile bool, err error) {
	if !isSymlink(e) {
		return e.IsDir(), e.Type().IsRegular(), nil
	}
	if !ws.opt.FollowSymlinks {
		return false, false, nil
	}
	full := filepath.Join(parent, e.Name())
	info, err := os.Stat(full)
	if err != nil {
		return false, false, errs.IO("stat", full, err)
	}
	return info.IsDir(), info.Mode().IsRegular(), nil
}

func (ws *walkState) matches(name string) bool {
	if _, skip := ws.skip[name]; skip {
		return false
	}
	if ws.opt.Ext == "" {
		return true
	}
	return strings.EqualFold(filepath.Ext(name), ws.opt.Ext)
}

func (ws *walkState) relative(path string) string {
	rel, err := filepath.Rel(ws.root, path)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// Walk visits d and its descendants in pre-order.
func (d *Dir) Walk(fn func(*Dir) error) error {
	if err := fn(d); err != nil {
		return err
	}
	for _, c := range d.Dirs {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of files in d and all of its descendants.
func (d *Dir) Count() int {
	n := len(d.Files)
	for _, c := range d.Dirs {
		n += c.Count()
	}
	return n
}

// isSymlink reports whether the DirEntry is a symlink (file or directory).
func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

// hasExcludedPrefix reports whether base begins with any of the exclude prefixes.
func hasExcludedPrefix(base string, exclude []string) bool {
	for _, k := range exclude {
		if k != "" && strings.HasPrefix(base, k) {
			return true
		}
	}
	return false
}
