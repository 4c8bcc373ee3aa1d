// Package output owns every filesystem mutation made by schemaflow:
// atomic artifact writes and the destructive clean that precedes compilation.
//
// Conventions:
//   - Writes create missing parent directories first.
//   - Writes go to a temporary sibling file that is renamed into place, so a
//     reader never observes a partially written artifact.
//   - Clean only removes regular files with the generated extension; it
//     never removes directories or schema sources.
package output

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"schemaflow/internal/errs"
	"schemaflow/internal/sortutil"
)

// WriteFile writes data to path atomically, creating parent directories.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.IO("mkdir", dir, err)
	}
	tmp, f, err := createTempFile(dir, filepath.Base(path))
	if err != nil {
		return errs.IO("create", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errs.IO("write", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errs.IO("sync", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return errs.IO("close", path, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return errs.IO("chmod", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errs.IO("rename", path, err)
	}
	return nil
}

// Unchanged reports whether path already holds exactly data.
// A missing file is reported as changed.
func Unchanged(path string, data []byte) (bool, error) {
	cur, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errs.IO("read", path, err)
	}
	return bytes.Equal(cur, data), nil
}

// Clean removes every regular file under root whose extension matches ext
// (case-insensitive) and returns the removed paths in sorted order.
// A missing root is not an error: there is nothing to clean yet.
func Clean(root, ext string) ([]string, error) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	var matched []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), ext) {
			matched = append(matched, path)
		}
		return nil
	})
	if err != nil {
		return nil, errs.IO("walk", root, err)
	}
	removed := sortutil.StablePathSort(matched)
	for _, p := range removed {
		if err := os.Remove(p); err != nil {
			return nil, errs.IO("remove", p, err)
		}
	}
	return removed, nil
}

// createTempFile creates a temporary file in the target directory with a
// name derived from base (".tmp-<base>-<rand>"), returning its path and an
// *os.File ready for writing. Caller is responsible for closing it.
func createTempFile(dir, base string) (string, *os.File, error) {
	f, err := os.CreateTemp(dir, ".tmp-"+base+"-")
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}
