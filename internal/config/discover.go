package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"schemaflow/internal/errs"
)

// skipDirs are never descended into while searching for a config file.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	"target":       {},
	"vendor":       {},
}

// Find searches start and the directories below it for a file called name
// and returns the first match, or "" when there is none. start itself is
// checked before anything else; hidden directories are skipped.
func Find(start, name string) (string, error) {
	direct := filepath.Join(start, name)
	if info, err := os.Stat(direct); err == nil && info.Mode().IsRegular() {
		return direct, nil
	}

	var found string
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == start {
				return err
			}
			// unreadable subtrees do not stop the search
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == start {
				return nil
			}
			if _, skip := skipDirs[d.Name()]; skip || strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == name && d.Type().IsRegular() {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.SkipAll) {
		return "", errs.IO("find "+name, start, err)
	}
	return found, nil
}
