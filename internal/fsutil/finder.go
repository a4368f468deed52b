// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindFilesBySuffix recursively searches rootPath for regular files whose
// name ends with suffix and returns their paths in walk order. Directories
// and symlinks below the root are never returned, even when their names
// match. A symlinked rootPath is followed; returned paths keep the caller's
// spelling of rootPath.
//
// Errors on the root abort the search. Errors below it are passed to onSkip
// and the offending subtree is skipped; a nil onSkip aborts on them too.
func FindFilesBySuffix(rootPath string, suffix string, onSkip func(path string, err error)) ([]string, error) {
	if suffix == "" {
		panic("suffix must not be empty")
	}

	walkRoot, err := filepath.EvalSymlinks(rootPath)
	if err != nil {
		return nil, err
	}
	rebase := func(path string) string {
		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return path
		}
		return filepath.Join(rootPath, rel)
	}

	files := []string{}
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == walkRoot || onSkip == nil {
				return err
			}
			onSkip(rebase(path), err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), suffix) {
			files = append(files, rebase(path))
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
