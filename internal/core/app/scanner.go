package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

// ScanTree walks the given roots and returns the source files the include
// and exclude patterns select, sorted and deduplicated. Patterns match
// paths relative to the project root with forward slashes. A root naming a
// file directly is taken as-is, and a directory named as a root is walked
// even when an exclude pattern covers it.
func (a *App) ScanTree(roots []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			rel := a.relPath(path)
			if d.IsDir() {
				if path != root && matchAny(a.exclude, rel+"/") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if matchAny(a.exclude, rel) {
				return nil
			}
			if len(a.include) > 0 && !matchAny(a.include, rel) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (a *App) relPath(path string) string {
	if rel, err := filepath.Rel(a.Paths.ProjectRoot, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func matchAny(globs []glob.Glob, value string) bool {
	for _, g := range globs {
		if g.Match(value) {
			return true
		}
	}
	return false
}
