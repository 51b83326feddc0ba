package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/keepvcs/keep/pkg/merkle"
	"github.com/keepvcs/keep/pkg/object"
)

// repoRelPath normalizes a user-supplied path to a slash-separated path
// relative to the worktree root. Absolute and CWD-relative forms are
// both accepted; a path that does not resolve under the root is taken as
// already repo-relative.
func (r *Repository) repoRelPath(p string) (string, error) {
	cleaned := filepath.Clean(p)
	abs := cleaned
	if !filepath.IsAbs(cleaned) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		abs = filepath.Join(cwd, cleaned)
	}
	rel, err := filepath.Rel(r.Root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = cleaned
	}
	rel = filepath.ToSlash(rel)
	if rel == "" {
		rel = "."
	}
	return rel, nil
}

// Add stages the given paths. Files are staged directly; directories are
// expanded recursively with ignore rules applied. A missing path fails
// with an error wrapping object.ErrNotFound.
func (r *Repository) Add(paths ...string) error {
	idx, err := LoadIndex(r.indexPath())
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	ign := merkle.LoadIgnore(r.Root)

	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("add %q: %w", p, err)
		}
		absPath := filepath.Join(r.Root, filepath.FromSlash(relPath))
		info, err := os.Stat(absPath)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("add %q: %w", relPath, object.ErrNotFound)
			}
			return fmt.Errorf("add %q: %w", relPath, err)
		}
		if info.IsDir() {
			if err := r.addDir(idx, absPath, relPath, ign); err != nil {
				return fmt.Errorf("add %q: %w", p, err)
			}
			continue
		}
		if err := idx.Add(r.Root, relPath); err != nil {
			return fmt.Errorf("add: %w", err)
		}
	}

	if err := idx.Save(r.indexPath()); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// addDir stages every file under dir, honoring ignore rules.
func (r *Repository) addDir(idx *Index, dir, relPath string, ign merkle.Ignore) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if ign.Match(name) {
			continue
		}
		childRel := path.Join(relPath, name)
		if entry.IsDir() {
			if err := r.addDir(idx, filepath.Join(dir, name), childRel, ign); err != nil {
				return err
			}
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if err := idx.Add(r.Root, childRel); err != nil {
			return err
		}
	}
	return nil
}

// AddAll stages every file in the worktree and drops entries whose file
// no longer exists.
func (r *Repository) AddAll() error {
	idx, err := LoadIndex(r.indexPath())
	if err != nil {
		return fmt.Errorf("add all: %w", err)
	}
	ign := merkle.LoadIgnore(r.Root)

	seen := make(map[string]bool)
	err = walkFiles(r.Root, ign, func(relPath, absPath string, info os.FileInfo) error {
		seen[relPath] = true
		return idx.Add(r.Root, relPath)
	})
	if err != nil {
		return fmt.Errorf("add all: %w", err)
	}

	for p := range idx.Entries {
		if !seen[p] {
			delete(idx.Entries, p)
		}
	}

	if err := idx.Save(r.indexPath()); err != nil {
		return fmt.Errorf("add all: %w", err)
	}
	return nil
}
