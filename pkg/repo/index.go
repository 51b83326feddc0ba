package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/keepvcs/keep/pkg/merkle"
	"github.com/keepvcs/keep/pkg/object"
)

const indexVersion = 1

// IndexEntry records one staged file.
type IndexEntry struct {
	Path     string      `json:"path"`
	Mode     string      `json:"mode"`
	BlobHash object.Hash `json:"hash"`
	Size     int64       `json:"size"`
	ModTime  int64       `json:"mtime"` // UnixNano
	Stage    int         `json:"stage"` // always 0, reserved for conflicts
}

// Index is the staging area, persisted as JSON at .metadata/index.
// Entries are keyed by repo-relative, slash-separated path.
type Index struct {
	Version int                    `json:"version"`
	Entries map[string]*IndexEntry `json:"entries"`
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{Version: indexVersion, Entries: make(map[string]*IndexEntry)}
}

func (r *Repository) indexPath() string {
	return filepath.Join(r.MetaDir, "index")
}

// LoadIndex reads the index at path. A missing, unparseable, or
// wrong-version file yields an empty index; the next Save repairs it.
// Only real IO failures are errors.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewIndex(), nil
		}
		return nil, fmt.Errorf("load index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return NewIndex(), nil
	}
	if idx.Version != indexVersion {
		return NewIndex(), nil
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]*IndexEntry)
	}
	return &idx, nil
}

// Save atomically writes the index to path via a temp file in the same
// directory renamed into place.
func (idx *Index) Save(path string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// Add stages the file at relPath (slash-separated, relative to root).
// The file is read and hashed as a blob, but nothing is written to the
// object store; the entry alone records the hash. Directories are
// rejected here, callers expand them.
func (idx *Index) Add(root, relPath string) error {
	absPath := filepath.Join(root, filepath.FromSlash(relPath))
	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("stage %q: %w", relPath, object.ErrNotFound)
		}
		return fmt.Errorf("stage %q: %w", relPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("stage %q: is a directory", relPath)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("stage %q: %w", relPath, err)
	}

	idx.Entries[relPath] = &IndexEntry{
		Path:     relPath,
		Mode:     merkle.FileMode(info),
		BlobHash: object.HashObject(object.TypeBlob, content),
		Size:     info.Size(),
		ModTime:  info.ModTime().UnixNano(),
	}
	return nil
}

// Remove drops the entry for relPath, reporting whether it was present.
func (idx *Index) Remove(relPath string) bool {
	if _, ok := idx.Entries[relPath]; !ok {
		return false
	}
	delete(idx.Entries, relPath)
	return true
}

// IsModified reports whether the file behind an entry differs from the
// staged metadata. The check trusts size and mtime alone and never reads
// file content: an edit preserving both goes undetected until the next
// snapshot, and a touched-but-identical file reports modified. A nil
// info (file gone) counts as modified.
func (idx *Index) IsModified(relPath string, info os.FileInfo) bool {
	e, ok := idx.Entries[relPath]
	if !ok {
		return true
	}
	if info == nil {
		return true
	}
	if info.Size() != e.Size {
		return true
	}
	return info.ModTime().UnixNano() != e.ModTime
}

// Staged returns the staged paths, sorted.
func (idx *Index) Staged() []string {
	out := make([]string, 0, len(idx.Entries))
	for p := range idx.Entries {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Modified returns the tracked paths whose worktree file fails the
// metadata check, including files deleted from the worktree. Sorted.
func (idx *Index) Modified(root string) []string {
	var out []string
	for p := range idx.Entries {
		info, _ := os.Stat(filepath.Join(root, filepath.FromSlash(p)))
		if idx.IsModified(p, info) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Untracked returns worktree files absent from the index and not
// ignored. Sorted.
func (idx *Index) Untracked(root string, ign merkle.Ignore) ([]string, error) {
	var out []string
	err := walkFiles(root, ign, func(relPath, absPath string, info os.FileInfo) error {
		if _, ok := idx.Entries[relPath]; !ok {
			out = append(out, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("untracked: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

// walkFiles visits every regular file under root not skipped by the
// ignore rules, with slash-separated repo-relative paths.
func walkFiles(root string, ign merkle.Ignore, fn func(relPath, absPath string, info os.FileInfo) error) error {
	var walk func(dir, prefix string) error
	walk = func(dir, prefix string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			name := entry.Name()
			if ign.Match(name) {
				continue
			}
			abs := filepath.Join(dir, name)
			rel := name
			if prefix != "" {
				rel = prefix + "/" + name
			}
			if entry.IsDir() {
				if err := walk(abs, rel); err != nil {
					return err
				}
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return err
			}
			if err := fn(rel, abs, info); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, "")
}
