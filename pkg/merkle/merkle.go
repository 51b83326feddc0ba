package merkle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/keepvcs/keep/pkg/object"
)

// Build walks dir recursively and returns the tree describing its current
// contents. Every regular file is stored as a blob and every subdirectory as
// a subtree during the walk; the returned root tree itself is not stored, so
// callers can compare its hash against a previous snapshot before deciding
// to persist it.
//
// Names matching the ignore set are skipped, as is anything that is neither
// a regular file nor a directory. Directory entries are visited in name
// order, which together with the tree payload's name sorting makes the root
// hash independent of filesystem traversal quirks.
func Build(store *object.Store, dir string, ign Ignore) (*object.Tree, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("build tree %q: %w", dir, err)
	}

	tree := object.NewTree()
	for _, entry := range entries {
		name := entry.Name()
		if ign.Match(name) {
			continue
		}
		full := filepath.Join(dir, name)

		if entry.IsDir() {
			sub, err := Build(store, full, ign)
			if err != nil {
				return nil, err
			}
			subHash, err := store.WriteTree(sub)
			if err != nil {
				return nil, fmt.Errorf("build tree %q: %w", full, err)
			}
			tree.AddTreeEntry(name, subHash)
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("build tree %q: %w", full, err)
		}
		blobHash, err := store.WriteBlob(&object.Blob{Data: data})
		if err != nil {
			return nil, fmt.Errorf("build tree %q: %w", full, err)
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("build tree %q: %w", full, err)
		}
		tree.AddBlobEntry(name, blobHash, FileMode(info))
	}
	return tree, nil
}

// FileMode maps a file's permission bits onto the two blob modes: any
// executable bit selects the executable mode.
func FileMode(info os.FileInfo) string {
	if info.Mode()&0o111 != 0 {
		return object.TreeModeExecutable
	}
	return object.TreeModeFile
}
