package merkle

import (
	"fmt"
	"sort"

	"github.com/keepvcs/keep/pkg/object"
)

// ChangeType classifies what happened to a path between two snapshots.
type ChangeType int

const (
	Added    ChangeType = iota // Path exists only in the new tree.
	Removed                    // Path exists only in the old tree.
	Modified                   // Path exists in both trees with differing content.
)

func (c ChangeType) String() string {
	switch c {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Change records a single path-level difference between two trees. Added
// and removed directories carry a trailing slash and are reported as one
// entry rather than being expanded file by file.
type Change struct {
	Path    string
	Type    ChangeType
	OldHash object.Hash // empty for Added
	NewHash object.Hash // empty for Removed
}

// Diff compares two trees and reports every changed path, sorted by path.
// Subtrees present on both sides are loaded from the store and descended
// into, so modifications are reported at file granularity. A nil tree acts
// as an empty one.
//
// A name whose entry kind changed between the sides (file became directory
// or the reverse) is reported as a single modification; this keeps the
// change list deterministic at the cost of conflating a remove+add.
func Diff(store *object.Store, oldTree, newTree *object.Tree) ([]Change, error) {
	changes, err := diffTrees(store, oldTree, newTree, "")
	if err != nil {
		return nil, err
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

func diffTrees(store *object.Store, oldTree, newTree *object.Tree, prefix string) ([]Change, error) {
	var changes []Change
	for _, name := range unionNames(oldTree, newTree) {
		oldEntry, inOld := oldTree.Entry(name)
		newEntry, inNew := newTree.Entry(name)

		switch {
		case inOld && inNew:
			if oldEntry.Hash == newEntry.Hash {
				continue
			}
			if oldEntry.Type == object.TypeTree && newEntry.Type == object.TypeTree {
				oldSub, err := store.ReadTree(oldEntry.Hash)
				if err != nil {
					return nil, fmt.Errorf("diff %q: %w", prefix+name, err)
				}
				newSub, err := store.ReadTree(newEntry.Hash)
				if err != nil {
					return nil, fmt.Errorf("diff %q: %w", prefix+name, err)
				}
				sub, err := diffTrees(store, oldSub, newSub, prefix+name+"/")
				if err != nil {
					return nil, err
				}
				changes = append(changes, sub...)
				continue
			}
			changes = append(changes, Change{
				Path:    prefix + name,
				Type:    Modified,
				OldHash: oldEntry.Hash,
				NewHash: newEntry.Hash,
			})
		case inOld:
			changes = append(changes, Change{
				Path:    entryPath(prefix, oldEntry),
				Type:    Removed,
				OldHash: oldEntry.Hash,
			})
		default:
			changes = append(changes, Change{
				Path:    entryPath(prefix, newEntry),
				Type:    Added,
				NewHash: newEntry.Hash,
			})
		}
	}
	return changes, nil
}

// entryPath renders an entry's reported path; directories get a trailing
// slash so a one-line add or remove reads as the whole subtree.
func entryPath(prefix string, e object.TreeEntry) string {
	if e.Type == object.TypeTree {
		return prefix + e.Name + "/"
	}
	return prefix + e.Name
}

func unionNames(oldTree, newTree *object.Tree) []string {
	seen := make(map[string]struct{}, oldTree.Len()+newTree.Len())
	var names []string
	for _, e := range oldTree.Entries() {
		if _, ok := seen[e.Name]; !ok {
			seen[e.Name] = struct{}{}
			names = append(names, e.Name)
		}
	}
	for _, e := range newTree.Entries() {
		if _, ok := seen[e.Name]; !ok {
			seen[e.Name] = struct{}{}
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names
}
